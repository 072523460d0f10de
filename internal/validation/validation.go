// Package validation normalizes and constrains task text fields before
// they enter the data model. All functions are pure.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/nanotodo/types"
)

const (
	// MaxTitleLength is the maximum number of characters in a trimmed title
	MaxTitleLength = 500

	// MaxDescriptionLength is the maximum number of characters in a description
	MaxDescriptionLength = 2000
)

// ValidateTitle trims surrounding whitespace and checks the result is
// non-empty and at most MaxTitleLength characters. A missing title is
// passed as the empty string.
func ValidateTitle(input string) (string, error) {
	title := strings.TrimSpace(input)
	if title == "" {
		return "", &types.InvalidInputError{
			Field:   "title",
			Message: "title cannot be empty",
		}
	}

	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return "", &types.InvalidInputError{
			Field:   "title",
			Limit:   MaxTitleLength,
			Message: fmt.Sprintf("title exceeds maximum length of %d characters (got %d)", MaxTitleLength, n),
		}
	}

	return title, nil
}

// ValidateDescription checks the description is at most
// MaxDescriptionLength characters. The input is returned unchanged;
// multiline content is accepted verbatim.
func ValidateDescription(input string) (string, error) {
	if n := utf8.RuneCountInString(input); n > MaxDescriptionLength {
		return "", &types.InvalidInputError{
			Field:   "description",
			Limit:   MaxDescriptionLength,
			Message: fmt.Sprintf("description exceeds maximum length of %d characters (got %d)", MaxDescriptionLength, n),
		}
	}
	return input, nil
}
