// Package registry is the single authority over the task collection.
// It allocates IDs, validates input, mutates the in-memory map and
// flushes the whole document to storage after every successful change.
//
// A Registry is not safe for concurrent use. Construct one per
// invocation and Close it when done.
package registry

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/arthur-debert/nanotodo/config"
	"github.com/arthur-debert/nanotodo/internal/logging"
	"github.com/arthur-debert/nanotodo/internal/validation"
	"github.com/arthur-debert/nanotodo/storage"
	"github.com/arthur-debert/nanotodo/types"
)

// Registry owns the tasks of one store
type Registry struct {
	storage storage.Storage
	tasks   map[int]*types.Task
	nextID  int
	logger  *log.Logger
}

// New creates a Registry and loads its tasks. The backing store is, in
// order of preference: WithStorage, InMemory, WithPath, and finally the
// path resolved by config.ResolvePath at the time of the call.
func New(opts ...Option) (*Registry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}

	st := o.storage
	switch {
	case st != nil:
	case o.memory:
		st = storage.NewMemoryStorage()
	default:
		path := o.path
		if path == "" {
			resolved, err := config.ResolvePath()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve task store path: %w", err)
			}
			path = resolved
		}
		storageOpts := append([]storage.JSONStorageOption{storage.WithLogger(o.logger)}, o.storageOpts...)
		st = storage.NewJSONStorage(path, storageOpts...)
	}

	r := &Registry{
		storage: st,
		tasks:   make(map[int]*types.Task),
		nextID:  1,
		logger:  o.logger,
	}

	if err := r.load(); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	return r, nil
}

// load populates the map and counter from storage. Records that break
// the ID invariants are dropped with a warning; a later record with the
// same ID replaces an earlier one.
func (r *Registry) load() error {
	doc, err := r.storage.Load()
	if err != nil {
		return err
	}

	maxID := 0
	for _, task := range doc.Tasks {
		t := task
		if t.ID < 1 {
			r.logger.Warn("dropping stored task with a non-positive ID", "id", t.ID, "title", t.Title)
			continue
		}
		if prev, ok := r.tasks[t.ID]; ok {
			r.logger.Warn("duplicate task ID in store, keeping the last record",
				"id", t.ID, "dropped", prev.Title, "kept", t.Title)
		}
		if _, err := validation.ValidateTitle(t.Title); err != nil {
			r.logger.Warn("stored task has an invalid title", "id", t.ID, "err", err)
		}
		if _, err := validation.ValidateDescription(t.Description); err != nil {
			r.logger.Warn("stored task has an invalid description", "id", t.ID, "err", err)
		}
		r.tasks[t.ID] = &t
		if t.ID > maxID {
			maxID = t.ID
		}
	}

	r.nextID = doc.NextID
	switch {
	case maxID == math.MaxInt:
		r.logger.Warn("task ID space is exhausted, no more tasks can be added", "max_id", maxID)
		r.nextID = math.MaxInt
	case r.nextID <= maxID:
		// Hand-edited files can lag behind; never hand out a live ID
		r.logger.Warn("next_id is not above the highest task ID, advancing it",
			"next_id", doc.NextID, "max_id", maxID)
		r.nextID = maxID + 1
	}

	r.logger.Debug("registry loaded", "path", r.storage.Path(), "tasks", len(r.tasks), "next_id", r.nextID)
	return nil
}

// snapshot builds the document to persist, tasks ordered by ID
func (r *Registry) snapshot() *types.Document {
	return &types.Document{
		NextID: r.nextID,
		Tasks:  r.ListAll(),
	}
}

func (r *Registry) save() error {
	if err := r.storage.Save(r.snapshot()); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func (r *Registry) lookup(id int) (*types.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, &types.NotFoundError{ID: id}
	}
	return task, nil
}

// Add validates title and description, allocates the next ID and stores
// a new incomplete task. A rejected add does not consume an ID. Once the
// counter reaches math.MaxInt, Add fails with types.ErrIDSpaceExhausted.
func (r *Registry) Add(title, description string) (types.Task, error) {
	if r.nextID == math.MaxInt {
		return types.Task{}, types.ErrIDSpaceExhausted
	}

	validTitle, err := validation.ValidateTitle(title)
	if err != nil {
		return types.Task{}, err
	}
	validDescription, err := validation.ValidateDescription(description)
	if err != nil {
		return types.Task{}, err
	}

	id := r.nextID
	task := &types.Task{
		ID:          id,
		Title:       validTitle,
		Description: validDescription,
		Status:      types.StatusIncomplete,
	}
	r.tasks[id] = task
	r.nextID++

	if err := r.save(); err != nil {
		delete(r.tasks, id)
		r.nextID = id
		return types.Task{}, err
	}

	r.logger.Debug("task added", "id", id)
	return *task, nil
}

// Get returns the task with the given ID
func (r *Registry) Get(id int) (types.Task, bool) {
	task, ok := r.tasks[id]
	if !ok {
		return types.Task{}, false
	}
	return *task, true
}

// ListAll returns every task in ascending ID order. The result is never nil.
func (r *Registry) ListAll() []types.Task {
	tasks := make([]types.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, *task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Count returns the number of stored tasks
func (r *Registry) Count() int {
	return len(r.tasks)
}

// Update replaces the fields set in req. Every supplied field is
// validated before anything changes. ID and status are never touched.
// An empty request is accepted and still persists.
func (r *Registry) Update(id int, req types.UpdateRequest) (types.Task, error) {
	task, err := r.lookup(id)
	if err != nil {
		return types.Task{}, err
	}

	updated := *task
	if req.Title != nil {
		title, err := validation.ValidateTitle(*req.Title)
		if err != nil {
			return types.Task{}, err
		}
		updated.Title = title
	}
	if req.Description != nil {
		description, err := validation.ValidateDescription(*req.Description)
		if err != nil {
			return types.Task{}, err
		}
		updated.Description = description
	}

	return r.replace(task, updated)
}

// MarkComplete sets the task's status to complete
func (r *Registry) MarkComplete(id int) (types.Task, error) {
	return r.setStatus(id, types.StatusComplete)
}

// MarkIncomplete sets the task's status to incomplete
func (r *Registry) MarkIncomplete(id int) (types.Task, error) {
	return r.setStatus(id, types.StatusIncomplete)
}

func (r *Registry) setStatus(id int, status types.Status) (types.Task, error) {
	task, err := r.lookup(id)
	if err != nil {
		return types.Task{}, err
	}

	updated := *task
	updated.Status = status
	return r.replace(task, updated)
}

// replace swaps in the new field values and persists, restoring the
// previous values if the save fails.
func (r *Registry) replace(task *types.Task, updated types.Task) (types.Task, error) {
	previous := *task
	*task = updated

	if err := r.save(); err != nil {
		*task = previous
		return types.Task{}, err
	}

	r.logger.Debug("task updated", "id", task.ID, "status", task.Status)
	return *task, nil
}

// Delete removes the task. Its ID is never reissued.
func (r *Registry) Delete(id int) error {
	task, err := r.lookup(id)
	if err != nil {
		return err
	}

	delete(r.tasks, id)
	if err := r.save(); err != nil {
		r.tasks[id] = task
		return err
	}

	r.logger.Debug("task deleted", "id", id)
	return nil
}

// Path returns the backing file path, or "" in memory mode
func (r *Registry) Path() string {
	return r.storage.Path()
}

// Close releases the storage
func (r *Registry) Close() error {
	return r.storage.Close()
}
