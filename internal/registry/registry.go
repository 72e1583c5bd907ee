// Package registry holds the canonical set of tasks. It is owned by the
// consumer loop and is not safe for concurrent use; runners reach it only
// through their progress channels.
package registry

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/ytget/ytfetch/internal/model"
)

// ErrDuplicateTask is returned when inserting an id that already exists
var ErrDuplicateTask = errors.New("task already exists")

// Registry maps task ids to task state, keeping insertion order for display
type Registry struct {
	tasks map[string]*model.Task
	order []string
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		tasks: make(map[string]*model.Task),
	}
}

// Insert adds task in the Downloading state with zero progress
func (r *Registry) Insert(task model.Task) error {
	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, task.ID)
	}
	task.Status = model.TaskStatusDownloading
	task.Progress = 0
	task.Err = ""
	task.FinishedAt = time.Time{}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	r.tasks[task.ID] = &task
	r.order = append(r.order, task.ID)
	return nil
}

// ApplyProgress raises the task's progress to v. Lower values are discarded.
// Reaching 1.0 marks the task Done and clamps progress to 1.0. It reports
// whether the task changed.
func (r *Registry) ApplyProgress(id string, v float64) bool {
	task, ok := r.tasks[id]
	if !ok || !task.Status.IsActive() {
		return false
	}
	if v <= task.Progress {
		return false
	}

	task.Progress = v
	if task.Progress >= 1.0 {
		task.Progress = 1.0
		task.Status = model.TaskStatusDone
		task.FinishedAt = time.Now()
	}
	return true
}

// Fail moves an active task to Failed with reason
func (r *Registry) Fail(id, reason string) bool {
	return r.finish(id, model.TaskStatusFailed, reason)
}

// Cancel moves an active task to Cancelled
func (r *Registry) Cancel(id string) bool {
	return r.finish(id, model.TaskStatusCancelled, "")
}

func (r *Registry) finish(id string, status model.TaskStatus, reason string) bool {
	task, ok := r.tasks[id]
	if !ok || !task.Status.IsActive() {
		return false
	}
	task.Status = status
	task.Err = reason
	task.FinishedAt = time.Now()
	return true
}

// SetTitle replaces the display title, e.g. once richer metadata is known
func (r *Registry) SetTitle(id, title string) bool {
	task, ok := r.tasks[id]
	if !ok || title == "" {
		return false
	}
	task.Title = title
	return true
}

// Remove deletes the task. Whether the task is finished is the caller's concern.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.tasks[id]; !ok {
		return false
	}
	delete(r.tasks, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the task
func (r *Registry) Get(id string) (model.Task, bool) {
	task, ok := r.tasks[id]
	if !ok {
		return model.Task{}, false
	}
	return *task, true
}

// Contains reports whether id is registered
func (r *Registry) Contains(id string) bool {
	_, ok := r.tasks[id]
	return ok
}

// Len returns the number of registered tasks
func (r *Registry) Len() int {
	return len(r.tasks)
}

// List returns a lazy sequence of task copies in insertion order. The set of
// ids is fixed when List is called; the sequence can be iterated many times.
func (r *Registry) List() iter.Seq[model.Task] {
	ids := append([]string(nil), r.order...)
	return func(yield func(model.Task) bool) {
		for _, id := range ids {
			task, ok := r.tasks[id]
			if !ok {
				continue
			}
			if !yield(*task) {
				return
			}
		}
	}
}
