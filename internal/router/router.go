// Package router moves progress values from runner channels into the task
// registry. Like the registry it is owned by the consumer loop.
package router

import (
	"context"
	"errors"

	"github.com/ytget/ytfetch/internal/progress"
	"github.com/ytget/ytfetch/internal/registry"
	"github.com/ytget/ytfetch/pkg/logster"
)

// Stats summarizes one Poll
type Stats struct {
	// Applied counts values that changed a task
	Applied int
	// Stale counts channels dropped because their task was removed
	Stale int
	// Closed counts channels dropped after their producer finished
	Closed int
	// Finished lists tasks that reached a terminal state during the poll
	Finished []string
	// Exited lists tasks whose runner closed its channel during the poll.
	// Their status is final and the runner no longer holds resources.
	Exited []string
}

// ErrIncomplete is the failure reason of a runner that closed its channel
// without an error before reporting completion
var ErrIncomplete = errors.New("runner exited without completing the download")

// Router holds the consumer end of every live progress channel
type Router struct {
	channels map[string]*progress.Channel
	order    []string
	scratch  []float64
	logger   logster.Logger
}

// New creates an empty router
func New(logger logster.Logger) *Router {
	return &Router{
		channels: make(map[string]*progress.Channel),
		logger:   logger.WithField("component", "router"),
	}
}

// Attach registers ch as the progress source of task id, replacing any
// previous channel for that id.
func (r *Router) Attach(id string, ch *progress.Channel) {
	if _, exists := r.channels[id]; !exists {
		r.order = append(r.order, id)
	}
	r.channels[id] = ch
}

// Detach drops the channel of task id. Pending values are discarded.
func (r *Router) Detach(id string) {
	if _, exists := r.channels[id]; !exists {
		return
	}
	delete(r.channels, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of attached channels
func (r *Router) Len() int {
	return len(r.channels)
}

// Poll drains every attached channel without blocking and applies the values
// to reg in arrival order. Channels of removed tasks and channels that are
// closed and empty are detached.
func (r *Router) Poll(reg *registry.Registry) Stats {
	var stats Stats
	var drop []string

	for _, id := range r.order {
		ch := r.channels[id]
		values, closed, closeErr := ch.Drain(r.scratch[:0])
		r.scratch = values

		if !reg.Contains(id) {
			if len(values) > 0 {
				r.logger.WithField("task", id).Debugf("discarding %d values of removed task", len(values))
			}
			stats.Stale++
			drop = append(drop, id)
			continue
		}

		wasActive := isActive(reg, id)
		for _, v := range values {
			if reg.ApplyProgress(id, v) {
				stats.Applied++
			}
		}

		if closed {
			if closeErr == nil && isActive(reg, id) {
				closeErr = ErrIncomplete
			}
			if closeErr != nil {
				r.finishWithError(reg, id, closeErr)
			}
			stats.Closed++
			stats.Exited = append(stats.Exited, id)
			drop = append(drop, id)
		}

		if wasActive && !isActive(reg, id) {
			stats.Finished = append(stats.Finished, id)
		}
	}

	for _, id := range drop {
		r.Detach(id)
	}
	return stats
}

// finishWithError moves an unfinished task to Cancelled or Failed
func (r *Router) finishWithError(reg *registry.Registry, id string, err error) {
	log := r.logger.WithField("task", id)
	if errors.Is(err, context.Canceled) {
		if reg.Cancel(id) {
			log.Infof("download cancelled")
		}
		return
	}
	if reg.Fail(id, err.Error()) {
		log.WithError(err).Warnf("download failed")
	}
}

func isActive(reg *registry.Registry, id string) bool {
	task, ok := reg.Get(id)
	return ok && task.Status.IsActive()
}
