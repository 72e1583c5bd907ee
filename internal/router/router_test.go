package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/progress"
	"github.com/ytget/ytfetch/internal/registry"
	"github.com/ytget/ytfetch/pkg/logster"
)

func setup(t *testing.T, ids ...string) (*Router, *registry.Registry, map[string]*progress.Channel) {
	t.Helper()
	reg := registry.New()
	r := New(logster.Discard())
	channels := make(map[string]*progress.Channel)
	for _, id := range ids {
		if err := reg.Insert(model.NewTask(id, model.Submission{URL: "https://example.com/" + id})); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		ch := progress.NewChannel()
		r.Attach(id, ch)
		channels[id] = ch
	}
	return r, reg, channels
}

func progressOf(t *testing.T, reg *registry.Registry, id string) model.Task {
	t.Helper()
	task, ok := reg.Get(id)
	if !ok {
		t.Fatalf("task %s not found", id)
	}
	return task
}

func TestPoll_AppliesInArrivalOrder(t *testing.T) {
	r, reg, chans := setup(t, "a")

	for _, v := range []float64{0.3, 0.1, 0.5} {
		chans["a"].Send(v)
	}

	stats := r.Poll(reg)
	if stats.Applied != 2 {
		t.Errorf("Expected 2 applied values, got %d", stats.Applied)
	}
	if got := progressOf(t, reg, "a").Progress; got != 0.5 {
		t.Errorf("Expected progress 0.5, got %v", got)
	}
	if r.Len() != 1 {
		t.Errorf("Open channel must stay attached, got %d channels", r.Len())
	}
}

func TestPoll_EmptyChannelsAreCheap(t *testing.T) {
	r, reg, _ := setup(t, "a", "b")

	stats := r.Poll(reg)
	if stats.Applied != 0 || stats.Closed != 0 || stats.Stale != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}

func TestPoll_Isolation(t *testing.T) {
	r, reg, chans := setup(t, "a", "b")

	chans["a"].Send(0.2)
	chans["b"].Send(0.9)
	chans["a"].Send(1.0)
	chans["b"].Send(0.4)

	stats := r.Poll(reg)

	a := progressOf(t, reg, "a")
	b := progressOf(t, reg, "b")
	if a.Status != model.TaskStatusDone || a.Progress != 1.0 {
		t.Errorf("Task a = %s at %v", a.Status, a.Progress)
	}
	if b.Status != model.TaskStatusDownloading || b.Progress != 0.9 {
		t.Errorf("Task b = %s at %v", b.Status, b.Progress)
	}
	if len(stats.Finished) != 1 || stats.Finished[0] != "a" {
		t.Errorf("Expected [a] finished, got %v", stats.Finished)
	}
}

func TestPoll_ClosedChannel(t *testing.T) {
	r, reg, chans := setup(t, "a")

	chans["a"].Send(0.5)
	chans["a"].Send(1.0)
	chans["a"].Close(nil)

	stats := r.Poll(reg)
	if stats.Closed != 1 {
		t.Errorf("Expected 1 closed channel, got %d", stats.Closed)
	}
	if r.Len() != 0 {
		t.Errorf("Closed channel must be detached, %d left", r.Len())
	}
	if task := progressOf(t, reg, "a"); task.Status != model.TaskStatusDone {
		t.Errorf("Expected Done, got %s", task.Status)
	}
}

func TestPoll_ExitedOnlyAfterClose(t *testing.T) {
	r, reg, chans := setup(t, "a")

	chans["a"].Send(1.0)
	stats := r.Poll(reg)
	if len(stats.Finished) != 1 {
		t.Errorf("Expected a to finish at 1.0, got %v", stats.Finished)
	}
	if len(stats.Exited) != 0 {
		t.Errorf("Runner still owns the channel, got exited %v", stats.Exited)
	}
	if r.Len() != 1 {
		t.Error("Open channel of a Done task must stay attached")
	}

	chans["a"].Close(nil)
	stats = r.Poll(reg)
	if len(stats.Exited) != 1 || stats.Exited[0] != "a" {
		t.Errorf("Expected [a] exited, got %v", stats.Exited)
	}
	if len(stats.Finished) != 0 {
		t.Errorf("Task finished earlier, got %v", stats.Finished)
	}
	if r.Len() != 0 {
		t.Error("Closed channel must be detached")
	}
}

func TestPoll_CloseWithoutCompletion(t *testing.T) {
	r, reg, chans := setup(t, "a")

	chans["a"].Send(0.6)
	chans["a"].Close(nil)

	stats := r.Poll(reg)
	task := progressOf(t, reg, "a")
	if task.Status != model.TaskStatusFailed {
		t.Fatalf("Expected Failed, got %s", task.Status)
	}
	if task.Err != ErrIncomplete.Error() {
		t.Errorf("Expected %q, got %q", ErrIncomplete.Error(), task.Err)
	}
	if task.Progress != 0.6 {
		t.Errorf("Failure must keep progress, got %v", task.Progress)
	}
	if len(stats.Finished) != 1 || len(stats.Exited) != 1 {
		t.Errorf("Expected a finished and exited, got %+v", stats)
	}
}

func TestPoll_CloseError(t *testing.T) {
	tests := []struct {
		name       string
		sendFirst  []float64
		err        error
		wantStatus model.TaskStatus
		wantErr    string
	}{
		{
			name:       "failure",
			sendFirst:  []float64{0.4},
			err:        errors.New("yt-dlp failed: ERROR: Video unavailable"),
			wantStatus: model.TaskStatusFailed,
			wantErr:    "yt-dlp failed: ERROR: Video unavailable",
		},
		{
			name:       "cancelled",
			sendFirst:  []float64{0.2},
			err:        fmt.Errorf("run: %w", context.Canceled),
			wantStatus: model.TaskStatusCancelled,
		},
		{
			name:       "done wins over late error",
			sendFirst:  []float64{1.0},
			err:        errors.New("post-processing failed"),
			wantStatus: model.TaskStatusDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reg, chans := setup(t, "a")
			for _, v := range tt.sendFirst {
				chans["a"].Send(v)
			}
			chans["a"].Close(tt.err)

			stats := r.Poll(reg)
			task := progressOf(t, reg, "a")
			if task.Status != tt.wantStatus {
				t.Errorf("Expected %s, got %s", tt.wantStatus, task.Status)
			}
			if task.Err != tt.wantErr {
				t.Errorf("Expected error %q, got %q", tt.wantErr, task.Err)
			}
			if len(stats.Finished) != 1 {
				t.Errorf("Expected one finished task, got %v", stats.Finished)
			}
			if r.Len() != 0 {
				t.Error("Channel must be detached after close")
			}
		})
	}
}

func TestPoll_StaleChannel(t *testing.T) {
	r, reg, chans := setup(t, "a", "b")

	chans["a"].Send(0.7)
	chans["b"].Send(0.3)
	reg.Remove("a")

	stats := r.Poll(reg)
	if stats.Stale != 1 {
		t.Errorf("Expected 1 stale channel, got %d", stats.Stale)
	}
	if stats.Applied != 1 {
		t.Errorf("Expected only b's value applied, got %d", stats.Applied)
	}
	if reg.Contains("a") {
		t.Error("Removed task must not reappear")
	}
	for task := range reg.List() {
		if task.ID == "a" {
			t.Error("Removed task listed")
		}
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 channel left, got %d", r.Len())
	}

	// A producer still running for the removed task is harmless.
	chans["a"].Send(0.9)
	stats = r.Poll(reg)
	if stats.Applied != 0 || stats.Stale != 0 {
		t.Errorf("Detached channel must be ignored, got %+v", stats)
	}
}

func TestDetach(t *testing.T) {
	r, reg, chans := setup(t, "a", "b", "c")

	r.Detach("b")
	r.Detach("missing")
	chans["b"].Send(0.5)

	r.Poll(reg)
	if got := progressOf(t, reg, "b").Progress; got != 0 {
		t.Errorf("Detached channel must not feed the registry, got %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 channels, got %d", r.Len())
	}
}

func TestAttach_Replace(t *testing.T) {
	r, reg, chans := setup(t, "a")

	replacement := progress.NewChannel()
	r.Attach("a", replacement)
	chans["a"].Send(0.9)
	replacement.Send(0.2)

	r.Poll(reg)
	if got := progressOf(t, reg, "a").Progress; got != 0.2 {
		t.Errorf("Expected value from replacement channel, got %v", got)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 channel, got %d", r.Len())
	}
}

func TestPoll_ConcurrentProducer(t *testing.T) {
	r, reg, chans := setup(t, "a")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 1000; i++ {
			chans["a"].Send(float64(i) / 1000)
		}
		chans["a"].Close(nil)
	}()

	last := 0.0
	for {
		r.Poll(reg)
		task := progressOf(t, reg, "a")
		if task.Progress < last {
			t.Fatalf("Progress decreased from %v to %v", last, task.Progress)
		}
		last = task.Progress
		if r.Len() == 0 {
			break
		}
	}
	<-done

	if task := progressOf(t, reg, "a"); task.Status != model.TaskStatusDone {
		t.Errorf("Expected Done, got %s", task.Status)
	}
}
