package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/ytfetch/internal/download"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/progress"
	"github.com/ytget/ytfetch/internal/registry"
	"github.com/ytget/ytfetch/internal/router"
	"github.com/ytget/ytfetch/internal/thumbnail"
	"github.com/ytget/ytfetch/internal/worker"
	"github.com/ytget/ytfetch/pkg/logster"
)

const (
	// TaskIDPrefix starts every generated task id
	TaskIDPrefix = "task-"

	// HistoryTimeout bounds a history write made after the pool closed
	HistoryTimeout = 5 * time.Second
)

var (
	// ErrInvalidURL is returned for empty or non-http(s) submissions
	ErrInvalidURL = errors.New("invalid url")

	// ErrEmptyPlaylist is the failure reason of a playlist without videos
	ErrEmptyPlaylist = errors.New("playlist has no videos")
)

// Options are the collaborators of an Orchestrator. Runner and Pool are
// required; the rest is optional.
type Options struct {
	Runner   download.Runner
	Pool     *worker.Pool
	Registry *registry.Registry
	Router   *router.Router

	Thumbnails thumbnail.Fetcher
	Playlists  PlaylistExpander
	History    HistoryRecorder

	// DefaultQuality and DefaultDirectory fill in empty submission fields
	DefaultQuality   model.Quality
	DefaultDirectory string

	// NewID overrides task id generation
	NewID func() string

	Logger logster.Logger
}

// expansion is the outcome of an off-loop playlist lookup
type expansion struct {
	sub      model.Submission
	playlist *model.Playlist
	err      error
}

// Orchestrator accepts submissions and drives their tasks to a final state
type Orchestrator struct {
	runner    download.Runner
	pool      *worker.Pool
	reg       *registry.Registry
	router    *router.Router
	fetcher   thumbnail.Fetcher
	playlists PlaylistExpander
	history   HistoryRecorder
	newID     func() string
	logger    logster.Logger

	defaultQuality   model.Quality
	defaultDirectory string

	cancels    map[string]context.CancelFunc
	thumbs     map[string]image.Image
	requested  map[string]bool
	thumbBox   thumbnail.Mailbox
	expansions worker.Mailbox[expansion]
	pending    int
}

// New creates an orchestrator
func New(opts Options) (*Orchestrator, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("orchestrator: runner is required")
	}
	if opts.Pool == nil {
		return nil, fmt.Errorf("orchestrator: worker pool is required")
	}
	if opts.Logger == nil {
		opts.Logger = logster.Discard()
	}
	if opts.Registry == nil {
		opts.Registry = registry.New()
	}
	if opts.Router == nil {
		opts.Router = router.New(opts.Logger)
	}
	if opts.NewID == nil {
		opts.NewID = NewTaskID
	}
	if opts.DefaultQuality == "" {
		opts.DefaultQuality = model.DefaultQuality
	}

	return &Orchestrator{
		runner:           opts.Runner,
		pool:             opts.Pool,
		reg:              opts.Registry,
		router:           opts.Router,
		fetcher:          opts.Thumbnails,
		playlists:        opts.Playlists,
		history:          opts.History,
		newID:            opts.NewID,
		logger:           opts.Logger.WithField("component", "orchestrator"),
		defaultQuality:   opts.DefaultQuality,
		defaultDirectory: opts.DefaultDirectory,
		cancels:          make(map[string]context.CancelFunc),
		thumbs:           make(map[string]image.Image),
		requested:        make(map[string]bool),
	}, nil
}

// NewTaskID returns a time ordered unique task id
func NewTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return TaskIDPrefix + id.String()
}

// ValidateURL accepts absolute http and https URLs only
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Submit starts a download for sub and returns the new task id. A playlist
// URL is expanded in the background when an expander is configured; the
// returned id is then empty and the videos appear as tasks on a later Tick.
func (o *Orchestrator) Submit(ctx context.Context, sub model.Submission) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	sub.URL = strings.TrimSpace(sub.URL)
	if err := ValidateURL(sub.URL); err != nil {
		return "", err
	}
	if sub.Quality == "" {
		sub.Quality = o.defaultQuality
	}
	if sub.Directory == "" {
		sub.Directory = o.defaultDirectory
	}

	if o.playlists != nil && platform.IsPlaylistURL(sub.URL) {
		o.expand(sub)
		return "", nil
	}

	task, err := o.start(sub)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}

// start inserts a task for sub and schedules its runner
func (o *Orchestrator) start(sub model.Submission) (model.Task, error) {
	task := model.NewTask(o.newID(), sub)
	if err := o.reg.Insert(task); err != nil {
		return model.Task{}, err
	}

	ch := progress.NewChannel()
	o.router.Attach(task.ID, ch)

	runCtx, cancel := context.WithCancel(o.pool.Context())
	o.cancels[task.ID] = cancel

	log := o.logger.WithField("task", task.ID)
	o.pool.GoLimited(runCtx, func(ctx context.Context) {
		if err := o.runner.Run(ctx, sub, ch); err != nil {
			log.WithError(err).Debugf("runner returned")
		}
	}, func(err error) {
		ch.Close(err)
	})
	log.Infof("submitted %s (%s)", sub.URL, sub.Quality)

	o.fetchThumbnail(task.VideoID)
	return task, nil
}

// expand resolves a playlist off-loop and hands the result to the next Tick
func (o *Orchestrator) expand(sub model.Submission) {
	o.pending++
	log := o.logger.WithField("url", sub.URL)
	started := o.pool.Go(func(ctx context.Context) {
		playlist, err := o.playlists.Expand(ctx, sub.URL)
		if err == nil && len(playlist.Entries) == 0 {
			err = ErrEmptyPlaylist
		}
		o.expansions.Push(expansion{sub: sub, playlist: playlist, err: err})
	})
	if !started {
		o.expansions.Push(expansion{sub: sub, err: worker.ErrPoolClosed})
	}
	log.Infof("expanding playlist")
}

// fetchThumbnail requests the preview of videoID once
func (o *Orchestrator) fetchThumbnail(videoID string) {
	if o.fetcher == nil || videoID == "" || o.requested[videoID] {
		return
	}
	o.requested[videoID] = true
	o.pool.Go(func(ctx context.Context) {
		img, err := o.fetcher.Fetch(ctx, videoID)
		o.thumbBox.Push(thumbnail.Result{VideoID: videoID, Image: img, Err: err})
	})
}

// Tick runs one consumer cycle: progress routing, thumbnail and playlist
// hand-off and history recording of tasks whose runner exited. A task can be
// Done while yt-dlp is still post-processing; it is only released once the
// process is gone.
func (o *Orchestrator) Tick() router.Stats {
	stats := o.router.Poll(o.reg)

	for _, id := range stats.Exited {
		o.release(id)
		if task, ok := o.reg.Get(id); ok {
			o.record(task)
		}
	}

	for _, res := range o.thumbBox.Drain() {
		if res.Err != nil {
			o.logger.WithField("video", res.VideoID).WithError(res.Err).Debugf("thumbnail unavailable")
			continue
		}
		o.thumbs[res.VideoID] = res.Image
	}

	for _, exp := range o.expansions.Drain() {
		o.pending--
		o.applyExpansion(exp)
	}

	return stats
}

// applyExpansion submits every video of a resolved playlist. A failed lookup
// becomes a failed task so the user sees what happened.
func (o *Orchestrator) applyExpansion(exp expansion) {
	log := o.logger.WithField("url", exp.sub.URL)
	if exp.err != nil {
		log.WithError(exp.err).Warnf("playlist expansion failed")
		task := model.NewTask(o.newID(), exp.sub)
		if err := o.reg.Insert(task); err != nil {
			log.WithError(err).Errorf("failed to register playlist task")
			return
		}
		o.reg.Fail(task.ID, exp.err.Error())
		if failed, ok := o.reg.Get(task.ID); ok {
			o.record(failed)
		}
		return
	}

	entries := exp.playlist.Entries
	for i, sub := range exp.playlist.Submissions(exp.sub.Quality, exp.sub.Directory) {
		task, err := o.start(sub)
		if err != nil {
			log.WithError(err).Errorf("failed to submit playlist entry %s", sub.URL)
			continue
		}
		o.reg.SetTitle(task.ID, entries[i].Title)
	}
	log.Infof("playlist %s expanded into %d tasks", exp.playlist.ID, len(entries))
}

// record hands a finished task to the history store off-loop. Once the pool
// is closed the write happens inline.
func (o *Orchestrator) record(task model.Task) {
	if o.history == nil {
		return
	}
	log := o.logger.WithField("task", task.ID)
	write := func(ctx context.Context) {
		_ = logster.LogIfError(log, o.history.Record(ctx, task), "failed to record history")
	}

	if o.pool.Go(func(ctx context.Context) { write(context.WithoutCancel(ctx)) }) {
		return
	}
	log.Debugf("pool closed, recording history inline")
	ctx, cancel := context.WithTimeout(context.Background(), HistoryTimeout)
	defer cancel()
	write(ctx)
}

// release drops the cancel func of a task that no longer runs
func (o *Orchestrator) release(id string) {
	if cancel, ok := o.cancels[id]; ok {
		cancel()
		delete(o.cancels, id)
	}
}

// Cancel stops an active task. The task becomes Cancelled on a later Tick
// once its runner has exited.
func (o *Orchestrator) Cancel(id string) bool {
	cancel, ok := o.cancels[id]
	if !ok {
		return false
	}
	task, exists := o.reg.Get(id)
	if !exists || !task.Status.IsActive() {
		return false
	}
	cancel()
	o.logger.WithField("task", id).Infof("cancel requested")
	return true
}

// Remove deletes a task. An active task is cancelled first and any progress
// it still reports is discarded.
func (o *Orchestrator) Remove(id string) bool {
	o.release(id)
	o.router.Detach(id)
	return o.reg.Remove(id)
}

// ClearFinished removes every task in a final state whose runner exited
func (o *Orchestrator) ClearFinished() int {
	var finished []string
	for task := range o.reg.List() {
		if _, running := o.cancels[task.ID]; running {
			continue
		}
		if task.Status.IsFinished() {
			finished = append(finished, task.ID)
		}
	}
	for _, id := range finished {
		o.Remove(id)
	}
	return len(finished)
}

// Tasks returns the current tasks in submission order
func (o *Orchestrator) Tasks() iter.Seq[model.Task] {
	return o.reg.List()
}

// Task returns a copy of one task
func (o *Orchestrator) Task(id string) (model.Task, bool) {
	return o.reg.Get(id)
}

// Thumbnail returns the fetched preview of videoID, if it arrived
func (o *Orchestrator) Thumbnail(videoID string) (image.Image, bool) {
	img, ok := o.thumbs[videoID]
	return img, ok
}

// Busy reports whether a runner is still alive or a playlist is still
// expanding. A Done task keeps the orchestrator busy until its process exits.
func (o *Orchestrator) Busy() bool {
	return o.pending > 0 || len(o.cancels) > 0 || o.router.Len() > 0
}

// Shutdown cancels every runner and waits for the background work to finish
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.logger.Infof("shutting down")
	return o.pool.Shutdown(ctx)
}
