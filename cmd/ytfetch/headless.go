package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/orchestrator"
	"github.com/ytget/ytfetch/pkg/logster"
)

// ProgressLogInterval is how often active downloads are reported
const ProgressLogInterval = 2 * time.Second

// ErrDownloadsFailed is returned when at least one task did not finish Done
var ErrDownloadsFailed = errors.New("some downloads did not complete")

// runHeadless downloads the URLs from the command line and exits when all
// of them reached a final state or a signal arrives
func runHeadless(ctx context.Context, deps services, f flags) error {
	quality := deps.cfg.QualityPreset()
	if f.quality != "" {
		quality = model.ParseQuality(f.quality)
	}
	dir := deps.cfg.DownloadDir
	if f.dir != "" {
		dir = f.dir
	}

	orch, err := deps.newOrchestrator(deps.cfg.MaxParallel, quality, dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return headlessLoop(ctx, orch, f.urls, deps.cfg.PollInterval, deps.logger)
}

// headlessLoop submits urls and ticks orch until it is idle
func headlessLoop(ctx context.Context, orch *orchestrator.Orchestrator, urls []string, interval time.Duration, logger logster.Logger) error {
	log := logger.WithField("component", "headless")

	for _, url := range urls {
		if _, err := orch.Submit(ctx, model.Submission{URL: url}); err != nil {
			return fmt.Errorf("submit %s: %w", url, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		lastReport := time.Now()

		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
			}

			stats := orch.Tick()
			for _, id := range stats.Exited {
				if task, ok := orch.Task(id); ok {
					log.WithField("task", id).Infof("%s: %s", task.GetDisplayTitle(), task.GetStatusLine())
				}
			}

			if time.Since(lastReport) >= ProgressLogInterval {
				lastReport = time.Now()
				for task := range orch.Tasks() {
					if task.Status.IsActive() {
						log.WithField("task", task.ID).Infof("%s: %s", task.GetDisplayTitle(), task.GetStatusLine())
					}
				}
			}

			if !orch.Busy() {
				return nil
			}
		}
	})
	loopErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := orch.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warnf("shutdown incomplete")
	}
	// Pick up the final state of runners stopped by the shutdown.
	orch.Tick()

	if loopErr != nil {
		return loopErr
	}
	return summarize(orch, log)
}

// summarize logs the outcome of every task and reports whether all succeeded
func summarize(orch *orchestrator.Orchestrator, log logster.Logger) error {
	var done, failed int
	for task := range orch.Tasks() {
		if task.Status == model.TaskStatusDone {
			done++
			continue
		}
		failed++
		log.WithField("task", task.ID).Warnf("%s: %s", task.GetDisplayTitle(), task.GetStatusLine())
	}
	log.Infof("%d downloads done, %d not completed", done, failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDownloadsFailed, failed, done+failed)
	}
	return nil
}
