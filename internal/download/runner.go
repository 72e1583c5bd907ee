package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/progress"
	"github.com/ytget/ytfetch/pkg/logster"
)

// Process constants
const (
	// MaxLineLength bounds a single output line
	MaxLineLength = 1 << 20

	// KillWaitDelay is how long Wait waits for pipes after the process is killed
	KillWaitDelay = 5 * time.Second
)

// ProcessRunner runs yt-dlp as a child process
type ProcessRunner struct {
	exe    Executable
	logger logster.Logger

	mu        sync.RWMutex
	extraArgs []string
}

// NewProcessRunner creates a runner that resolves the binary through exe
func NewProcessRunner(exe Executable, logger logster.Logger) *ProcessRunner {
	return &ProcessRunner{
		exe:    exe,
		logger: logger.WithField("component", "runner"),
	}
}

// SetExtraArgs sets additional yt-dlp arguments placed before the URL
func (r *ProcessRunner) SetExtraArgs(args []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extraArgs = append([]string(nil), args...)
}

// Run downloads sub and forwards parsed progress to out. On a clean exit a
// terminal 1.0 is sent. out is always closed with the returned error.
func (r *ProcessRunner) Run(ctx context.Context, sub model.Submission, out *progress.Channel) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("runner panic: %v", p)
		}
		out.Close(err)
	}()

	log := r.logger.WithField("url", sub.URL)

	if sub.Directory != "" {
		if err := platform.CreateDirectoryIfNotExists(sub.Directory); err != nil {
			return &SpawnError{Err: fmt.Errorf("failed to create output directory: %w", err)}
		}
	}

	bin, err := r.exe.Ensure(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &SpawnError{Err: err}
	}

	r.mu.RLock()
	args := BuildArgs(sub, r.extraArgs)
	r.mu.RUnlock()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.WaitDelay = KillWaitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &SpawnError{Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Err: err}
	}
	log.Debugf("started %s %s", bin, strings.Join(args, " "))

	var stderrTail string
	var g errgroup.Group
	g.Go(func() error {
		if err := forwardProgress(stdout, out, log); err != nil {
			// Nobody reads stdout anymore; stop the process instead of letting it block.
			_ = cmd.Process.Kill()
			return err
		}
		return nil
	})
	g.Go(func() error {
		stderrTail = lastLine(stderr, log)
		return nil
	})
	streamErr := g.Wait()
	waitErr := cmd.Wait()

	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case streamErr != nil:
		return &StreamError{Err: streamErr}
	case waitErr != nil:
		return &ExitError{Err: waitErr, Stderr: stderrTail}
	}

	out.Send(1.0)
	log.Infof("download finished")
	return nil
}

// forwardProgress scans r line by line and sends every parsed value on out
func forwardProgress(r io.Reader, out *progress.Channel, log logster.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	for scanner.Scan() {
		line := scanner.Text()
		if v, ok := progress.Parse(line); ok {
			out.Send(v)
			continue
		}
		log.Debugf("yt-dlp: %s", line)
	}
	return scanner.Err()
}

// lastLine consumes r and returns its last non-empty line
func lastLine(r io.Reader, log logster.Logger) string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)

	var last string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		log.Debugf("yt-dlp stderr: %s", line)
		last = line
	}
	if err := scanner.Err(); err != nil {
		// Keep the pipe drained so the child never blocks on stderr.
		_, _ = io.Copy(io.Discard, r)
	}
	return last
}
