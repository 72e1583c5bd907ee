package download

import "fmt"

// SpawnError means yt-dlp could not be started
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start yt-dlp: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// StreamError means reading yt-dlp output failed mid-stream
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("failed to read yt-dlp output: %v", e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// ExitError means yt-dlp exited with a non-zero status
type ExitError struct {
	Err    error
	Stderr string // last non-empty stderr line
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("yt-dlp failed: %s", e.Stderr)
	}
	return fmt.Sprintf("yt-dlp failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
