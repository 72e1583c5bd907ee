package model

import (
	"fmt"
	"strings"
	"time"
)

// URL parameters and separators
const (
	VideoParam     = "v="
	ParamSeparator = "&"
)

// TitlePrefix is used for the initial title until richer metadata arrives
const TitlePrefix = "Video ID: "

// Task represents a single download tracked from submission to removal
type Task struct {
	ID         string
	VideoID    string // v= parameter of the URL, empty if absent
	URL        string
	Quality    Quality
	Directory  string
	Title      string
	Status     TaskStatus
	Progress   float64 // 0.0 to 1.0, never decreases
	Err        string  // failure reason when Status is Failed
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Submission is what a user hands to the orchestrator
type Submission struct {
	URL       string
	Quality   Quality
	Directory string
}

// NewTask builds a task in the Downloading state for the given submission
func NewTask(id string, sub Submission) Task {
	videoID := ExtractVideoID(sub.URL)
	title := sub.URL
	if videoID != "" {
		title = TitlePrefix + videoID
	}
	return Task{
		ID:        id,
		VideoID:   videoID,
		URL:       sub.URL,
		Quality:   sub.Quality,
		Directory: sub.Directory,
		Title:     title,
		Status:    TaskStatusDownloading,
		Progress:  0,
		CreatedAt: time.Now(),
	}
}

// Percent returns progress as an integer percentage in [0, 100]
func (t Task) Percent() int {
	p := int(t.Progress*100 + 0.5)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// GetStatusLine returns a short human readable state, e.g. "Downloading 42%"
func (t Task) GetStatusLine() string {
	switch t.Status {
	case TaskStatusDownloading:
		return fmt.Sprintf("%s %d%%", t.Status, t.Percent())
	case TaskStatusFailed:
		if t.Err != "" {
			return fmt.Sprintf("%s: %s", t.Status, t.Err)
		}
	}
	return t.Status.String()
}

// GetDisplayTitle returns title or URL in order of preference
func (t Task) GetDisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// ExtractVideoID returns the value of the v= parameter, or "" when absent
func ExtractVideoID(url string) string {
	_, rest, ok := strings.Cut(url, VideoParam)
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, ParamSeparator)
	return id
}
