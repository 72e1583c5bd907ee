package model

import (
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"https://www.youtube.com/watch?v=abc&list=PL1", "abc"},
		{"https://youtu.be/abc123", ""},
		{"", ""},
	}

	for _, test := range tests {
		result := ExtractVideoID(test.url)
		if result != test.expected {
			t.Errorf("ExtractVideoID(%q) = %q, expected %q", test.url, result, test.expected)
		}
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask("task-1", Submission{
		URL:       "https://www.youtube.com/watch?v=xyz",
		Quality:   Quality720p,
		Directory: "/tmp",
	})

	if task.Status != TaskStatusDownloading {
		t.Errorf("Expected status Downloading, got %s", task.Status)
	}
	if task.Progress != 0 {
		t.Errorf("Expected progress 0, got %v", task.Progress)
	}
	if task.Title != "Video ID: xyz" {
		t.Errorf("Expected title 'Video ID: xyz', got '%s'", task.Title)
	}
	if task.VideoID != "xyz" {
		t.Errorf("Expected video id 'xyz', got '%s'", task.VideoID)
	}
	if task.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
}

func TestNewTask_NoVideoID(t *testing.T) {
	task := NewTask("task-2", Submission{URL: "https://vimeo.com/123"})

	if task.Title != "https://vimeo.com/123" {
		t.Errorf("Expected URL as title, got '%s'", task.Title)
	}
}

func TestTask_Percent(t *testing.T) {
	tests := []struct {
		progress float64
		expected int
	}{
		{0, 0},
		{0.62, 62},
		{0.999, 100},
		{1, 100},
		{1.5, 100},
		{-0.2, 0},
	}

	for _, test := range tests {
		task := Task{Progress: test.progress}
		if got := task.Percent(); got != test.expected {
			t.Errorf("Percent() with Progress=%v = %d, expected %d", test.progress, got, test.expected)
		}
	}
}

func TestTask_GetStatusLine(t *testing.T) {
	tests := []struct {
		task     Task
		expected string
	}{
		{Task{Status: TaskStatusDownloading, Progress: 0.42}, "Downloading 42%"},
		{Task{Status: TaskStatusDone, Progress: 1}, "Done"},
		{Task{Status: TaskStatusFailed, Err: "exit status 1"}, "Failed: exit status 1"},
		{Task{Status: TaskStatusFailed}, "Failed"},
		{Task{Status: TaskStatusCancelled}, "Cancelled"},
	}

	for _, test := range tests {
		if got := test.task.GetStatusLine(); got != test.expected {
			t.Errorf("GetStatusLine() = %q, expected %q", got, test.expected)
		}
	}
}

func TestTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		url      string
		expected string
	}{
		{"Video Title", "https://youtube.com/watch?v=123", "Video Title"},
		{"", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
	}

	for _, test := range tests {
		task := Task{Title: test.title, URL: test.url}
		result := task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() with title='%s', url='%s' = '%s', expected '%s'",
				test.title, test.url, result, test.expected)
		}
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input    string
		expected Quality
	}{
		{"1080p", Quality1080p},
		{"720p", Quality720p},
		{"480p", Quality480p},
		{"360p", Quality360p},
		{"Audio Only", QualityAudioOnly},
		{"best", QualityBest},
		{"4K", QualityBest},
		{"", QualityBest},
	}

	for _, test := range tests {
		if got := ParseQuality(test.input); got != test.expected {
			t.Errorf("ParseQuality(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestPlaylist_Submissions(t *testing.T) {
	p := &Playlist{
		ID: "PL1",
		Entries: []PlaylistEntry{
			{VideoID: "a", URL: "https://www.youtube.com/watch?v=a"},
			{VideoID: "b", URL: "https://www.youtube.com/watch?v=b"},
		},
	}

	subs := p.Submissions(QualityAudioOnly, "/music")
	if len(subs) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(subs))
	}
	for i, sub := range subs {
		if sub.URL != p.Entries[i].URL {
			t.Errorf("Submission %d URL = %s, expected %s", i, sub.URL, p.Entries[i].URL)
		}
		if sub.Quality != QualityAudioOnly || sub.Directory != "/music" {
			t.Errorf("Submission %d = %+v, expected audio quality in /music", i, sub)
		}
	}
}
