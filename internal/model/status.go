package model

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusDownloading means the process is running or queued for a worker
	TaskStatusDownloading TaskStatus = "Downloading"

	// TaskStatusDone means progress reached 100%
	TaskStatusDone TaskStatus = "Done"

	// TaskStatusFailed means the process could not be spawned or exited with an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCancelled means the user cancelled the task before it finished
	TaskStatusCancelled TaskStatus = "Cancelled"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task can still receive progress updates
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusDownloading
}

// IsFinished returns true if the task is in a terminal state (done, failed, or cancelled)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusDone || ts == TaskStatusFailed || ts == TaskStatusCancelled
}
