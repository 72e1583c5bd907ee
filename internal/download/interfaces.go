package download

import (
	"context"

	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/progress"
)

// Runner downloads one submission and reports progress on out.
// Implementations close out (with the returned error) before returning and
// send a terminal 1.0 before a nil close; a nil close short of 1.0 fails the task.
type Runner interface {
	Run(ctx context.Context, sub model.Submission, out *progress.Channel) error
}

// Executable resolves the yt-dlp binary, materializing it if needed.
type Executable interface {
	Ensure(ctx context.Context) (string, error)
}
