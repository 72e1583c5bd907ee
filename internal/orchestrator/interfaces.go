package orchestrator

import (
	"context"

	"github.com/ytget/ytfetch/internal/model"
)

// PlaylistExpander resolves a playlist URL into its videos
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) (*model.Playlist, error)
}

// HistoryRecorder persists finished tasks
type HistoryRecorder interface {
	Record(ctx context.Context, task model.Task) error
}
