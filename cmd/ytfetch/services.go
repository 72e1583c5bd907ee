package main

import (
	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/download"
	"github.com/ytget/ytfetch/internal/history"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/orchestrator"
	"github.com/ytget/ytfetch/internal/thumbnail"
	"github.com/ytget/ytfetch/internal/worker"
	"github.com/ytget/ytfetch/pkg/logster"
)

// services are the long lived collaborators shared by both hosts
type services struct {
	cfg       config.File
	runner    download.Runner
	history   *history.Store
	playlists orchestrator.PlaylistExpander
	fetcher   thumbnail.Fetcher
	logger    logster.Logger
}

// newOrchestrator wires an orchestrator over a fresh worker pool
func (s services) newOrchestrator(maxParallel int, quality model.Quality, dir string) (*orchestrator.Orchestrator, error) {
	opts := orchestrator.Options{
		Runner:           s.runner,
		Pool:             worker.New(config.ClampMaxParallel(maxParallel), s.logger),
		Thumbnails:       s.fetcher,
		Playlists:        s.playlists,
		DefaultQuality:   quality,
		DefaultDirectory: dir,
		Logger:           s.logger,
	}
	if s.history != nil {
		opts.History = s.history
	}
	return orchestrator.New(opts)
}
