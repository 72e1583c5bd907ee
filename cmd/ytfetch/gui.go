package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/thumbnail"
	"github.com/ytget/ytfetch/internal/ui"
)

// runGUI opens the desktop window and blocks until it is closed
func runGUI(deps services) error {
	myApp := app.NewWithID(AppID)

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(myApp)
	if deps.cfg.DownloadDir != "" {
		settings.SetDownloadDirectory(deps.cfg.DownloadDir)
	}
	downloadsDir := settings.GetDownloadDirectory()
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		deps.logger.WithError(err).Warnf("failed to ensure downloads dir %s", downloadsDir)
	}

	deps.fetcher = thumbnail.NewHTTPFetcher(nil, deps.cfg.ThumbnailURL)
	orch, err := deps.newOrchestrator(settings.GetMaxParallelDownloads(), settings.GetQuality(), downloadsDir)
	if err != nil {
		return err
	}

	root := ui.NewRootUI(myWindow, orch, settings, deps.logger, deps.cfg.PollInterval)
	root.Start()

	myWindow.ShowAndRun()

	root.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err = orch.Shutdown(ctx)
	// Record the runners stopped by the shutdown.
	orch.Tick()
	return err
}
