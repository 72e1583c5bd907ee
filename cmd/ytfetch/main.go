package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ytget/ytfetch/assets"
	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/download"
	"github.com/ytget/ytfetch/internal/history"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/pkg/logster"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.ytfetch"
	AppName = "ytfetch"

	ShutdownTimeout = 10 * time.Second
)

type flags struct {
	configFile string
	envFile    string
	headless   bool
	quality    string
	dir        string
	history    int
	urls       []string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.StringVar(&f.configFile, "config", "", "Path to the YAML config file")
	fs.StringVar(&f.envFile, "env", config.DefaultEnvFile, "Path to the .env file")
	fs.BoolVar(&f.headless, "headless", false, "Download the given URLs without a window")
	fs.StringVar(&f.quality, "quality", "", "Quality preset for headless downloads")
	fs.StringVar(&f.dir, "dir", "", "Output directory for headless downloads")
	fs.IntVar(&f.history, "history", 0, "Print the N most recent downloads and exit")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	f.urls = fs.Args()
	if f.history < 0 {
		return flags{}, fmt.Errorf("history count must be positive, got %d", f.history)
	}
	if f.history > 0 {
		return f, nil
	}
	if f.headless && len(f.urls) == 0 {
		return flags{}, fmt.Errorf("headless mode needs at least one URL")
	}
	return f, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run wires the application and returns the process exit code
func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := config.LoadDotEnv(f.envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load(f.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger := logster.New(os.Stdout, cfg.Logger)
	defer func() { _ = logger.Sync() }()
	logger.Infof("%s v%s starting", AppName, version)

	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			logger.WithError(err).Warnf("download history disabled")
		} else {
			defer func() { _ = logster.LogIfError(logger, store.Close(), "failed to close history") }()
		}
	}

	if f.history > 0 {
		if store == nil {
			logger.Errorf("download history is not available")
			return 1
		}
		if err := printHistory(context.Background(), store, f.history, os.Stdout); err != nil {
			logger.WithError(err).Errorf("failed to read history")
			return 1
		}
		return 0
	}

	materializer := platform.NewMaterializer(
		platform.NewEmbeddedPayload(assets.FS, assets.BinDir), cfg.BinDir, cfg.FallbackToPath)
	runner := download.NewProcessRunner(materializer, logger)
	runner.SetExtraArgs(cfg.ExtraArgs)

	deps := services{
		cfg:       cfg,
		runner:    runner,
		history:   store,
		playlists: platform.NewPlaylistExpander(),
		logger:    logger,
	}

	if f.headless {
		err = runHeadless(context.Background(), deps, f)
	} else {
		err = runGUI(deps)
	}
	if err != nil {
		logger.WithError(err).Errorf("%s stopped", AppName)
		return 1
	}
	return 0
}
