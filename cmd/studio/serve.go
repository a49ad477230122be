package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/dinosave/remix-studio/internal/api"
	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/config"
	"github.com/dinosave/remix-studio/internal/db"
	"github.com/dinosave/remix-studio/internal/download"
	"github.com/dinosave/remix-studio/internal/ffmpeg"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/logging"
	"github.com/dinosave/remix-studio/internal/matting"
	"github.com/dinosave/remix-studio/internal/playback"
	"github.com/dinosave/remix-studio/internal/remix"
	"github.com/dinosave/remix-studio/internal/render"
	"github.com/dinosave/remix-studio/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	startTime := time.Now()

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel(), cfg.LogFormat())
	logger.Info("starting remix studio", "version", config.Version, "data_dir", cfg.DataDir())

	ws := workspace.New(cfg.DataDir())
	if err := ws.EnsureDirs(); err != nil {
		return fmt.Errorf("create working directories: %w", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
	}
	if !locked {
		return fmt.Errorf("another studio instance is using %s", cfg.DataDir())
	}
	defer lock.Unlock()

	database, err := db.Open(cfg.DBPath(), logging.WithComponent(logger, "db"))
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer database.Close()
	jobRepo := jobs.NewRepository(database.Conn())

	runner := ffmpeg.NewRunner(ffmpeg.Config{
		FFmpegPath:  cfg.FFmpegPath(),
		FFprobePath: cfg.FFprobePath(),
		Logger:      logging.WithComponent(logger, "exec"),
	})
	if !runner.Available() {
		logger.Warn("ffmpeg not found, renders will fail", "path", cfg.FFmpegPath())
	}

	resolver := assets.NewResolver(ws.AssetsDir())
	store := assets.NewStore(resolver, "/assets")

	remixSvc := remix.NewService(remix.Config{
		Workspace:  ws,
		Compiler:   render.NewCompiler(resolver),
		Transcoder: runner,
		Jobs:       jobRepo,
		Logger:     logging.WithComponent(logger, "remix"),
	})

	extractor := download.NewExtractor(cfg.YTDLPPath(), runner, ws, logging.WithComponent(logger, "download"))

	capability := matting.ResolveCapability(cfg.RemoveBGAPIKey(), cfg.RembgPath())
	mattingCfg := matting.AdapterConfig{
		Capability: capability,
		Frames:     runner,
		Store:      store,
		Logger:     logging.WithComponent(logger, "matting"),
	}
	if capability.HasRemote() {
		mattingCfg.Remote = matting.NewRemoteClient(cfg.RemoveBGURL(), cfg.RemoveBGAPIKey(), logger)
		logger.Info("remote background removal enabled", "api_key", logging.SanitizeToken(cfg.RemoveBGAPIKey()))
	}
	if capability.HasLocal() {
		mattingCfg.Local = matting.NewLocalRunner(cfg.RembgPath(), runner)
	}
	logger.Info("background removal capability", "capability", capability.String())

	apiServer := api.NewServer(api.ServerConfig{
		Addr:       cfg.Addr(),
		Workspace:  ws,
		Assets:     store,
		Downloader: extractor,
		Remixer:    remixSvc,
		Matting:    matting.NewAdapter(mattingCfg),
		Jobs:       jobRepo,
		Playback:   playback.NewServer(logger),
		Logger:     logger,
		StartTime:  startTime,
		Version:    config.Version,
	})

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}
