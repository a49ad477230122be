package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/download"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/matting"
	"github.com/dinosave/remix-studio/internal/remix"
	"github.com/dinosave/remix-studio/internal/render"
	"github.com/dinosave/remix-studio/internal/workspace"
)

// Downloader fetches remote videos into the workspace.
type Downloader interface {
	Download(ctx context.Context, url string, removeWatermark bool) (*download.Result, error)
	Info(ctx context.Context, url string) (*download.Info, error)
}

type Remixer interface {
	Remix(ctx context.Context, req render.EditRequest) (*remix.Result, error)
}

type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, ref string) (assets.Record, error)
	Capability() matting.Capability
}

// FileServer streams a file honouring byte ranges.
type FileServer interface {
	ServeFile(w http.ResponseWriter, r *http.Request, filePath, contentType string) error
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Addr       string
	Workspace  *workspace.Workspace
	Assets     *assets.Store
	Downloader Downloader
	Remixer    Remixer
	Matting    BackgroundRemover
	Jobs       jobs.Repository
	Playback   FileServer
	Logger     *slog.Logger
	StartTime  time.Time
	Version    string
}

func NewServer(cfg ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 15 * time.Second,
			// Renders and downloads can run for minutes.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
