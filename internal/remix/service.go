// Package remix runs one render from edit request to published output file.
package remix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/render"
	"github.com/dinosave/remix-studio/internal/workspace"
)

var ErrSourceNotFound = errors.New("source video not found")

const outputURLBase = "/output/"

// Transcoder probes and renders media; *ffmpeg.Runner satisfies it.
type Transcoder interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
	Run(ctx context.Context, args []string) error
}

type Result struct {
	JobID          string
	OutputFilename string
	OutputURL      string
	// Skipped lists overlay refs that did not resolve and were left out.
	Skipped []string
}

type Service struct {
	ws         *workspace.Workspace
	compiler   *render.Compiler
	transcoder Transcoder
	jobs       jobs.Repository
	encoding   render.Encoding
	logger     *slog.Logger
}

type Config struct {
	Workspace  *workspace.Workspace
	Compiler   *render.Compiler
	Transcoder Transcoder
	// Jobs is optional; without it renders are not recorded.
	Jobs     jobs.Repository
	Encoding *render.Encoding
	Logger   *slog.Logger
}

func NewService(cfg Config) *Service {
	enc := render.DefaultEncoding()
	if cfg.Encoding != nil {
		enc = *cfg.Encoding
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		ws:         cfg.Workspace,
		compiler:   cfg.Compiler,
		transcoder: cfg.Transcoder,
		jobs:       cfg.Jobs,
		encoding:   enc,
		logger:     cfg.Logger,
	}
}

// Remix renders req into output/remix_<id>.mp4. The file only appears under
// its final name once the transcoder has exited successfully.
func (s *Service) Remix(ctx context.Context, req render.EditRequest) (*Result, error) {
	source, ok := s.ws.FindSource(req.SourceVideoRef)
	if !ok {
		return nil, ErrSourceNotFound
	}

	id := workspace.NewID()
	filename := "remix_" + id + ".mp4"
	logger := s.logger.With("job_id", id, "video_id", req.SourceVideoRef)

	s.recordStart(ctx, logger, id, req.SourceVideoRef)

	result, err := s.render(ctx, logger, req, source, filename)
	if err != nil {
		s.recordFinish(ctx, logger, id, jobs.StatusFailed, "", err.Error())
		return nil, err
	}
	s.recordFinish(ctx, logger, id, jobs.StatusCompleted, filename, "")

	result.JobID = id
	return result, nil
}

func (s *Service) render(ctx context.Context, logger *slog.Logger, req render.EditRequest, source, filename string) (*Result, error) {
	width, height, err := s.transcoder.Dimensions(ctx, source)
	if err != nil {
		logger.Warn("probe failed, using fallback dimensions", "error", err)
		width, height = render.FallbackWidth, render.FallbackHeight
	}

	compiled := s.compiler.Compile(req, width, height)
	if len(compiled.Skipped) > 0 {
		logger.Warn("overlays not found, skipped", "refs", compiled.Skipped)
	}

	staging := s.ws.StagingPath(filename)
	args := render.Assemble(req, compiled.Graph, source, staging, s.encoding)

	if err := s.transcoder.Run(ctx, args); err != nil {
		os.Remove(staging)
		return nil, err
	}

	final := s.ws.OutputPath(filename)
	if err := os.Rename(staging, final); err != nil {
		os.Remove(staging)
		return nil, fmt.Errorf("publish output: %w", err)
	}

	logger.Info("remix completed", "output", filename, "stages", len(compiled.Nodes))
	return &Result{
		OutputFilename: filename,
		OutputURL:      outputURLBase + filename,
		Skipped:        compiled.Skipped,
	}, nil
}

func (s *Service) recordStart(ctx context.Context, logger *slog.Logger, id, sourceID string) {
	if s.jobs == nil {
		return
	}
	job := &jobs.Job{ID: id, Kind: jobs.KindRemix, Status: jobs.StatusRunning, SourceID: sourceID}
	if err := s.jobs.Create(ctx, job); err != nil {
		logger.Warn("failed to record job", "error", err)
	}
}

func (s *Service) recordFinish(ctx context.Context, logger *slog.Logger, id, status, output, errMsg string) {
	if s.jobs == nil {
		return
	}
	// The ledger is updated even when the request was cancelled.
	if err := s.jobs.Finish(context.WithoutCancel(ctx), id, status, output, errMsg); err != nil {
		logger.Warn("failed to update job", "error", err)
	}
}
