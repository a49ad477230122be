// Package ffmpeg runs the external transcoder and prober, plus the other
// helper binaries the studio shells out to.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

const (
	maxStderrBytes = 16 * 1024 // tail of stderr kept for diagnostics
)

// ProcessError is a non-zero exit from an external tool. Stderr carries the
// tool's own diagnostics.
type ProcessError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s error (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
}

// Config holds binary locations.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *slog.Logger
}

// Runner executes ffmpeg and ffprobe as subprocesses.
type Runner struct {
	ffmpeg  string
	ffprobe string
	logger  *slog.Logger
}

func NewRunner(cfg Config) *Runner {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{ffmpeg: cfg.FFmpegPath, ffprobe: cfg.FFprobePath, logger: cfg.Logger}
}

// Run executes ffmpeg with args and blocks until it exits.
func (r *Runner) Run(ctx context.Context, args []string) error {
	_, err := r.exec(ctx, r.ffmpeg, args, false)
	return err
}

// RunBinary executes an arbitrary helper binary with the same logging and
// stderr capture as Run.
func (r *Runner) RunBinary(ctx context.Context, bin string, args []string) error {
	_, err := r.exec(ctx, bin, args, false)
	return err
}

// Output executes bin and returns its stdout.
func (r *Runner) Output(ctx context.Context, bin string, args []string) ([]byte, error) {
	return r.exec(ctx, bin, args, true)
}

// Available reports whether the ffmpeg binary can be found.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.ffmpeg)
	return err == nil
}

func (r *Runner) exec(ctx context.Context, bin string, args []string, captureStdout bool) ([]byte, error) {
	start := time.Now()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}
	if captureStdout {
		cmd.Stdout = &stdout
	} else {
		cmd.Stdout = io.Discard
	}

	r.logger.Info("executing command", "bin", bin, "args", args)

	err := cmd.Run()
	elapsed := time.Since(start)
	if err == nil {
		r.logger.Debug("command succeeded", "bin", bin, "duration_ms", elapsed.Milliseconds())
		return stdout.Bytes(), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%s interrupted: %w", bin, ctxErr)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	perr := &ProcessError{Tool: bin, ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
	r.logger.Warn("command failed",
		"bin", bin,
		"exit_code", perr.ExitCode,
		"duration_ms", elapsed.Milliseconds(),
		"stderr_tail", truncate(perr.Stderr, 512),
	)
	return nil, perr
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last limit bytes written to it.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := make([]byte, lw.limit)
		copy(tail, b[len(b)-lw.limit:])
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
