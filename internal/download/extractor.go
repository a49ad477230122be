// Package download fetches source videos from social platforms with yt-dlp.
package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dinosave/remix-studio/internal/ffmpeg"
	"github.com/dinosave/remix-studio/internal/workspace"
)

const (
	format         = "best[ext=mp4]/best"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	accept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-us,en;q=0.5"
	// Mobile API host that serves TikTok videos without the watermark.
	tiktokAPIHost = "api22-normal-c-useast2a.tiktokv.com"

	defaultTitle = "Video"
)

var ErrAuthRequired = errors.New("this video requires login, try a public video")

// ExtractError is a yt-dlp failure other than an authentication wall.
type ExtractError struct {
	Stderr string
}

func (e *ExtractError) Error() string {
	return "download failed: " + strings.TrimSpace(e.Stderr)
}

// CommandRunner runs a binary and returns its stdout; *ffmpeg.Runner
// satisfies it.
type CommandRunner interface {
	Output(ctx context.Context, bin string, args []string) ([]byte, error)
}

// Result describes a downloaded source video.
type Result struct {
	VideoID   string
	Filename  string
	Duration  *float64
	Thumbnail string
	Title     string
}

// Info is metadata about a remote video, fetched without downloading it.
type Info struct {
	Title     string   `json:"title"`
	Duration  *float64 `json:"duration"`
	Thumbnail *string  `json:"thumbnail"`
	Uploader  *string  `json:"uploader"`
	Platform  string   `json:"platform"`
}

type Extractor struct {
	bin    string
	runner CommandRunner
	ws     *workspace.Workspace
	logger *slog.Logger
}

func NewExtractor(bin string, runner CommandRunner, ws *workspace.Workspace, logger *slog.Logger) *Extractor {
	if bin == "" {
		bin = "yt-dlp"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{bin: bin, runner: runner, ws: ws, logger: logger}
}

type videoMetadata struct {
	Title        *string  `json:"title"`
	Duration     *float64 `json:"duration"`
	Thumbnail    *string  `json:"thumbnail"`
	Uploader     *string  `json:"uploader"`
	ExtractorKey string   `json:"extractor_key"`
}

// Download fetches url into the temp directory under a fresh video id.
func (e *Extractor) Download(ctx context.Context, url string, removeWatermark bool) (*Result, error) {
	id := workspace.NewID()
	args := e.baseArgs(removeWatermark)
	args = append(args,
		"-f", format,
		"-o", filepath.Join(e.ws.TempDir(), id+".%(ext)s"),
		"--dump-json",
		"--no-simulate",
		"--", url,
	)

	out, err := e.runner.Output(ctx, e.bin, args)
	if err != nil {
		return nil, classify(err)
	}

	path, ok := e.ws.FindSource(id)
	if !ok {
		return nil, fmt.Errorf("download failed: file not found for %s", id)
	}

	meta, err := parseMetadata(out)
	if err != nil {
		// The file is on disk; metadata is best-effort.
		e.logger.Warn("unreadable yt-dlp metadata", "video_id", id, "error", err)
	}

	res := &Result{
		VideoID:  id,
		Filename: filepath.Base(path),
		Duration: meta.Duration,
		Title:    defaultTitle,
	}
	if meta.Thumbnail != nil {
		res.Thumbnail = *meta.Thumbnail
	}
	if meta.Title != nil {
		res.Title = *meta.Title
	}
	e.logger.Info("video downloaded", "video_id", id, "filename", res.Filename)
	return res, nil
}

// Info reads metadata for url without downloading the media.
func (e *Extractor) Info(ctx context.Context, url string) (*Info, error) {
	args := append(e.baseArgs(false), "--dump-json", "--skip-download", "--", url)
	out, err := e.runner.Output(ctx, e.bin, args)
	if err != nil {
		return nil, classify(err)
	}
	meta, err := parseMetadata(out)
	if err != nil {
		return nil, err
	}
	info := &Info{
		Title:     defaultTitle,
		Duration:  meta.Duration,
		Thumbnail: meta.Thumbnail,
		Uploader:  meta.Uploader,
		Platform:  "unknown",
	}
	if meta.Title != nil {
		info.Title = *meta.Title
	}
	if meta.ExtractorKey != "" {
		info.Platform = strings.ToLower(meta.ExtractorKey)
	}
	return info, nil
}

func (e *Extractor) baseArgs(removeWatermark bool) []string {
	args := []string{
		"--no-warnings",
		"--add-header", "User-Agent:" + userAgent,
		"--add-header", "Accept:" + accept,
		"--add-header", "Accept-Language:" + acceptLanguage,
	}
	if removeWatermark {
		args = append(args, "--extractor-args", "tiktok:api_hostname="+tiktokAPIHost)
	}
	return args
}

func parseMetadata(out []byte) (videoMetadata, error) {
	var meta videoMetadata
	// With --no-simulate yt-dlp prints one JSON object per line; the first
	// describes the requested video.
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if err := json.Unmarshal([]byte(line), &meta); err != nil {
		return videoMetadata{}, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return meta, nil
}

func classify(err error) error {
	var perr *ffmpeg.ProcessError
	if !errors.As(err, &perr) {
		return err
	}
	if IsAuthRequired(perr.Stderr) {
		return ErrAuthRequired
	}
	return &ExtractError{Stderr: perr.Stderr}
}

// IsAuthRequired reports whether an extractor message indicates the video
// sits behind a login wall.
func IsAuthRequired(msg string) bool {
	return strings.Contains(msg, "Sign in") || strings.Contains(strings.ToLower(msg), "login")
}
