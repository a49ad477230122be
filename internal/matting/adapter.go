package matting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dinosave/remix-studio/internal/assets"
)

var (
	ErrNotConfigured   = errors.New("background removal not available: set REMOVE_BG_API_KEY or install rembg")
	ErrOverlayNotFound = errors.New("overlay not found")
)

// Engine produces a matted PNG at outPath from the still image at inPath.
type Engine interface {
	Remove(ctx context.Context, inPath, outPath string) error
}

// FrameExtractor decodes the first frame of a video into an image file.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath, imagePath string) error
}

type Adapter struct {
	capability Capability
	remote     Engine
	local      Engine
	frames     FrameExtractor
	store      *assets.Store
	logger     *slog.Logger
}

type AdapterConfig struct {
	Capability Capability
	Remote     Engine
	Local      Engine
	Frames     FrameExtractor
	Store      *assets.Store
	Logger     *slog.Logger
}

func NewAdapter(cfg AdapterConfig) *Adapter {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		capability: cfg.Capability,
		remote:     cfg.Remote,
		local:      cfg.Local,
		frames:     cfg.Frames,
		store:      cfg.Store,
		logger:     cfg.Logger,
	}
}

func (a *Adapter) Capability() Capability {
	return a.capability
}

// engine picks remote when a credential is configured, otherwise local.
func (a *Adapter) engine() (Engine, string) {
	if a.capability.HasRemote() && a.remote != nil {
		return a.remote, "remote"
	}
	if a.capability.HasLocal() && a.local != nil {
		return a.local, "local"
	}
	return nil, ""
}

// RemoveBackground mattes the overlay ref and stores the result as
// "<stem>_nobg.png" beside it, replacing any previous result.
func (a *Adapter) RemoveBackground(ctx context.Context, ref string) (assets.Record, error) {
	eng, method := a.engine()
	if eng == nil {
		return assets.Record{}, ErrNotConfigured
	}

	res := a.store.Resolver().ResolveFold(assets.KindOverlay, ref)
	if !res.Found {
		return assets.Record{}, ErrOverlayNotFound
	}

	input := res.Path
	if assets.MediaType(res.Path) == "video" {
		frame, err := a.firstFrame(ctx, res.Path)
		if err != nil {
			return assets.Record{}, err
		}
		defer os.RemoveAll(filepath.Dir(frame))
		input = frame
	}

	out := filepath.Join(filepath.Dir(res.Path), assets.Stem(res.Path)+"_nobg.png")
	a.logger.Info("removing background", "overlay", ref, "method", method)

	if err := eng.Remove(ctx, input, out); err != nil {
		return assets.Record{}, fmt.Errorf("%s matting: %w", method, err)
	}

	return a.store.Record(assets.KindOverlay, out)
}

func (a *Adapter) firstFrame(ctx context.Context, videoPath string) (string, error) {
	dir, err := os.MkdirTemp("", "matting-frame-*")
	if err != nil {
		return "", fmt.Errorf("create frame dir: %w", err)
	}
	frame := filepath.Join(dir, "frame.png")
	if err := a.frames.ExtractFrame(ctx, videoPath, frame); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("extract first frame: %w", err)
	}
	return frame, nil
}
