package matting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ProcessRunner runs an external binary; *ffmpeg.Runner satisfies it.
type ProcessRunner interface {
	RunBinary(ctx context.Context, bin string, args []string) error
}

// LocalRunner invokes the rembg CLI.
type LocalRunner struct {
	bin    string
	runner ProcessRunner
}

func NewLocalRunner(bin string, runner ProcessRunner) *LocalRunner {
	if bin == "" {
		bin = "rembg"
	}
	return &LocalRunner{bin: bin, runner: runner}
}

// Remove runs `rembg i in out`, writing to a temp file first so a failed
// run never leaves a partial result at outPath.
func (l *LocalRunner) Remove(ctx context.Context, inPath, outPath string) error {
	tmp := filepath.Join(filepath.Dir(outPath), ".rembg-"+filepath.Base(outPath))
	if err := l.runner.RunBinary(ctx, l.bin, []string{"i", inPath, tmp}); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}
