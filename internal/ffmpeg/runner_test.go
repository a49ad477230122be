package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeTool writes an executable shell script standing in for ffmpeg/ffprobe.
func fakeTool(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return p
}

func TestLimitedWriter_KeepsOnlyTail(t *testing.T) {
	var buf bytes.Buffer
	lw := &limitedWriter{w: &buf, limit: 10}

	lw.Write([]byte("hello"))
	if buf.String() != "hello" {
		t.Errorf("after short write got %q, want %q", buf.String(), "hello")
	}

	n, err := lw.Write([]byte(" world of test data"))
	if err != nil || n != 19 {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	if got := buf.String(); got != " test data" {
		t.Errorf("after overflow got %q, want %q", got, " test data")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "...world"},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "args")
	bin := fakeTool(t, "ffmpeg", `echo "$@" > `+marker)

	r := NewRunner(Config{FFmpegPath: bin})
	if err := r.Run(context.Background(), []string{"-y", "-i", "in.mp4", "out.mp4"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if strings.TrimSpace(string(got)) != "-y -i in.mp4 out.mp4" {
		t.Errorf("args = %q", got)
	}
}

func TestRun_ProcessErrorCarriesStderr(t *testing.T) {
	bin := fakeTool(t, "ffmpeg", `echo "Invalid filtergraph" >&2; exit 3`)

	r := NewRunner(Config{FFmpegPath: bin})
	err := r.Run(context.Background(), nil)

	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("Run() error = %v, want *ProcessError", err)
	}
	if perr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", perr.ExitCode)
	}
	if !strings.Contains(perr.Stderr, "Invalid filtergraph") {
		t.Errorf("Stderr = %q", perr.Stderr)
	}
	if !strings.Contains(perr.Error(), "Invalid filtergraph") {
		t.Errorf("Error() = %q", perr.Error())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	r := NewRunner(Config{FFmpegPath: "/nonexistent/ffmpeg999"})
	err := r.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	var perr *ProcessError
	if errors.As(err, &perr) {
		t.Errorf("missing binary should not be a ProcessError: %v", err)
	}
	if r.Available() {
		t.Error("Available() = true for missing binary")
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	bin := fakeTool(t, "ffmpeg", "sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Config{FFmpegPath: bin})
	if err := r.Run(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestDimensions(t *testing.T) {
	bin := fakeTool(t, "ffprobe", `echo '{"streams":[{"width":720,"height":1280}]}'`)

	r := NewRunner(Config{FFprobePath: bin})
	w, h, err := r.Dimensions(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 720 || h != 1280 {
		t.Errorf("Dimensions() = %dx%d, want 720x1280", w, h)
	}
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		w, h    int
		wantErr bool
	}{
		{"ok", `{"streams":[{"width":1920,"height":1080}]}`, 1920, 1080, false},
		{"no streams", `{"streams":[]}`, 0, 0, true},
		{"zero size", `{"streams":[{"width":0,"height":0}]}`, 0, 0, true},
		{"garbage", `not json`, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := parseDimensions([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDimensions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if w != tt.w || h != tt.h {
				t.Errorf("parseDimensions() = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestExtractFrame_Args(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "args")
	bin := fakeTool(t, "ffmpeg", `echo "$@" > `+marker)

	r := NewRunner(Config{FFmpegPath: bin})
	if err := r.ExtractFrame(context.Background(), "clip.mov", "frame.png"); err != nil {
		t.Fatalf("ExtractFrame() error = %v", err)
	}
	got, _ := os.ReadFile(marker)
	if strings.TrimSpace(string(got)) != "-y -i clip.mov -frames:v 1 frame.png" {
		t.Errorf("args = %q", got)
	}
}
