package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/config"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), config.Version) {
		t.Fatalf("output = %q, want version %s", out.String(), config.Version)
	}
}

func TestAssetsCommand(t *testing.T) {
	dir := t.TempDir()
	overlays := filepath.Join(dir, "assets", "overlays")
	if err := os.MkdirAll(overlays, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(overlays, "logo.png"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(config.EnvConfigFile, "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"assets"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"overlays (1)", "audio (0)", "logo.png", "/assets/overlays/logo.png", "2.0 kB"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderAssetTable_MissingType(t *testing.T) {
	got := renderAssetTable([]assets.Record{{ID: "beat.mp3", Filename: "beat.mp3", URL: "/assets/audio/beat.mp3"}}, false)
	if !strings.Contains(got, "beat.mp3") || !strings.Contains(got, "-") {
		t.Fatalf("table = %s", got)
	}
}
