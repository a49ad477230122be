// Package workspace owns the on-disk layout for downloaded sources, render
// outputs and uploads.
package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidID = errors.New("invalid video id")

const (
	tempDir    = "temp"
	outputDir  = "output"
	uploadsDir = "uploads"
	assetsDir  = "assets"

	defaultUploadExt = ".mp4"
)

// Workspace roots every working directory under one data dir.
type Workspace struct {
	root string
}

func New(root string) *Workspace {
	return &Workspace{root: root}
}

func (w *Workspace) Root() string      { return w.root }
func (w *Workspace) TempDir() string   { return filepath.Join(w.root, tempDir) }
func (w *Workspace) OutputDir() string { return filepath.Join(w.root, outputDir) }
func (w *Workspace) AssetsDir() string { return filepath.Join(w.root, assetsDir) }

// EnsureDirs creates the working directories and the asset subdirectories.
func (w *Workspace) EnsureDirs() error {
	dirs := []string{
		w.TempDir(),
		w.OutputDir(),
		filepath.Join(w.root, uploadsDir),
		filepath.Join(w.AssetsDir(), "overlays"),
		filepath.Join(w.AssetsDir(), "audio"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}

// NewID returns an eight character identifier for a source or output.
func NewID() string {
	return uuid.NewString()[:8]
}

// ValidateID rejects ids that could escape the working directories or act
// as glob patterns.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\*?[]`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// FindSource returns the first temp file named "<id>.<ext>".
func (w *Workspace) FindSource(id string) (string, bool) {
	if ValidateID(id) != nil {
		return "", false
	}
	matches, err := filepath.Glob(filepath.Join(w.TempDir(), id+".*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			return m, true
		}
	}
	return "", false
}

// SaveUpload stores r as a new source, keeping the original extension.
func (w *Workspace) SaveUpload(originalName string, r io.Reader) (id, filename string, err error) {
	ext := filepath.Ext(filepath.Base(originalName))
	if ext == "" {
		ext = defaultUploadExt
	}
	id = NewID()
	filename = id + ext

	dst := filepath.Join(w.TempDir(), filename)
	f, err := os.Create(dst)
	if err != nil {
		return "", "", fmt.Errorf("create upload: %w", err)
	}
	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dst)
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	return id, filename, nil
}

// Cleanup deletes every file in temp/ and output/ whose name contains id and
// returns their paths relative to the workspace root.
func (w *Workspace) Cleanup(id string) ([]string, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	deleted := []string{}
	for _, dir := range []string{tempDir, outputDir} {
		entries, err := os.ReadDir(filepath.Join(w.root, dir))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return deleted, fmt.Errorf("list %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.Contains(e.Name(), id) {
				continue
			}
			if err := os.Remove(filepath.Join(w.root, dir, e.Name())); err != nil {
				return deleted, fmt.Errorf("delete %s: %w", e.Name(), err)
			}
			deleted = append(deleted, filepath.ToSlash(filepath.Join(dir, e.Name())))
		}
	}
	return deleted, nil
}

// OutputPath is where a finished render named filename is published.
func (w *Workspace) OutputPath(filename string) string {
	return filepath.Join(w.OutputDir(), filename)
}

// StagingPath is the in-progress file for filename. It lives in temp/, which
// is never served, and on the same filesystem as output/ so publishing is a
// rename.
func (w *Workspace) StagingPath(filename string) string {
	return filepath.Join(w.TempDir(), ".partial-"+filename)
}
