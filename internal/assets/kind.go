// Package assets locates and manages reusable overlay and audio files.
package assets

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound          = errors.New("asset not found")
	ErrMissingFilename   = errors.New("missing filename")
	ErrExtensionRejected = errors.New("unsupported file format")
)

type Kind int

const (
	KindOverlay Kind = iota + 1
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindOverlay:
		return "overlays"
	case KindAudio:
		return "audio"
	}
	return "unknown"
}

// KindSpec is the per-kind resolution and upload policy.
type KindSpec struct {
	// Subdir is relative to the assets root and doubles as the URL segment.
	Subdir string
	// Probe lists extensions tried after an exact-name miss, in order.
	Probe []string
	// StemScan enables the final directory scan by filename stem.
	StemScan bool
	// Allowed is the upload allow-list (lowercase, with dot).
	Allowed []string
	// IDByStem selects the stem (true) or full filename as the public id.
	IDByStem bool
}

var overlayExtensions = []string{".mov", ".mp4", ".webm", ".gif", ".png"}

var kindTable = map[Kind]KindSpec{
	KindOverlay: {
		Subdir:   "overlays",
		Probe:    overlayExtensions,
		StemScan: true,
		Allowed:  overlayExtensions,
		IDByStem: true,
	},
	KindAudio: {
		Subdir:  "audio",
		Allowed: []string{".mp3", ".wav", ".m4a", ".aac"},
	},
}

// Spec returns the policy for k.
func Spec(k Kind) KindSpec {
	return kindTable[k]
}

// Allows reports whether filename has an extension accepted for uploads.
func (s KindSpec) Allows(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range s.Allowed {
		if a == ext {
			return true
		}
	}
	return false
}

// MediaType classifies an overlay file: animated containers are "video",
// still images are "image".
func MediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mov", ".mp4", ".webm", ".gif":
		return "video"
	}
	return "image"
}

// Stem returns the filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
