// Package render compiles a declarative edit request into a single ffmpeg
// filter graph and the ordered argument list that executes it.
package render

const (
	DefaultOverlayX     = 70.0
	DefaultOverlayY     = 70.0
	DefaultOverlayScale = 0.25
	DefaultFontSize     = 48
	DefaultSpeed        = 1.0

	DefaultOverlayAnchor = "bottom-right"
	DefaultTextAnchor    = "top-center"
)

// EditRequest describes one render job.
type EditRequest struct {
	SourceVideoRef string
	Overlays       []OverlaySpec

	// Legacy carries the single-overlay fields older clients still send.
	// It is only consulted when Overlays is empty.
	Legacy *LegacyOverlay

	AudioRef            string
	RemoveOriginalAudio bool

	Text *TextSpec

	TrimStart float64
	TrimEnd   *float64

	Brightness    int
	Contrast      int
	Saturation    int
	PlaybackSpeed float64
}

// OverlaySpec is one visual overlay composited onto the base video.
// X and Y are percentages of the current composite frame; when either is nil
// the named Anchor is used instead.
type OverlaySpec struct {
	AssetRef          string
	X                 *float64
	Y                 *float64
	Anchor            string
	Scale             float64
	RemoveGreenScreen bool
	RemoveBlackScreen bool
}

type LegacyOverlay struct {
	AssetRef          string
	Position          string
	X                 *float64
	Y                 *float64
	Scale             float64
	RemoveGreenScreen bool
	RemoveBlackScreen bool
}

// TextSpec is a burned-in caption.
type TextSpec struct {
	Content  string
	Position string
	X        *float64
	Y        *float64
	FontSize int
}

// OverlayList returns the overlays to composite, in request order. A legacy
// single overlay is normalised into a one-element list.
func (r EditRequest) OverlayList() []OverlaySpec {
	if len(r.Overlays) > 0 {
		return r.Overlays
	}
	if r.Legacy == nil || r.Legacy.AssetRef == "" {
		return nil
	}

	l := r.Legacy
	spec := OverlaySpec{
		AssetRef:          l.AssetRef,
		Anchor:            l.Position,
		Scale:             l.Scale,
		RemoveGreenScreen: l.RemoveGreenScreen,
		RemoveBlackScreen: l.RemoveBlackScreen,
	}
	// With no coordinates the anchor applies. One coordinate alone is kept
	// and the other axis defaults.
	if l.X != nil || l.Y != nil {
		x, y := DefaultOverlayX, DefaultOverlayY
		if l.X != nil {
			x = *l.X
		}
		if l.Y != nil {
			y = *l.Y
		}
		spec.X, spec.Y = &x, &y
	}
	return []OverlaySpec{spec}
}

// Speed returns the playback multiplier, treating non-positive values as 1.0.
func (r EditRequest) Speed() float64 {
	if r.PlaybackSpeed <= 0 {
		return DefaultSpeed
	}
	return r.PlaybackSpeed
}

// TrimDuration reports the output duration limit. ok is false when trimming
// does not apply, including TrimEnd <= TrimStart.
func (r EditRequest) TrimDuration() (d float64, ok bool) {
	if r.TrimEnd == nil || *r.TrimEnd <= r.TrimStart {
		return 0, false
	}
	return *r.TrimEnd - r.TrimStart, true
}

func (r EditRequest) hasColorAdjust() bool {
	return r.Brightness != 0 || r.Contrast != 0 || r.Saturation != 0
}
