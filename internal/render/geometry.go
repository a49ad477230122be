package render

import (
	"fmt"
	"math"
)

const (
	overlayMargin  = 20
	textSideMargin = 20
	textEdgeMargin = 40

	// FallbackWidth and FallbackHeight are used when the source cannot be
	// probed: a 9:16 portrait frame.
	FallbackWidth  = 1080
	FallbackHeight = 1920

	// MaxOverlayWidth caps the scaled overlay width in pixels.
	MaxOverlayWidth = 8192

	// MinOverlayScale and MaxOverlayScale bound the accepted scale range.
	// At the minimum a 100 px wide source still yields a 1 px overlay.
	MinOverlayScale = 0.01
	MaxOverlayScale = 4.0
)

// OverlayPosition places an overlay's top-left corner at a percentage of the
// current composite frame. main_w/main_h are evaluated by ffmpeg at that
// stage, so stacked overlays stay relative to the frame they land on.
func OverlayPosition(xPct, yPct float64) (x, y string) {
	return fmt.Sprintf("(main_w*%s)", formatFloat(xPct/100)),
		fmt.Sprintf("(main_h*%s)", formatFloat(yPct/100))
}

// NamedOverlayPosition resolves one of the fixed anchors. Unknown names fall
// back to bottom-right.
func NamedOverlayPosition(name string) (x, y string) {
	m := overlayMargin
	switch name {
	case "top-left":
		return fmt.Sprintf("%d", m), fmt.Sprintf("%d", m)
	case "top-right":
		return fmt.Sprintf("main_w-overlay_w-%d", m), fmt.Sprintf("%d", m)
	case "bottom-left":
		return fmt.Sprintf("%d", m), fmt.Sprintf("main_h-overlay_h-%d", m)
	case "center":
		return "(main_w-overlay_w)/2", "(main_h-overlay_h)/2"
	default:
		return fmt.Sprintf("main_w-overlay_w-%d", m), fmt.Sprintf("main_h-overlay_h-%d", m)
	}
}

// TextPosition returns drawtext x/y expressions. Explicit coordinates centre
// the text box on the point; otherwise the named anchor is used, falling back
// to top-center.
func TextPosition(name string, xPct, yPct *float64) (x, y string) {
	if xPct != nil && yPct != nil {
		return fmt.Sprintf("(w*%s-text_w/2)", formatFloat(*xPct/100)),
			fmt.Sprintf("(h*%s-text_h/2)", formatFloat(*yPct/100))
	}

	switch name {
	case "top-left":
		return fmt.Sprintf("%d", textSideMargin), fmt.Sprintf("%d", textEdgeMargin)
	case "top-right":
		return fmt.Sprintf("w-text_w-%d", textSideMargin), fmt.Sprintf("%d", textEdgeMargin)
	case "center":
		return "(w-text_w)/2", "(h-text_h)/2"
	case "bottom-center":
		return "(w-text_w)/2", fmt.Sprintf("h-text_h-%d", textEdgeMargin)
	default:
		return "(w-text_w)/2", fmt.Sprintf("%d", textEdgeMargin)
	}
}

// OverlayTargetWidth is the pixel width an overlay is scaled to:
// floor(sourceWidth * scale), clamped to [1, MaxOverlayWidth]. A width of 0
// would make ffmpeg keep the overlay's native size.
func OverlayTargetWidth(sourceWidth int, scale float64) int {
	w := math.Floor(float64(sourceWidth) * scale)
	if math.IsNaN(w) || w < 1 {
		return 1
	}
	if w > MaxOverlayWidth {
		return MaxOverlayWidth
	}
	return int(w)
}

// ValidOverlayScale reports whether scale is inside the accepted range.
func ValidOverlayScale(scale float64) bool {
	return scale >= MinOverlayScale && scale <= MaxOverlayScale
}

func overlayAnchorPosition(o OverlaySpec) (x, y string) {
	if o.X != nil && o.Y != nil {
		return OverlayPosition(*o.X, *o.Y)
	}
	anchor := o.Anchor
	if anchor == "" {
		anchor = DefaultOverlayAnchor
	}
	return NamedOverlayPosition(anchor)
}
