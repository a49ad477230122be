package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dinosave/remix-studio/internal/assets"
)

const (
	basePad  Pad = "0:v"
	adjusted Pad = "vbase"
	texted   Pad = "texted"
)

// AssetResolver locates overlay and audio files.
type AssetResolver interface {
	Resolve(kind assets.Kind, ref string) assets.Result
}

// Compiler builds filter graphs. It holds no per-request state and is safe
// for concurrent use.
type Compiler struct {
	resolver AssetResolver
}

func NewCompiler(resolver AssetResolver) *Compiler {
	return &Compiler{resolver: resolver}
}

// Compiled is a Graph plus the overlay refs that could not be resolved.
type Compiled struct {
	*Graph
	Skipped []string
}

// Compile builds the filter graph for req. width and height are the probed
// source dimensions; non-positive values fall back to 1080x1920.
//
// Overlays whose asset cannot be resolved are skipped without consuming an
// input index, so later overlays keep consecutive indices.
func (c *Compiler) Compile(req EditRequest, width, height int) *Compiled {
	if width <= 0 || height <= 0 {
		width, height = FallbackWidth, FallbackHeight
	}

	b := newGraphBuilder(basePad)
	out := &Compiled{Graph: &Graph{}}

	if filters := adjustFilters(req); len(filters) > 0 {
		b.chain(adjusted, nil, filters...)
	}

	nextInput := 1
	for i, o := range req.OverlayList() {
		res := c.resolver.Resolve(assets.KindOverlay, o.AssetRef)
		if !res.Found {
			out.Skipped = append(out.Skipped, o.AssetRef)
			continue
		}

		idx := nextInput
		nextInput++
		out.Inputs = append(out.Inputs, Input{Index: idx, Path: res.Path, Kind: InputOverlay})

		scaled := c.prepareOverlay(b, i, InputPad(idx), o, res.Path, width)

		x, y := overlayAnchorPosition(o)
		b.chain(Pad(fmt.Sprintf("overlaid_%d", i)), []Pad{scaled}, Filter{
			Name: "overlay",
			Args: []Arg{
				Positional(x),
				Positional(y),
				Named("eof_action", "repeat"),
				Named("format", "auto"),
			},
		})
	}

	if req.Text != nil && req.Text.Content != "" {
		b.chain(texted, nil, drawText(*req.Text))
	}

	if req.AudioRef != "" {
		if res := c.resolver.Resolve(assets.KindAudio, req.AudioRef); res.Found {
			out.Audio = &Input{Index: nextInput, Path: res.Path, Kind: InputAudio}
		}
	}

	out.Nodes = b.nodes
	out.Output = b.current
	out.Passthrough = len(b.nodes) == 0
	return out
}

// prepareOverlay emits the keying and scaling stages for one overlay input and
// returns the pad holding the scaled result.
func (c *Compiler) prepareOverlay(b *graphBuilder, i int, in Pad, o OverlaySpec, path string, width int) Pad {
	scale := o.Scale
	if scale <= 0 {
		scale = DefaultOverlayScale
	}
	scaled := Pad(fmt.Sprintf("overlay_scaled_%d", i))
	scaler := Filter{Name: "scale", Args: []Arg{
		Positional(fmt.Sprintf("%d", OverlayTargetWidth(width, scale))),
		Positional("-1"),
		Named("flags", "lanczos"),
	}}
	rgba := Filter{Name: "format", Args: []Arg{Positional("rgba")}}

	switch {
	case o.RemoveGreenScreen:
		keyed := Pad(fmt.Sprintf("chroma_%d", i))
		b.side(in, keyed, Filter{Name: "chromakey", Args: []Arg{
			Positional("0x00FF00"), Positional("0.3"), Positional("0.1"),
		}}, rgba)
		b.side(keyed, scaled, scaler)
	case o.RemoveBlackScreen:
		keyed := Pad(fmt.Sprintf("colorkey_%d", i))
		b.side(in, keyed, Filter{Name: "colorkey", Args: []Arg{
			Positional("0x000000"), Positional("0.3"), Positional("0.2"),
		}}, rgba)
		b.side(keyed, scaled, scaler)
	case HasNativeAlpha(path):
		b.side(in, scaled, rgba, scaler)
	default:
		b.side(in, scaled, scaler)
	}
	return scaled
}

// HasNativeAlpha reports whether the container can carry an alpha channel.
func HasNativeAlpha(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webm", ".mov", ".png", ".gif":
		return true
	}
	return false
}

func adjustFilters(req EditRequest) []Filter {
	var filters []Filter
	if req.hasColorAdjust() {
		filters = append(filters, Filter{Name: "eq", Args: []Arg{
			Named("brightness", formatFloat(float64(req.Brightness)/100)),
			Named("contrast", formatFloat(1+float64(req.Contrast)/100)),
			Named("saturation", formatFloat(1+float64(req.Saturation)/50)),
		}})
	}
	if speed := req.Speed(); speed != DefaultSpeed {
		filters = append(filters, Filter{Name: "setpts", Args: []Arg{
			Positional(formatFloat(PTSFactor(speed)) + "*PTS"),
		}})
	}
	return filters
}

// PTSFactor is the presentation timestamp multiplier for a playback speed.
func PTSFactor(speed float64) float64 {
	return 1 / speed
}

func drawText(t TextSpec) Filter {
	size := t.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	position := t.Position
	if position == "" {
		position = DefaultTextAnchor
	}
	x, y := TextPosition(position, t.X, t.Y)

	return Filter{Name: "drawtext", Args: []Arg{
		Named("text", "'"+EscapeText(t.Content)+"'"),
		Named("fontsize", fmt.Sprintf("%d", size)),
		Named("fontcolor", "white"),
		Named("borderw", "3"),
		Named("bordercolor", "black"),
		Named("x", x),
		Named("y", y),
	}}
}
