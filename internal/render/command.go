package render

import (
	"strconv"
)

// Encoding holds the fixed output parameters appended to every render.
type Encoding struct {
	Threads      int
	VideoCodec   string
	PixelFormat  string
	Preset       string
	CRF          int
	MaxRate      string
	BufSize      string
	MovFlags     string
	AudioCodec   string
	AudioBitrate string
}

// DefaultEncoding is tuned for small memory footprints: single-threaded
// ultrafast x264 with a capped bitrate.
func DefaultEncoding() Encoding {
	return Encoding{
		Threads:      1,
		VideoCodec:   "libx264",
		PixelFormat:  "yuv420p",
		Preset:       "ultrafast",
		CRF:          28,
		MaxRate:      "2M",
		BufSize:      "1M",
		MovFlags:     "+faststart",
		AudioCodec:   "aac",
		AudioBitrate: "96k",
	}
}

// Assemble produces the ffmpeg argument list (without the binary) for a
// compiled graph. Ordering is significant: the trim seek precedes the primary
// input, the filter graph precedes the stream maps, and the duration limit
// sits immediately before the output path.
func Assemble(req EditRequest, g *Graph, sourcePath, outputPath string, enc Encoding) []string {
	args := []string{"-y"}

	if req.TrimStart > 0 {
		args = append(args, "-ss", formatFloat(req.TrimStart))
	}
	args = append(args, "-i", sourcePath)

	for _, in := range g.Inputs {
		args = append(args, "-i", in.Path)
	}
	if g.Audio != nil {
		args = append(args, "-i", g.Audio.Path)
	}

	if g.Passthrough {
		args = append(args, "-map", "0:v", "-c:v", "copy")
	} else {
		args = append(args, "-filter_complex", g.FilterComplex(), "-map", g.Output.String())
	}

	args = append(args, audioArgs(req, g)...)
	args = append(args, encodingArgs(enc, g.Passthrough)...)

	if d, ok := req.TrimDuration(); ok {
		args = append(args, "-t", formatFloat(d))
	}
	return append(args, outputPath)
}

// audioArgs picks the audio stream: a resolved replacement track wins, then
// explicit removal, then the original track (optional, tempo-matched).
func audioArgs(req EditRequest, g *Graph) []string {
	switch {
	case g.Audio != nil:
		return []string{"-map", strconv.Itoa(g.Audio.Index) + ":a", "-shortest"}
	case req.RemoveOriginalAudio:
		return []string{"-an"}
	}

	args := []string{"-map", "0:a?"}
	if speed := req.Speed(); speed != DefaultSpeed {
		args = append(args, "-af", "atempo="+formatFloat(TempoFactor(speed)))
	}
	return args
}

// TempoFactor is the atempo value matching a playback speed.
func TempoFactor(speed float64) float64 {
	return speed
}

func encodingArgs(enc Encoding, passthrough bool) []string {
	var args []string
	if !passthrough {
		if enc.Threads > 0 {
			args = append(args, "-threads", strconv.Itoa(enc.Threads))
		}
		args = append(args,
			"-c:v", enc.VideoCodec,
			"-pix_fmt", enc.PixelFormat,
			"-preset", enc.Preset,
			"-crf", strconv.Itoa(enc.CRF),
			"-maxrate", enc.MaxRate,
			"-bufsize", enc.BufSize,
		)
	}
	return append(args,
		"-movflags", enc.MovFlags,
		"-c:a", enc.AudioCodec,
		"-b:a", enc.AudioBitrate,
	)
}
