package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
)

// Dimensions queries the first video stream's width and height.
func (r *Runner) Dimensions(ctx context.Context, path string) (width, height int, err error) {
	out, err := r.exec(ctx, r.ffprobe, []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	}, true)
	if err != nil {
		return 0, 0, err
	}
	return parseDimensions(out)
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
}

func parseDimensions(data []byte) (int, int, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video stream")
	}
	s := probe.Streams[0]
	if s.Width <= 0 || s.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", s.Width, s.Height)
	}
	return s.Width, s.Height, nil
}

// ExtractFrame decodes the first frame of a video into a still image.
func (r *Runner) ExtractFrame(ctx context.Context, videoPath, imagePath string) error {
	return r.Run(ctx, []string{
		"-y",
		"-i", videoPath,
		"-frames:v", "1",
		imagePath,
	})
}
