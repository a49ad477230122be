package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/render"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	UptimeS           int64  `json:"uptime_s"`
	BackgroundRemoval string `json:"background_removal"`
}

type DownloadRequest struct {
	URL             string `json:"url"`
	RemoveWatermark bool   `json:"remove_watermark"`
}

func (r *DownloadRequest) UnmarshalJSON(b []byte) error {
	type raw DownloadRequest
	v := raw{RemoveWatermark: true}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = DownloadRequest(v)
	return nil
}

type DownloadResponse struct {
	Success   bool     `json:"success"`
	VideoID   string   `json:"video_id"`
	Filename  string   `json:"filename"`
	Duration  *float64 `json:"duration"`
	Thumbnail *string  `json:"thumbnail"`
	Title     *string  `json:"title"`
	Message   string   `json:"message"`
}

type VideoInfoResponse struct {
	Title     string   `json:"title"`
	Duration  *float64 `json:"duration"`
	Thumbnail *string  `json:"thumbnail"`
	Uploader  *string  `json:"uploader"`
	Platform  string   `json:"platform"`
}

type UploadVideoResponse struct {
	Success  bool   `json:"success"`
	VideoID  string `json:"video_id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// OverlayItem is one entry of the multi-overlay list.
type OverlayItem struct {
	ID                string  `json:"id"`
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Scale             float64 `json:"scale"`
	RemoveGreenScreen bool    `json:"remove_green_screen"`
	RemoveBlackScreen bool    `json:"remove_black_screen"`
}

func (o *OverlayItem) UnmarshalJSON(b []byte) error {
	type raw OverlayItem
	v := raw{
		X:                 render.DefaultOverlayX,
		Y:                 render.DefaultOverlayY,
		Scale:             render.DefaultOverlayScale,
		RemoveGreenScreen: true,
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = OverlayItem(v)
	return nil
}

// ProcessRequest is the remix request body. Field names and defaults match
// what existing web clients send.
type ProcessRequest struct {
	VideoID  string        `json:"video_id"`
	Overlays []OverlayItem `json:"overlays"`

	OverlayID         *string  `json:"overlay_id"`
	OverlayPosition   string   `json:"overlay_position"`
	OverlayX          *float64 `json:"overlay_x"`
	OverlayY          *float64 `json:"overlay_y"`
	OverlayScale      float64  `json:"overlay_scale"`
	RemoveGreenScreen bool     `json:"remove_green_screen"`
	RemoveBlackScreen bool     `json:"remove_black_screen"`

	AudioID             *string `json:"audio_id"`
	RemoveOriginalAudio bool    `json:"remove_original_audio"`

	TextOverlay  *string  `json:"text_overlay"`
	TextPosition string   `json:"text_position"`
	TextX        *float64 `json:"text_x"`
	TextY        *float64 `json:"text_y"`
	TextFontSize int      `json:"text_font_size"`

	TrimStart     float64  `json:"trim_start"`
	TrimEnd       *float64 `json:"trim_end"`
	Brightness    int      `json:"brightness"`
	Contrast      int      `json:"contrast"`
	Saturation    int      `json:"saturation"`
	PlaybackSpeed float64  `json:"playback_speed"`
}

func (p *ProcessRequest) UnmarshalJSON(b []byte) error {
	type raw ProcessRequest
	v := raw{
		OverlayPosition:   render.DefaultOverlayAnchor,
		OverlayScale:      render.DefaultOverlayScale,
		RemoveGreenScreen: true,
		TextPosition:      render.DefaultTextAnchor,
		TextFontSize:      render.DefaultFontSize,
		PlaybackSpeed:     render.DefaultSpeed,
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = ProcessRequest(v)
	return nil
}

func (p *ProcessRequest) Validate() error {
	if p.VideoID == "" {
		return errors.New("video_id is required")
	}
	for _, o := range p.Overlays {
		if o.ID == "" {
			return errors.New("overlay id is required")
		}
		if !render.ValidOverlayScale(o.Scale) {
			return errScaleRange("overlay scale")
		}
	}
	if p.OverlayID != nil && *p.OverlayID != "" && !render.ValidOverlayScale(p.OverlayScale) {
		return errScaleRange("overlay_scale")
	}
	if p.PlaybackSpeed <= 0 {
		return errors.New("playback_speed must be positive")
	}
	if p.TrimStart < 0 {
		return errors.New("trim_start must not be negative")
	}
	if p.TextOverlay != nil && *p.TextOverlay != "" && p.TextFontSize <= 0 {
		return errors.New("text_font_size must be positive")
	}
	return nil
}

func errScaleRange(field string) error {
	return fmt.Errorf("%s must be between %g and %g", field, render.MinOverlayScale, render.MaxOverlayScale)
}

// EditRequest converts the wire form into the compiler's request.
func (p *ProcessRequest) EditRequest() render.EditRequest {
	req := render.EditRequest{
		SourceVideoRef:      p.VideoID,
		RemoveOriginalAudio: p.RemoveOriginalAudio,
		TrimStart:           p.TrimStart,
		TrimEnd:             p.TrimEnd,
		Brightness:          p.Brightness,
		Contrast:            p.Contrast,
		Saturation:          p.Saturation,
		PlaybackSpeed:       p.PlaybackSpeed,
	}

	for _, o := range p.Overlays {
		x, y := o.X, o.Y
		req.Overlays = append(req.Overlays, render.OverlaySpec{
			AssetRef:          o.ID,
			X:                 &x,
			Y:                 &y,
			Scale:             o.Scale,
			RemoveGreenScreen: o.RemoveGreenScreen,
			RemoveBlackScreen: o.RemoveBlackScreen,
		})
	}

	if p.OverlayID != nil && *p.OverlayID != "" {
		req.Legacy = &render.LegacyOverlay{
			AssetRef:          *p.OverlayID,
			Position:          p.OverlayPosition,
			X:                 p.OverlayX,
			Y:                 p.OverlayY,
			Scale:             p.OverlayScale,
			RemoveGreenScreen: p.RemoveGreenScreen,
			RemoveBlackScreen: p.RemoveBlackScreen,
		}
	}

	if p.AudioID != nil {
		req.AudioRef = *p.AudioID
	}

	if p.TextOverlay != nil && *p.TextOverlay != "" {
		req.Text = &render.TextSpec{
			Content:  *p.TextOverlay,
			Position: p.TextPosition,
			X:        p.TextX,
			Y:        p.TextY,
			FontSize: p.TextFontSize,
		}
	}
	return req
}

type ProcessResponse struct {
	Success        bool     `json:"success"`
	OutputFilename string   `json:"output_filename"`
	OutputURL      string   `json:"output_url"`
	JobID          string   `json:"job_id,omitempty"`
	SkippedAssets  []string `json:"skipped_overlays,omitempty"`
	Message        string   `json:"message"`
}

type CleanupResponse struct {
	Deleted []string `json:"deleted"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	SourceID  string `json:"source_id,omitempty"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func JobToResponse(j *jobs.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		SourceID:  j.SourceID,
		Output:    j.Output,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type OverlaysResponse struct {
	Overlays []assets.Record `json:"overlays"`
}

type AudioResponse struct {
	Audio []assets.Record `json:"audio"`
}

// AssetUploadResponse is returned by the upload and background-removal
// endpoints.
type AssetUploadResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Message  string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
