package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dinosave/remix-studio/internal/download"
	"github.com/dinosave/remix-studio/internal/workspace"
)

func downloadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DownloadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		if req.URL == "" {
			WriteError(w, http.StatusBadRequest, "url is required", CodeBadRequest)
			return
		}

		res, err := cfg.Downloader.Download(r.Context(), req.URL, req.RemoveWatermark)
		if err != nil {
			writeDownloadError(w, cfg, err)
			return
		}

		resp := DownloadResponse{
			Success:  true,
			VideoID:  res.VideoID,
			Filename: res.Filename,
			Duration: res.Duration,
			Title:    &res.Title,
			Message:  "Video downloaded",
		}
		if res.Thumbnail != "" {
			resp.Thumbnail = &res.Thumbnail
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func videoInfoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		if url == "" {
			WriteError(w, http.StatusBadRequest, "url is required", CodeBadRequest)
			return
		}
		info, err := cfg.Downloader.Info(r.Context(), url)
		if err != nil {
			writeDownloadError(w, cfg, err)
			return
		}
		WriteJSON(w, http.StatusOK, VideoInfoResponse(*info))
	}
}

func writeDownloadError(w http.ResponseWriter, cfg ServerConfig, err error) {
	var extractErr *download.ExtractError
	if errors.Is(err, download.ErrAuthRequired) || errors.As(err, &extractErr) {
		writeServiceError(w, cfg.Logger, err)
		return
	}
	cfg.Logger.Error("download failed", "error", err)
	WriteError(w, http.StatusInternalServerError, err.Error(), CodeExtraction)
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "videoID")
		if err := workspace.ValidateID(id); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}
		path, ok := cfg.Workspace.FindSource(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "video not found", CodeNotFound)
			return
		}
		if err := cfg.Playback.ServeFile(w, r, path, "video/mp4"); err != nil {
			cfg.Logger.Error("preview failed", "video_id", id, "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to serve preview", CodeInternal)
		}
	}
}
