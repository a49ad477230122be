package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/matting"
)

func listOverlaysHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cfg.Assets.List(assets.KindOverlay)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, OverlaysResponse{Overlays: list})
	}
}

func listAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cfg.Assets.List(assets.KindAudio)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, AudioResponse{Audio: list})
	}
}

func uploadOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return uploadAssetHandler(cfg, assets.KindOverlay, "Overlay uploaded")
}

func uploadAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return uploadAssetHandler(cfg, assets.KindAudio, "Audio uploaded")
}

func uploadAssetHandler(cfg ServerConfig, kind assets.Kind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart form", CodeBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, assets.ErrMissingFilename.Error(), CodeBadRequest)
			return
		}
		defer file.Close()

		rec, err := cfg.Assets.Save(kind, header.Filename, file)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, AssetUploadResponse{
			Success:  true,
			ID:       rec.ID,
			Filename: rec.Filename,
			URL:      rec.URL,
			Message:  message,
		})
	}
}

func deleteOverlayHandler(cfg ServerConfig) http.HandlerFunc {
	return deleteAssetHandler(cfg, assets.KindOverlay, "Overlay deleted")
}

func deleteAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return deleteAssetHandler(cfg, assets.KindAudio, "Audio deleted")
}

func deleteAssetHandler(cfg ServerConfig, kind assets.Kind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Assets.Delete(kind, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: message})
	}
}

func removeBackgroundHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Matting == nil {
			writeServiceError(w, cfg.Logger, matting.ErrNotConfigured)
			return
		}
		rec, err := cfg.Matting.RemoveBackground(r.Context(), chi.URLParam(r, "id"))
		switch {
		case err == nil:
		case errors.Is(err, matting.ErrNotConfigured), errors.Is(err, matting.ErrOverlayNotFound):
			writeServiceError(w, cfg.Logger, err)
			return
		default:
			cfg.Logger.Error("background removal failed", "overlay", chi.URLParam(r, "id"), "error", err)
			WriteError(w, http.StatusInternalServerError, err.Error(), CodeMatting)
			return
		}
		WriteJSON(w, http.StatusOK, AssetUploadResponse{
			Success:  true,
			ID:       rec.ID,
			Filename: rec.Filename,
			URL:      rec.URL,
			Message:  "Background removed",
		})
	}
}
