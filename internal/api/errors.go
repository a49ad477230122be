package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dinosave/remix-studio/internal/assets"
	"github.com/dinosave/remix-studio/internal/download"
	"github.com/dinosave/remix-studio/internal/ffmpeg"
	"github.com/dinosave/remix-studio/internal/jobs"
	"github.com/dinosave/remix-studio/internal/matting"
	"github.com/dinosave/remix-studio/internal/remix"
	"github.com/dinosave/remix-studio/internal/workspace"
)

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeExtraction    = "EXTRACTION_FAILED"
	CodeProcessing    = "PROCESSING_FAILED"
	CodeMatting       = "MATTING_FAILED"
	CodeNotConfigured = "NOT_CONFIGURED"
	CodeInternal      = "INTERNAL_ERROR"
)

// Multipart parts beyond this are spooled to disk by net/http.
const maxUploadMemoryBytes = 32 << 20

// writeServiceError maps domain errors onto HTTP statuses. External tool
// failures carry the tool's own diagnostic text.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		procErr    *ffmpeg.ProcessError
		extractErr *download.ExtractError
		apiErr     *matting.APIError
	)

	switch {
	case errors.Is(err, remix.ErrSourceNotFound):
		WriteError(w, http.StatusNotFound, "video not found", CodeNotFound)
	case errors.Is(err, matting.ErrOverlayNotFound), errors.Is(err, assets.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, jobs.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, assets.ErrMissingFilename),
		errors.Is(err, assets.ErrExtensionRejected),
		errors.Is(err, workspace.ErrInvalidID):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
	case errors.Is(err, download.ErrAuthRequired):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeAuthRequired)
	case errors.Is(err, matting.ErrNotConfigured):
		WriteError(w, http.StatusServiceUnavailable, err.Error(), CodeNotConfigured)
	case errors.As(err, &extractErr):
		WriteError(w, http.StatusInternalServerError, extractErr.Error(), CodeExtraction)
	case errors.As(err, &apiErr):
		WriteError(w, http.StatusInternalServerError, apiErr.Error(), CodeMatting)
	case errors.As(err, &procErr):
		WriteError(w, http.StatusInternalServerError, procErr.Error(), CodeProcessing)
	default:
		logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}
