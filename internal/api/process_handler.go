package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dinosave/remix-studio/internal/jobs"
)

func uploadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemoryBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart form", CodeBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file is required", CodeBadRequest)
			return
		}
		defer file.Close()

		id, filename, err := cfg.Workspace.SaveUpload(header.Filename, file)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, UploadVideoResponse{
			Success:  true,
			VideoID:  id,
			Filename: filename,
			Message:  "Video uploaded",
		})
	}
}

func remixHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProcessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
			return
		}
		if err := req.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}

		res, err := cfg.Remixer.Remix(r.Context(), req.EditRequest())
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProcessResponse{
			Success:        true,
			OutputFilename: res.OutputFilename,
			OutputURL:      res.OutputURL,
			JobID:          res.JobID,
			SkippedAssets:  res.Skipped,
			Message:        "Video processed",
		})
	}
}

func cleanupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := cfg.Workspace.Cleanup(chi.URLParam(r, "videoID"))
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, CleanupResponse{Deleted: deleted})
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Jobs == nil {
			WriteJSON(w, http.StatusOK, JobsResponse{Jobs: []JobResponse{}})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		list, err := cfg.Jobs.List(r.Context(), limit)
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		resp := JobsResponse{Jobs: make([]JobResponse, len(list))}
		for i, j := range list {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Jobs == nil {
			WriteError(w, http.StatusNotFound, jobs.ErrNotFound.Error(), CodeNotFound)
			return
		}
		job, err := cfg.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
			return
		}
		if err != nil {
			writeServiceError(w, cfg.Logger, err)
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}
