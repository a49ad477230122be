package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dinosave/remix-studio/internal/matting"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSMiddleware())

	r.Get("/", rootHandler)
	r.Get("/health", healthHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		r.Route("/download", func(r chi.Router) {
			r.Post("/", downloadHandler(cfg))
			r.Get("/info", videoInfoHandler(cfg))
			r.Get("/preview/{videoID}", previewHandler(cfg))
		})

		r.Route("/process", func(r chi.Router) {
			r.Post("/upload-video", uploadVideoHandler(cfg))
			r.Post("/remix", remixHandler(cfg))
			r.Delete("/cleanup/{videoID}", cleanupHandler(cfg))
			r.Get("/jobs", listJobsHandler(cfg))
			r.Get("/jobs/{id}", getJobHandler(cfg))
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/overlays", listOverlaysHandler(cfg))
			r.Post("/overlays/upload", uploadOverlayHandler(cfg))
			r.Delete("/overlays/{id}", deleteOverlayHandler(cfg))
			r.Post("/overlays/{id}/remove-background", removeBackgroundHandler(cfg))
			r.Get("/audio", listAudioHandler(cfg))
			r.Post("/audio/upload", uploadAudioHandler(cfg))
			r.Delete("/audio/{id}", deleteAudioHandler(cfg))
		})
	})

	r.Handle("/output/*", staticDir("/output/", cfg.Workspace.OutputDir()))
	r.Handle("/assets/*", staticDir("/assets/", cfg.Workspace.AssetsDir()))

	return r
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, RootResponse{Message: "Video Remix Studio API", Status: "running"})
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capability := matting.None
		if cfg.Matting != nil {
			capability = cfg.Matting.Capability()
		}
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:            "healthy",
			Version:           cfg.Version,
			UptimeS:           int64(time.Since(cfg.StartTime).Seconds()),
			BackgroundRemoval: capability.String(),
		})
	}
}

// staticDir serves files under dir without directory listings or
// dot-prefixed names.
func staticDir(prefix, dir string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") || strings.Contains(r.URL.Path, "/.") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
