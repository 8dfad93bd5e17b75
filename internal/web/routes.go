package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/image-collage/internal/web/handlers"
	"github.com/kozaktomas/image-collage/internal/web/static"
)

func (s *Server) setupRoutes() {
	uploadHandler := handlers.NewUploadHandler(s.store, s.logger)
	collageHandler := handlers.NewCollageHandler(s.service, s.logger)
	filesHandler := handlers.NewFilesHandler(s.store)
	configHandler := handlers.NewConfigHandler(s.policy)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)

		r.Post("/upload", uploadHandler.Upload)
		r.Post("/collage", collageHandler.Create)

		r.Get("/download/{filename}", filesHandler.Download)
		r.Get("/preview/{filename}", filesHandler.Preview)
	})

	// Preview store, written by the publisher and served as plain files
	previews := http.FileServer(http.Dir(s.store.Dirs().Preview))
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", previews))

	s.router.Get("/*", s.serveUI)
}

// serveUI serves the embedded single-page UI
func (s *Server) serveUI(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err != nil {
		// Unknown paths fall back to the UI
		f, err = fs.Open("/index.html")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		path = "/index.html"
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	case strings.HasSuffix(path, ".png"):
		contentType = "image/png"
	case strings.HasSuffix(path, ".ico"):
		contentType = "image/x-icon"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
