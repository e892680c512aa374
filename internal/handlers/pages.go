package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/swand-12/saloon-backend-admin/internal/middleware"
)

// Page serves a static HTML file from the configured public directory.
func (s *Server) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.Cfg.PublicDir, name)
		if _, err := os.Stat(path); err != nil {
			s.logWithRequest(r).Error("page: missing file", slog.String("file", path), slog.String("error", err.Error()))
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, path)
	}
}

func (s *Server) RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.logWithRequest(r).Warn("route not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
	http.NotFound(w, r)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
