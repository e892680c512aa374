package handlers

import (
	"log/slog"
	"net/http"

	"github.com/swand-12/saloon-backend-admin/internal/auth"
	"github.com/swand-12/saloon-backend-admin/internal/config"
	"github.com/swand-12/saloon-backend-admin/internal/middleware"
	"github.com/swand-12/saloon-backend-admin/internal/validation"
)

// Server holds the login, logout and page handlers.
type Server struct {
	Cfg         *config.Config
	Val         *validation.Validator
	Log         *slog.Logger
	Credentials *auth.Credentials
	Sessions    *auth.Sessions
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
