package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/swand-12/saloon-backend-admin/internal/auth"
	"github.com/swand-12/saloon-backend-admin/internal/httpx"
	"github.com/swand-12/saloon-backend-admin/internal/transport"
)

const msgInvalidCredentials = "Invalid username or password"

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminAuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminLoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		// Missing fields are a failed login, never a hint about which one.
		log.Warn("admin login: missing credentials")
		transport.WriteError(w, http.StatusUnauthorized, msgInvalidCredentials, nil)
		return
	}

	if _, ok := s.Credentials.Authenticate(req.Username, req.Password); !ok {
		log.Warn("admin login: invalid credentials", slog.String("username", req.Username))
		transport.WriteError(w, http.StatusUnauthorized, msgInvalidCredentials, nil)
		return
	}

	token, err := s.Sessions.Issue()
	if err != nil {
		log.Error("admin login: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	setSessionCookie(w, token, s.Sessions.TTL, s.Cfg.CookieSecure())
	log.Info("admin login: ok", slog.String("username", req.Username))
	transport.WriteJSON(w, http.StatusOK, AdminAuthResponse{Success: true})
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	clearSessionCookie(w, s.Cfg.CookieSecure())
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, AdminAuthResponse{Success: true})
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
