package middleware

import (
	"net/http"

	"github.com/swand-12/saloon-backend-admin/internal/auth"
)

const LoginPath = "/login"

// SessionValidator is satisfied by *auth.Sessions.
type SessionValidator interface {
	Valid(token string) bool
}

// RequireSession lets a request through only when it carries a valid
// isLoggedIn cookie. Anything else is redirected to the login page,
// API routes included.
func RequireSession(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.SessionCookieName)
			if err == nil && sessions.Valid(cookie.Value) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
	}
}
