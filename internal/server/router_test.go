package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/swand-12/saloon-backend-admin/internal/appointments"
	"github.com/swand-12/saloon-backend-admin/internal/auth"
	"github.com/swand-12/saloon-backend-admin/internal/config"
	"github.com/swand-12/saloon-backend-admin/internal/handlers"
	"github.com/swand-12/saloon-backend-admin/internal/metrics"
	"github.com/swand-12/saloon-backend-admin/internal/models"
	"github.com/swand-12/saloon-backend-admin/internal/validation"
	"go.mongodb.org/mongo-driver/mongo"
)

type stubRepo struct {
	mu    sync.Mutex
	items map[string]models.Appointment
}

func (r *stubRepo) Create(ctx context.Context, item models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *stubRepo) ListByStatus(ctx context.Context, status models.Status, order appointments.ListOrder) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Appointment, 0)
	for _, it := range r.items {
		if it.Status == status {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateStatus(ctx context.Context, id string, from, to models.Status) (models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.Status != from {
		return models.Appointment{}, mongo.ErrNoDocuments
	}
	it.Status = to
	r.items[id] = it
	return it, nil
}

func (r *stubRepo) Delete(ctx context.Context, id string, from models.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok || it.Status != from {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubRepo) {
	t.Helper()

	public := t.TempDir()
	for _, name := range []string{"login.html", "home.html", "see-requests.html"} {
		if err := os.WriteFile(filepath.Join(public, name), []byte("<html>"+name+"</html>"), 0o644); err != nil {
			t.Fatalf("write page: %v", err)
		}
	}

	cfg := &config.Config{
		Env:       "development",
		PublicDir: public,
		Admins:    []config.AdminCredential{{Username: "admin", Password: "s3cret"}},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	val := validation.New()

	repo := &stubRepo{items: map[string]models.Appointment{
		"req-1": {
			ID:        "req-1",
			Name:      "Jane",
			Email:     "jane@example.com",
			Service:   "Haircut",
			Date:      "2099-01-01",
			Time:      "10:00",
			Status:    models.StatusPending,
			CreatedAt: time.Now(),
		},
	}}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	service := appointments.NewService(repo, time.UTC, appointments.ServiceOptions{Metrics: collector, Log: log})

	router := NewRouter(Deps{
		Server: &handlers.Server{
			Cfg:         cfg,
			Val:         val,
			Log:         log,
			Credentials: auth.NewCredentials(cfg.Admins),
			Sessions:    auth.NewSessions([]byte("test-secret"), "test"),
		},
		Appointments: appointments.NewHandler(service, val, log),
		Metrics:      collector,
		Gatherer:     registry,
	})
	return router, repo
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := serve(h, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("login: missing session cookie")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router, _ := newTestRouter(t)
	cookie := login(t, router)

	if !cookie.HttpOnly {
		t.Fatalf("cookie must be HttpOnly")
	}
	if cookie.Secure {
		t.Fatalf("cookie must not be Secure outside production")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != 86400 {
		t.Fatalf("MaxAge = %d, want 86400", cookie.MaxAge)
	}
	if cookie.Value == "" || cookie.Value == "true" {
		t.Fatalf("cookie value must be a signed token, got %q", cookie.Value)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"ADMIN","password":"s3cret"}`,
		`{"username":"admin"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rr := serve(router, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", body, rr.Code)
		}
		if len(rr.Result().Cookies()) != 0 {
			t.Fatalf("%s: no cookie expected on failure", body)
		}
	}
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	router, repo := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/home"},
		{http.MethodGet, "/see-requests"},
		{http.MethodGet, "/api/requests"},
		{http.MethodPost, "/api/requests/req-1/accept"},
		{http.MethodPost, "/api/requests/req-1/reject"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "true"})
		rr := serve(router, req)
		if rr.Code != http.StatusSeeOther {
			t.Fatalf("%s %s: expected 303, got %d", tc.method, tc.path, rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s %s: location = %q", tc.method, tc.path, loc)
		}
	}

	if it := repo.items["req-1"]; it.Status != models.StatusPending {
		t.Fatalf("unauthenticated request changed state: %s", it.Status)
	}
}

func TestSessionGrantsAccess(t *testing.T) {
	router, repo := newTestRouter(t)
	cookie := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookie)
	rr := serve(router, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "home.html") {
		t.Fatalf("home: expected page, got %d %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/requests/req-1/accept", nil)
	req.AddCookie(cookie)
	rr = serve(router, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", rr.Code)
	}
	if repo.items["req-1"].Status != models.StatusAccepted {
		t.Fatalf("expected accepted status")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	req.AddCookie(cookie)
	rr = serve(router, req)
	var items []models.Appointment
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != "req-1" {
		t.Fatalf("unexpected accepted list: %+v", items)
	}

	// A missing page file is a 404, not a crash.
	req = httptest.NewRequest(http.MethodGet, "/see-appointments", nil)
	req.AddCookie(cookie)
	if rr := serve(router, req); rr.Code != http.StatusNotFound {
		t.Fatalf("missing page: expected 404, got %d", rr.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := serve(router, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.SessionCookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected cleared session cookie, got %+v", cookies)
	}
}

func TestPublicRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("root: expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "login.html") {
		t.Fatalf("login page: got %d %s", rr.Code, rr.Body.String())
	}

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/no-such-page", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown route: expected 404, got %d", rr.Code)
	}

	cookie := login(t, router)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/requests/req-1/accept"},
		{http.MethodPost, "/home"},
		{http.MethodDelete, "/api/requests"},
		{http.MethodGet, "/logout"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.AddCookie(cookie)
		rr := serve(router, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404, got %d", tc.method, tc.path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Fatalf("%s %s: content type = %q", tc.method, tc.path, ct)
		}
		if !strings.Contains(rr.Body.String(), "404 page not found") {
			t.Fatalf("%s %s: body = %q", tc.method, tc.path, rr.Body.String())
		}
	}

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rr.Code)
	}

	rr = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "salon_http_requests_total") {
		t.Fatalf("metrics: expected http counters, got %d", rr.Code)
	}
}
