package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/swand-12/saloon-backend-admin/internal/models"
	"github.com/swand-12/saloon-backend-admin/internal/transport"
	"github.com/swand-12/saloon-backend-admin/internal/validation"
)

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(newTestService(repo, ServiceOptions{}), validation.New(), discardLogger())
	r := chi.NewRouter()
	r.Get("/api/requests", h.ListRequests)
	r.Post("/api/requests/{id}/accept", h.Accept)
	r.Post("/api/requests/{id}/reject", h.Reject)
	r.Get("/api/appointments", h.ListAccepted)
	r.Post("/api/appointments/{id}/done", h.Complete)
	r.Get("/api/recent-appointments", h.ListRecent)
	r.Post("/api/book", h.Book)
	return r
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) transport.ErrorResponse {
	t.Helper()
	var out transport.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return out
}

func TestHandlerListReturnsArray(t *testing.T) {
	repo := newMemRepo(appt("a", models.StatusPending, "2026-03-12", "10:00", baseTime))
	rr := doRequest(newTestRouter(repo), http.MethodGet, "/api/requests", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var items []models.Appointment
	if err := json.NewDecoder(rr.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 1 || items[0].ID != "a" || items[0].Status != models.StatusPending {
		t.Fatalf("unexpected items: %+v", items)
	}

	rr = doRequest(newTestRouter(repo), http.MethodGet, "/api/appointments", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestHandlerAcceptAndComplete(t *testing.T) {
	repo := newMemRepo(appt("a", models.StatusPending, "2026-03-12", "10:00", baseTime))
	router := newTestRouter(repo)

	rr := doRequest(router, http.MethodPost, "/api/requests/a/accept", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp mutationResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Appointment == nil || resp.Appointment.Status != models.StatusAccepted {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rr = doRequest(router, http.MethodPost, "/api/appointments/a/done", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got, _ := repo.get("a")
	if got.Status != models.StatusDone {
		t.Fatalf("status = %s, want done", got.Status)
	}
}

func TestHandlerNotFound(t *testing.T) {
	repo := newMemRepo(appt("done", models.StatusDone, "2026-03-12", "10:00", baseTime))
	router := newTestRouter(repo)

	for _, path := range []string{
		"/api/requests/nonexistent-id/accept",
		"/api/requests/nonexistent-id/reject",
		"/api/appointments/nonexistent-id/done",
		"/api/requests/done/accept",
		"/api/appointments/done/done",
	} {
		rr := doRequest(router, http.MethodPost, path, "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
		body := decodeError(t, rr)
		if body.Success || body.Message != "Appointment not found" {
			t.Fatalf("%s: unexpected body %+v", path, body)
		}
	}
}

func TestHandlerStorageFailure(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("server selection timeout")
	router := newTestRouter(repo)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/requests"},
		{http.MethodGet, "/api/recent-appointments"},
		{http.MethodPost, "/api/requests/x/accept"},
		{http.MethodPost, "/api/requests/x/reject"},
	} {
		rr := doRequest(router, tc.method, tc.path, "")
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", tc.path, rr.Code)
		}
		body := decodeError(t, rr)
		if body.Message != "Internal server error" {
			t.Fatalf("%s: unexpected message %q", tc.path, body.Message)
		}
		if strings.Contains(rr.Body.String(), "timeout") {
			t.Fatalf("%s: storage error leaked to client", tc.path)
		}
	}
}

func TestHandlerReject(t *testing.T) {
	repo := newMemRepo(appt("b", models.StatusPending, "2026-03-12", "10:00", baseTime))
	rr := doRequest(newTestRouter(repo), http.MethodPost, "/api/requests/b/reject", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"success":true}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	if _, ok := repo.get("b"); ok {
		t.Fatalf("expected record to be deleted")
	}
}

func TestHandlerBook(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(repo)

	rr := doRequest(router, http.MethodPost, "/api/book",
		`{"name":"Jane","email":"jane@example.com","phone":"0600000000","service":"Color","date":"2026-03-11","time":"10:00"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected one stored record, got %d", len(repo.items))
	}

	rr = doRequest(router, http.MethodPost, "/api/book", `{"name":"Jane","email":"not-an-email"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := decodeError(t, rr)
	if body.Details["email"] != "email" || body.Details["date"] != "required" {
		t.Fatalf("unexpected details: %+v", body.Details)
	}

	rr = doRequest(router, http.MethodPost, "/api/book",
		`{"name":"Jane","email":"jane@example.com","phone":"1","service":"Color","date":"2026-03-01","time":"10:00"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("past date: expected 400, got %d", rr.Code)
	}

	rr = doRequest(router, http.MethodPost, "/api/book", `{"name":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", rr.Code)
	}
}
