package appointments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/swand-12/saloon-backend-admin/internal/httpx"
	"github.com/swand-12/saloon-backend-admin/internal/middleware"
	"github.com/swand-12/saloon-backend-admin/internal/models"
	"github.com/swand-12/saloon-backend-admin/internal/schedule"
	"github.com/swand-12/saloon-backend-admin/internal/transport"
	"github.com/swand-12/saloon-backend-admin/internal/validation"
)

const (
	msgNotFound = "Appointment not found"
	msgInternal = "Internal server error"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

type mutationResponse struct {
	Success     bool                `json:"success"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, "requests list", h.service.ListRequests)
}

func (h *Handler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, "appointments list", h.service.ListAccepted)
}

func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, "recent list", h.service.ListRecent)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, op string, fetch func(context.Context) ([]models.Appointment, error)) {
	log := h.logWithRequest(r)

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := fetch(ctx)
	if err != nil {
		log.Error(op+": database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, msgInternal, nil)
		return
	}

	log.Info(op+": ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.writeTransition(w, r, "requests accept", h.service.Accept)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.writeTransition(w, r, "appointments done", h.service.Complete)
}

func (h *Handler) writeTransition(w http.ResponseWriter, r *http.Request, op string, apply func(context.Context, string) (models.Appointment, error)) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn(op + ": missing id")
		transport.WriteError(w, http.StatusNotFound, msgNotFound, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := apply(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn(op+": not found", slog.String("appointment_id", id))
			transport.WriteError(w, http.StatusNotFound, msgNotFound, nil)
			return
		}
		log.Error(op+": database error", slog.String("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, msgInternal, nil)
		return
	}

	log.Info(op+": ok", slog.String("appointment_id", id), slog.String("status", string(updated.Status)))
	transport.WriteJSON(w, http.StatusOK, mutationResponse{Success: true, Appointment: &updated})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("requests reject: missing id")
		transport.WriteError(w, http.StatusNotFound, msgNotFound, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Reject(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("requests reject: not found", slog.String("appointment_id", id))
			transport.WriteError(w, http.StatusNotFound, msgNotFound, nil)
			return
		}
		log.Error("requests reject: database error", slog.String("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, msgInternal, nil)
		return
	}

	log.Info("requests reject: ok", slog.String("appointment_id", id))
	transport.WriteJSON(w, http.StatusOK, mutationResponse{Success: true})
}

// Book is the unauthenticated submission path that creates pending requests.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("book: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("book: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDateInPast):
			log.Warn("book: date in the past", slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusBadRequest, "date in the past", nil)
		case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidTime):
			log.Warn("book: invalid date or time", slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		default:
			log.Error("book: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, msgInternal, nil)
		}
		return
	}

	log.Info("book: created", slog.String("appointment_id", item.ID), slog.String("date", item.Date), slog.String("time", item.Time))
	transport.WriteJSON(w, http.StatusCreated, mutationResponse{Success: true, Appointment: &item})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
