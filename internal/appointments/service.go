package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/swand-12/saloon-backend-admin/internal/cache"
	"github.com/swand-12/saloon-backend-admin/internal/metrics"
	"github.com/swand-12/saloon-backend-admin/internal/models"
	"github.com/swand-12/saloon-backend-admin/internal/schedule"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionComplete = "complete"
	ActionCreate   = "create"
)

type Notifier interface {
	SendAppointmentAccepted(ctx context.Context, appointment models.Appointment) (string, error)
}

type ServiceOptions struct {
	Cache    cache.Cache
	CacheTTL time.Duration
	Notifier Notifier
	Metrics  metrics.Recorder
	Log      *slog.Logger
}

// Service is the lifecycle controller. Status moves pending -> accepted ->
// done; a pending request can instead be rejected, which deletes it.
type Service struct {
	repo     Repository
	location *time.Location
	cache    cache.Cache
	cacheTTL time.Duration
	notifier Notifier
	metrics  metrics.Recorder
	log      *slog.Logger
	now      func() time.Time

	// generation is bumped by every invalidation.
	generation atomic.Uint64
}

func NewService(repo Repository, location *time.Location, opts ServiceOptions) *Service {
	s := &Service{
		repo:     repo,
		location: location,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		log:      opts.Log,
		now:      time.Now,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.cache == nil {
		s.cache = cache.NewNoop()
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

func (s *Service) Accept(ctx context.Context, id string) (models.Appointment, error) {
	updated, err := s.transition(ctx, ActionAccept, id, models.StatusPending)
	if err != nil {
		return models.Appointment{}, err
	}
	if s.notifier != nil {
		go s.notifyAccepted(updated)
	}
	return updated, nil
}

func (s *Service) Complete(ctx context.Context, id string) (models.Appointment, error) {
	return s.transition(ctx, ActionComplete, id, models.StatusAccepted)
}

// Reject deletes a pending request. Accepted and done appointments are kept
// and reported as not found.
func (s *Service) Reject(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	deleted, err := s.repo.Delete(ctx, id, models.StatusPending)
	if err != nil {
		return fmt.Errorf("reject %s: %w", id, err)
	}
	if !deleted {
		s.metrics.RecordTransitionMiss(ActionReject)
		return ErrNotFound
	}
	s.metrics.RecordTransition(ActionReject)
	s.invalidate(ctx)
	return nil
}

// transition moves a record in from to the next status in the lifecycle.
func (s *Service) transition(ctx context.Context, action, id string, from models.Status) (models.Appointment, error) {
	to, ok := models.Next(from)
	if !ok {
		return models.Appointment{}, fmt.Errorf("%s: no transition from %s", action, from)
	}
	id = strings.TrimSpace(id)
	updated, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.metrics.RecordTransitionMiss(action)
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, fmt.Errorf("%s %s: %w", action, id, err)
	}
	s.metrics.RecordTransition(action)
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) ListRequests(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, models.StatusPending, OrderNewestFirst)
}

func (s *Service) ListAccepted(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, models.StatusAccepted, OrderSchedule)
}

func (s *Service) ListRecent(ctx context.Context) ([]models.Appointment, error) {
	return s.list(ctx, models.StatusDone, OrderRecent)
}

func (s *Service) list(ctx context.Context, status models.Status, order ListOrder) ([]models.Appointment, error) {
	key := cacheKey(status)
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("appointments cache: get failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		var items []models.Appointment
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	gen := s.generation.Load()
	items, err := s.repo.ListByStatus(ctx, status, order)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", status, err)
	}

	if s.cacheTTL > 0 {
		s.store(ctx, key, gen, items)
	}
	return items, nil
}

// store caches items read at generation gen. An invalidation during the read
// skips the write, and one racing the write deletes the key again.
func (s *Service) store(ctx context.Context, key string, gen uint64, items []models.Appointment) {
	if s.generation.Load() != gen {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("appointments cache: set failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if s.generation.Load() != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.log.Warn("appointments cache: invalidate failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// Create stores a new pending request from the public booking form.
func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Appointment, error) {
	now := s.now().In(s.location)
	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)

	past, err := schedule.IsDatePast(date, s.location, now)
	if err != nil {
		return models.Appointment{}, err
	}
	if !past {
		past, err = schedule.IsSlotPast(date, clock, s.location, now)
		if err != nil {
			return models.Appointment{}, err
		}
	}
	if past {
		return models.Appointment{}, ErrDateInPast
	}

	item := models.Appointment{
		ID:        primitive.NewObjectID().Hex(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Service:   strings.TrimSpace(req.Service),
		Date:      date,
		Time:      clock,
		Status:    models.StatusPending,
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return models.Appointment{}, fmt.Errorf("create: %w", err)
	}
	s.metrics.RecordTransition(ActionCreate)
	s.invalidate(ctx)
	return item, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.generation.Add(1)
	keys := []string{
		cacheKey(models.StatusPending),
		cacheKey(models.StatusAccepted),
		cacheKey(models.StatusDone),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("appointments cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func (s *Service) notifyAccepted(appointment models.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	messageID, err := s.notifier.SendAppointmentAccepted(ctx, appointment)
	if err != nil {
		s.log.Warn("appointments email: send failed",
			slog.String("appointment_id", appointment.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	s.log.Info("appointments email: sent",
		slog.String("appointment_id", appointment.ID),
		slog.String("message_id", messageID),
	)
}

func cacheKey(status models.Status) string {
	return "appointments:" + string(status)
}
