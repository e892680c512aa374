package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/swand-12/saloon-backend-admin/internal/appointments"
	"github.com/swand-12/saloon-backend-admin/internal/handlers"
	"github.com/swand-12/saloon-backend-admin/internal/metrics"
	"github.com/swand-12/saloon-backend-admin/internal/middleware"
)

type Deps struct {
	Server       *handlers.Server
	Appointments *appointments.Handler
	Metrics      *metrics.Collector
	Gatherer     prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	s := d.Server

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(s.Cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.NotFound)

	r.Get("/", s.RedirectToLogin)
	r.Get("/healthz", s.Health)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Get("/login", s.Page("login.html"))
	r.Post("/login", s.AdminLogin)
	r.Post("/logout", s.AdminLogout)
	r.Post("/api/book", d.Appointments.Book)

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireSession(s.Sessions))

		protected.Get("/home", s.Page("home.html"))
		protected.Get("/see-requests", s.Page("see-requests.html"))
		protected.Get("/see-appointments", s.Page("see-appointments.html"))
		protected.Get("/see-recent-appointments", s.Page("see-recent-appointments.html"))

		protected.Get("/api/requests", d.Appointments.ListRequests)
		protected.Post("/api/requests/{id}/accept", d.Appointments.Accept)
		protected.Post("/api/requests/{id}/reject", d.Appointments.Reject)
		protected.Get("/api/appointments", d.Appointments.ListAccepted)
		protected.Post("/api/appointments/{id}/done", d.Appointments.Complete)
		protected.Get("/api/recent-appointments", d.Appointments.ListRecent)
	})

	return r
}
