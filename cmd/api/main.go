package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/swand-12/saloon-backend-admin/internal/appointments"
	"github.com/swand-12/saloon-backend-admin/internal/auth"
	"github.com/swand-12/saloon-backend-admin/internal/cache"
	"github.com/swand-12/saloon-backend-admin/internal/config"
	"github.com/swand-12/saloon-backend-admin/internal/db"
	"github.com/swand-12/saloon-backend-admin/internal/handlers"
	applog "github.com/swand-12/saloon-backend-admin/internal/logger"
	"github.com/swand-12/saloon-backend-admin/internal/metrics"
	"github.com/swand-12/saloon-backend-admin/internal/notifications"
	"github.com/swand-12/saloon-backend-admin/internal/server"
	"github.com/swand-12/saloon-backend-admin/internal/telemetry"
	"github.com/swand-12/saloon-backend-admin/internal/validation"
)

const serviceName = "saloon-backend-admin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := applog.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Error("tracing setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handle := db.NewHandle(cfg.MongoURI, cfg.MongoDB)
	if _, err := handle.Database(ctx); err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))

	if err := db.EnsureIndexes(ctx, handle); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	var redisCache *cache.RedisCache
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected", slog.Int("ttl_seconds", cfg.CacheTTLSeconds))
		cacheStore = redisCache
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	opts := appointments.ServiceOptions{
		Cache:    cacheStore,
		CacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
		Metrics:  collector,
		Log:      logger,
	}
	if mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox); mailer != nil {
		opts.Notifier = mailer
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	} else {
		logger.Info("brevo mailer disabled")
	}

	credentials := auth.NewCredentials(cfg.Admins)
	logger.Info("admin credentials loaded", slog.Int("count", credentials.Len()))

	val := validation.New()
	srv := &handlers.Server{
		Cfg:         cfg,
		Val:         val,
		Log:         logger,
		Credentials: credentials,
		Sessions:    auth.NewSessions(cfg.SessionSecret, serviceName),
	}

	repo := appointments.NewRepository(handle)
	service := appointments.NewService(repo, cfg.Timezone, opts)

	router := server.NewRouter(server.Deps{
		Server:       srv,
		Appointments: appointments.NewHandler(service, val, logger),
		Metrics:      collector,
		Gatherer:     registry,
	})

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           telemetry.Wrap(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr()), slog.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Warn("redis close error", slog.String("error", err.Error()))
		}
	}
	if err := handle.Close(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
