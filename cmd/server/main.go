package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"absensi/internal/config"
	"absensi/internal/handler"
	"absensi/internal/i18n"
	"absensi/internal/identity"
	"absensi/internal/model"
	"absensi/internal/service"
	"absensi/internal/session"
	"absensi/internal/store"
	"absensi/internal/store/firestoredb"
)

type profileStore interface {
	session.ProfileReader
	service.ProfileWriter
}

// backend is the document store chosen by STORE_BACKEND.
type backend struct {
	attendance  service.AttendanceStore
	profiles    profileStore
	credentials identity.CredentialStore
	ping        func(context.Context) error
	close       func(context.Context) error
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreBackend == config.BackendFirestore {
		db, err := firestoredb.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		return &backend{
			attendance:  firestoredb.NewAttendanceStore(db),
			profiles:    firestoredb.NewProfileStore(db),
			credentials: firestoredb.NewCredentialStore(db),
			ping:        db.Ping,
			close:       db.Close,
		}, nil
	}

	db, err := store.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	attendance, err := store.NewAttendanceStore(ctx, db)
	if err != nil {
		return nil, err
	}
	credentials, err := store.NewCredentialStore(ctx, db)
	if err != nil {
		return nil, err
	}
	return &backend{
		attendance:  attendance,
		profiles:    store.NewProfileStore(db),
		credentials: credentials,
		ping:        db.Ping,
		close:       db.Close,
	}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := i18n.Init(cfg.DefaultLocale); err != nil {
		logger.Error("init messages", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer db.close(context.Background())

	// Revoked sessions live in Redis when configured so they survive restarts.
	var revocations identity.Revocations = identity.NewMemoryRevocations()
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("parse REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("connect to redis", "error", err)
			os.Exit(1)
		}
		revocations = identity.NewRedisRevocations(rdb)
	}

	// Identity and sessions
	provider := identity.NewProvider(db.credentials, identity.Options{
		Secret:      cfg.JWTSecret,
		TTL:         cfg.JWTTTL,
		Revocations: revocations,
	})
	resolver := session.NewResolver(db.profiles, session.ResolverOptions{
		Logger:   logger,
		CacheTTL: cfg.ProfileCacheTTL,
	})
	stop := resolver.Start(provider)
	defer stop()

	// Services
	authSvc := service.NewAuthService(provider, db.profiles, resolver, validator.New(), logger)
	attendanceSvc := service.NewAttendanceService(db.attendance, service.AttendanceOptions{
		Location:  cfg.Location,
		OnePerDay: cfg.OnePerDay,
		Logger:    logger,
	})
	adminSvc := service.NewAdminService(db.attendance, cfg.Location, nil)

	web, err := handler.NewWebHandler(authSvc, attendanceSvc, adminSvc, handler.WebOptions{
		Location:     cfg.Location,
		CookieSecure: cfg.CookieSecure,
		SessionTTL:   cfg.JWTTTL,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("build web handler", "error", err)
		os.Exit(1)
	}

	// Routes
	mux := http.NewServeMux()
	handler.NewAuthHandler(authSvc).RegisterRoutes(mux)
	handler.NewAttendanceHandler(attendanceSvc).RegisterRoutes(mux)
	handler.NewAdminHandler(adminSvc, cfg.Location).RegisterRoutes(mux)
	web.RegisterRoutes(mux)

	handler.NewHealthHandler(db.ping, logger).RegisterRoutes(mux)

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Wrap(mux, authSvc, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("absensi started",
			"port", cfg.Port, "env", cfg.Env, "store", cfg.StoreBackend,
			"timezone", cfg.Location.String(), "late_after", lateThreshold())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func lateThreshold() string {
	return time.Date(0, 1, 1, model.LateThresholdHour, model.LateThresholdMinute, 0, 0, time.UTC).Format("15:04")
}
