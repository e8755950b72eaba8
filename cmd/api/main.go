package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/grayola/task-manager/config"
	httpapi "github.com/grayola/task-manager/internal/api/http"
	"github.com/grayola/task-manager/internal/auth"
	authhttp "github.com/grayola/task-manager/internal/auth/http"
	authrepo "github.com/grayola/task-manager/internal/auth/repository"
	authsvc "github.com/grayola/task-manager/internal/auth/service"
	"github.com/grayola/task-manager/internal/bootstrap"
	dashhttp "github.com/grayola/task-manager/internal/dashboard/http"
	"github.com/grayola/task-manager/internal/logger"
	projecthttp "github.com/grayola/task-manager/internal/projects/http"
	projectrepo "github.com/grayola/task-manager/internal/projects/repository"
	projectsvc "github.com/grayola/task-manager/internal/projects/service"
	"github.com/grayola/task-manager/internal/storage/objectstore"
	"github.com/grayola/task-manager/internal/storage/postgres"
)

const serviceName = "grayola-task-manager"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)
	log.Info("starting service",
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database), MaxConns: 4})
	if err != nil {
		log.Fatal("failed to open pgx pool", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal("failed to apply schema", zap.Error(err))
		}
		log.Info("schema applied")
	}

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	identity, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatal("failed to initialize firebase", zap.Error(err))
	}

	objects, err := objectstore.NewS3Store(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		log.Fatal("failed to prepare bucket", zap.Error(err), zap.String("bucket", objects.Bucket()))
	}

	profileRepo := authrepo.NewProfileRepository(db)
	attemptRepo := authrepo.NewLoginAttemptRepository(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptWindow)
	projectRepo := projectrepo.NewProjectRepository(db)

	accounts := authsvc.NewAuthService(identity, profileRepo, attemptRepo, cfg.Auth.SessionCookieTTL, log.Named("auth"))
	workflow := projectsvc.NewProjectService(projectRepo, objects, profileRepo, cfg.Storage.SignedURLTTL, log.Named("projects"))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		SessionCookie:  cfg.Auth.SessionCookieName,
		HealthChecks: bootstrap.HealthChecks(db, pool,
			httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			objects,
		),
		Sessions: accounts,
		AuthHandler: authhttp.New(accounts, authhttp.CookieConfig{
			Name:   cfg.Auth.SessionCookieName,
			TTL:    cfg.Auth.SessionCookieTTL,
			Secure: cfg.App.Environment == "production",
		}),
		ProjectsHandler:  projecthttp.New(workflow),
		DashboardHandler: dashhttp.New(accounts, workflow),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
