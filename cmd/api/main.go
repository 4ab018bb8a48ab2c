package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/courier-service/internal/api/http"
	"github.com/spec-kit/courier-service/internal/api/http/handlers"
	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/config"
	"github.com/spec-kit/courier-service/internal/events"
	"github.com/spec-kit/courier-service/internal/lifecycle"
	"github.com/spec-kit/courier-service/internal/observability"
	"github.com/spec-kit/courier-service/internal/persistence"
	"github.com/spec-kit/courier-service/internal/repository"
	"github.com/spec-kit/courier-service/internal/repository/memory"
	"github.com/spec-kit/courier-service/internal/service"
	"github.com/spec-kit/courier-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	storeOpts := repository.StoreOptions{OnCodeCollision: metrics.RecordCodeCollision}

	var (
		repos  *repository.Store
		checks []handlers.DependencyCheck
	)
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresStore(pg.PoolHandle(), storeOpts)
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	default:
		store := memory.New(storeOpts)
		if cfg.Storage.SeedDemoData {
			store.SeedDemo(time.Now())
			logger.Info("demo data seeded")
		}
		repos = store.Repositories()
	}

	var sessions auth.SessionStore = auth.NewMemorySessionStore()
	if cfg.Session.Backend == config.SessionRedis {
		redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redis.Close()
		sessions = auth.NewRedisSessionStore(redis.Client, cfg.Session.KeyPrefix)
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redis.Ping})
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger, metrics))

	engine := lifecycle.NewEngine(lifecycle.Dependencies{
		Packages:   repos.Packages,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:   repos.Users,
		RoleRepo:   repos.Roles,
		BranchRepo: repos.Branches,
		Logger:     logger,
	})
	if err := userService.EnsureRoles(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}
	if err := userService.EnsureSeedAdmin(ctx, cfg.SeedAdmin); err != nil {
		logger.Fatal("failed to seed administrator", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: repos.Users,
		Sessions: sessions,
		Logger:   logger,
	})
	packageService := service.NewPackageService(service.PackageDependencies{
		Engine:          engine,
		UserRepo:        repos.Users,
		BranchRepo:      repos.Branches,
		ClientRepo:      repos.Clients,
		DistributorRepo: repos.Distributors,
		Logger:          logger,
	})
	refService := service.NewReferenceService(service.ReferenceDependencies{
		BranchRepo:      repos.Branches,
		ClientRepo:      repos.Clients,
		DistributorRepo: repos.Distributors,
	})

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Storage.Backend, checks...),
		Auth:           handlers.NewAuthHandler(authService),
		Packages:       handlers.NewPackagesHandler(packageService),
		Tracking:       handlers.NewTrackingHandler(packageService),
		Users:          handlers.NewUsersHandler(userService),
		Directory:      handlers.NewDirectoryHandler(userService),
		Reference:      handlers.NewReferenceHandler(refService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authService.Sessions()),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("courier service started",
		zap.String("addr", cfg.App.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("sessions", cfg.Session.Backend))

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
