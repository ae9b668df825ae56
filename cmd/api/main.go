package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/demand-service/internal/api/http"
	"github.com/spec-kit/demand-service/internal/api/http/handlers"
	"github.com/spec-kit/demand-service/internal/auth"
	"github.com/spec-kit/demand-service/internal/config"
	"github.com/spec-kit/demand-service/internal/events"
	"github.com/spec-kit/demand-service/internal/observability"
	"github.com/spec-kit/demand-service/internal/persistence"
	"github.com/spec-kit/demand-service/internal/repository"
	"github.com/spec-kit/demand-service/internal/repository/cache"
	"github.com/spec-kit/demand-service/internal/repository/memory"
	"github.com/spec-kit/demand-service/internal/repository/sqlite"
	"github.com/spec-kit/demand-service/internal/service"
	"github.com/spec-kit/demand-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer store.close()

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("invalid redis configuration", zap.Error(err))
	}
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	requestRepo := store.requests
	var revocation auth.RevocationStore
	dependencies := map[string]handlers.Pinger{}
	if store.pinger != nil {
		dependencies[cfg.Storage.Driver] = store.pinger
	}
	if redis != nil {
		cached := cache.NewRequestRepository(store.requests, redis.Client, cfg.Redis.CacheTTL(), logger)
		cached.RegisterHandlers(dispatcher)
		requestRepo = cached
		revocation = auth.NewRedisRevocationStore(redis.Client)
		dependencies["redis"] = redis
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   store.users,
		Revocation: revocation,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   store.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: store.projects,
		UserRepo:    store.users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo: requestRepo,
		ProjectRepo: store.projects,
		UserRepo:    store.users,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Users:          handlers.NewUsersHandler(authService, userService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Requests:       handlers.NewRequestsHandler(requestService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.users, revocation),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// storage bundles the repositories of the selected backend.
type storage struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	requests repository.RequestRepository
	pinger   handlers.Pinger
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &storage{
			users:    repository.NewUserRepository(pool),
			projects: repository.NewProjectRepository(pool),
			requests: repository.NewRequestRepository(pool),
			pinger:   pg,
			close:    pg.Close,
		}, nil
	case config.StorageDriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.RunMigrations {
			if err := persistence.RunSQLiteMigrations(ctx, db.DB, logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		s := sqlite.NewStore(db.DB)
		return &storage{
			users:    s.Users(),
			projects: s.Projects(),
			requests: s.Requests(),
			pinger:   db,
			close:    db.Close,
		}, nil
	default:
		logger.Warn("using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return &storage{
			users:    s.Users(),
			projects: s.Projects(),
			requests: s.Requests(),
			close:    func() {},
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
