package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/tasktracker/backend/api/handler"
	"github.com/tasktracker/backend/internal/config"
	boltInfra "github.com/tasktracker/backend/internal/infrastructure/bolt"
	pgInfra "github.com/tasktracker/backend/internal/infrastructure/postgres"
	redisInfra "github.com/tasktracker/backend/internal/infrastructure/redis"
	sqliteInfra "github.com/tasktracker/backend/internal/infrastructure/sqlite"
	"github.com/tasktracker/backend/internal/middleware"
	"github.com/tasktracker/backend/internal/router"
	"github.com/tasktracker/backend/internal/services"
	"github.com/tasktracker/backend/internal/services/lifecycle"
	"github.com/tasktracker/backend/pkg/httpcontext"
	"github.com/tasktracker/backend/pkg/logger"
	"github.com/tasktracker/backend/repository"
	boltRepo "github.com/tasktracker/backend/repository/bolt"
	pgRepo "github.com/tasktracker/backend/repository/postgres"
	redisRepo "github.com/tasktracker/backend/repository/redis"
	sqliteRepo "github.com/tasktracker/backend/repository/sqlite"
	"github.com/tasktracker/backend/repository/taskfile"
	authUC "github.com/tasktracker/backend/usecase/auth"
	taskUC "github.com/tasktracker/backend/usecase/task"
	"github.com/tasktracker/backend/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	userRepo := buildUserRepository(appCtx, cfg, manager, zapLogger)
	sessionRepo := buildSessionRepository(cfg, manager, zapLogger)
	taskRepo := taskfile.New(cfg.Tasks.DataFile, zapLogger)

	sweeper := services.NewSessionSweeper(sessionRepo, zapLogger, services.SweeperConfig{
		Interval: cfg.Session.SweepInterval,
	})
	sweeper.Start()
	manager.Register("session_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.Session.Secret, cfg.Session.TTL, zapLogger)
	taskUseCase := taskUC.New(taskRepo, zapLogger)

	renderer, err := web.NewRenderer(zapLogger)
	if err != nil {
		zapLogger.Fatal("template setup failed", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)
	gate := middleware.NewSessionGate(authUseCase, ctxAdapter, cfg.Session.CookieName, zapLogger)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, renderer, ctxAdapter, zapLogger, cfg.Session.CookieName),
		Pages:  apiHandler.NewPageHandler(taskUseCase, renderer, ctxAdapter, zapLogger, cfg.AppName),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(ctxAdapter, zapLogger),
	}

	r := router.New(handlers, gate)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// buildUserRepository selects PostgreSQL when DATABASE_URL is set and
// the embedded SQLite store otherwise.
func buildUserRepository(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.UserRepository {
	if cfg.UsePostgres() {
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		return pgRepo.NewUserRepository(pool)
	}

	pool, err := sqliteInfra.NewPool(sqliteInfra.Config{
		Path:     cfg.SQLite.Path,
		PoolSize: cfg.SQLite.PoolSize,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("sqlite setup failed", zap.Error(err))
	}
	manager.Register("sqlite", func(ctx context.Context) error {
		return pool.Close()
	})

	users, err := sqliteRepo.NewUserRepository(ctx, pool)
	if err != nil {
		zapLogger.Fatal("sqlite user store setup failed", zap.Error(err))
	}
	return users
}

// buildSessionRepository selects Redis when REDIS_URL is set and the
// embedded bolt store otherwise.
func buildSessionRepository(cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) repository.SessionRepository {
	if cfg.UseRedis() {
		client, err := redisInfra.NewClient(cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return client.Close()
		})
		return redisRepo.NewSessionRepository(client, cfg.Session.TTL)
	}

	db, err := boltInfra.Open(cfg.Bolt.Path)
	if err != nil {
		zapLogger.Fatal("bolt setup failed", zap.Error(err))
	}
	manager.Register("bolt", func(ctx context.Context) error {
		return db.Close()
	})

	sessions, err := boltRepo.NewSessionRepository(db, cfg.Session.TTL)
	if err != nil {
		zapLogger.Fatal("bolt session store setup failed", zap.Error(err))
	}
	return sessions
}
