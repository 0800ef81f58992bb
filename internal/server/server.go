package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tracker/internal/config"
	"tracker/internal/handler"
	"tracker/internal/logger"
	"tracker/internal/middleware"
	"tracker/internal/repository"
	"tracker/internal/repository/filestore"
	"tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
}

func Init(cfg *config.Config, log *zap.Logger) (*Server, error) {
	stores, db, err := OpenStores(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: NewRouter(stores, cfg, log),
		DB:     db,
		Config: cfg,
		Logger: log,
	}, nil
}

// OpenStores connects the configured storage driver. The returned *gorm.DB is
// nil for the file driver.
func OpenStores(cfg *config.Config, log *zap.Logger) (repository.Stores, *gorm.DB, error) {
	if cfg.StorageDriver == config.StorageDriverFile {
		store, err := filestore.Open(cfg.StorageFile)
		if err != nil {
			return repository.Stores{}, nil, fmt.Errorf("open file store: %w", err)
		}
		log.Info("using file store", zap.String("path", cfg.StorageFile))
		return store.Stores(), nil, nil
	}

	db, err := Connect(cfg, log)
	if err != nil {
		return repository.Stores{}, nil, err
	}
	if cfg.RunMigrations {
		if err := repository.Migrate(db); err != nil {
			return repository.Stores{}, nil, err
		}
		log.Info("database schema is up to date")
	}
	return repository.NewGormStores(db), db, nil
}

func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	return db, nil
}

func NewRouter(stores repository.Stores, cfg *config.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.GinZapMiddleware(log))

	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		r.Use(middleware.NewMetrics(registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	opts := []service.Option{service.WithDefaultAssignee(cfg.DefaultAssignee)}
	projectService := service.NewProjectService(stores.Projects, log, opts...)
	taskService := service.NewTaskService(stores, log, opts...)
	subtaskService := service.NewSubtaskService(stores, log, opts...)

	healthHandler := handler.NewHealthHandler()
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	subtaskHandler := handler.NewSubtaskHandler(subtaskService)

	r.GET("/health", healthHandler.Check)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		// Project routes
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id", projectHandler.Replace)
		api.PATCH("/projects/:id", projectHandler.Patch)
		api.POST("/projects/:id/archive", projectHandler.Archive)
		api.POST("/projects/:id/restore", projectHandler.Restore)
		api.DELETE("/projects/:id", projectHandler.Delete)

		// Task routes
		api.GET("/tasks", taskHandler.List)
		api.POST("/tasks", taskHandler.Create)
		api.POST("/tasks/move", taskHandler.Move)
		api.PATCH("/tasks/batch/reorder", taskHandler.BatchReorder)
		api.GET("/tasks/:id", taskHandler.Get)
		api.PUT("/tasks/:id", taskHandler.Replace)
		api.PATCH("/tasks/:id", taskHandler.Patch)
		api.POST("/tasks/:id/archive", taskHandler.Archive)
		api.POST("/tasks/:id/restore", taskHandler.Restore)
		api.GET("/tasks/:id/progress", taskHandler.Progress)
		api.DELETE("/tasks/:id", taskHandler.Delete)

		// Subtask routes
		api.GET("/subtasks", subtaskHandler.List)
		api.POST("/subtasks", subtaskHandler.Create)
		api.POST("/subtasks/move", subtaskHandler.Move)
		api.PATCH("/subtasks/batch/reorder", subtaskHandler.BatchReorder)
		api.GET("/subtasks/:id", subtaskHandler.Get)
		api.PUT("/subtasks/:id", subtaskHandler.Replace)
		api.PATCH("/subtasks/:id", subtaskHandler.Patch)
		api.DELETE("/subtasks/:id", subtaskHandler.Delete)
	}
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most Config.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server running", zap.String("port", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	s.Logger.Info("server exited properly")
	return nil
}
