// Package server exposes the task board over HTTP/JSON.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"taskboard/internal/cascade"
	"taskboard/internal/config"
	"taskboard/internal/project"
	"taskboard/internal/registry"
	"taskboard/internal/task"
)

// Deps are the services behind the HTTP surface.
type Deps struct {
	Categories *registry.Categories
	Tags       *registry.Tags
	Users      *registry.Users
	Projects   *project.Registry
	Tasks      *task.Engine
	Cascade    *cascade.Coordinator
}

type Server struct {
	echo    *echo.Echo
	http    *http.Server
	cfg     config.ServerConfig
	log     *zap.Logger
	metrics *metrics
	limiter *limiter

	categories *registry.Categories
	tags       *registry.Tags
	users      *registry.Users
	projects   *project.Registry
	tasks      *task.Engine
	cascade    *cascade.Coordinator
}

func New(cfg config.ServerConfig, d Deps, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		cfg:        cfg,
		log:        log,
		metrics:    newMetrics(),
		categories: d.Categories,
		tags:       d.Tags,
		users:      d.Users,
		projects:   d.Projects,
		tasks:      d.Tasks,
		cascade:    d.Cascade,
	}
	if cfg.RateLimit > 0 {
		s.limiter = newLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	e.HTTPErrorHandler = s.handleError

	e.Pre(middleware.RemoveTrailingSlash())
	e.Pre(withCORS)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.withObservability)
	if s.limiter != nil {
		e.Use(s.withRateLimit)
	}
	s.routes()

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/", s.handleRoot)
	e.GET("/metrics", echo.WrapHandler(s.metrics.handler()))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)

	api.GET("/categories", s.handleListCategories)
	api.POST("/categories", s.handleCreateCategory)
	api.PUT("/categories/:id", s.handleUpdateCategory)
	api.DELETE("/categories/:id", s.handleDeleteCategory)

	api.GET("/tags", s.handleListTags)
	api.POST("/tags", s.handleCreateTag)
	api.PUT("/tags/:id", s.handleUpdateTag)
	api.DELETE("/tags/:id", s.handleDeleteTag)

	api.GET("/users", s.handleListUsers)
	api.POST("/users", s.handleCreateUser)
	api.GET("/users/:id", s.handleGetUser)
	api.PUT("/users/:id", s.handleUpdateUser)
	api.DELETE("/users/:id", s.handleDeleteUser)

	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)
	api.GET("/projects/:id", s.handleGetProject)
	api.PUT("/projects/:id", s.handleUpdateProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)
	api.GET("/projects/:id/tasks", s.handleListProjectTasks)
	api.POST("/projects/:id/tasks", s.handleCreateTask)
	api.PATCH("/projects/:id/tasks/reorder", s.handleReorderTasks)

	api.GET("/tasks", s.handleListTasks)
	api.GET("/tasks/:id", s.handleGetTask)
	api.PUT("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start blocks serving HTTP until Shutdown; it returns http.ErrServerClosed then.
func (s *Server) Start() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	return s.http.Shutdown(ctx)
}
