package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo/internal/config"
	"todo/internal/database"
	"todo/internal/handler"
	"todo/internal/middleware"
	"todo/internal/repository"
	"todo/web"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const maxBodySize = 1 << 20

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	log    zerolog.Logger
}

func Init(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	r, err := NewRouter(repository.NewTaskRepository(db), log, cfg.ExposeErrors)
	if err != nil {
		return nil, err
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		log:    log,
	}, nil
}

// NewRouter registers the JSON API, the HTML views, health and swagger UI.
func NewRouter(repo repository.TaskRepositoryInterface, log zerolog.Logger, exposeErrors bool) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	r.SetHTMLTemplate(tmpl)

	taskHandler := handler.NewTaskHandler(repo, log, exposeErrors)
	viewHandler := handler.NewViewHandler(repo, log)

	api := r.Group("/api/tasks", middleware.BodyLimit(maxBodySize))
	{
		api.GET("", taskHandler.List)
		api.POST("", taskHandler.Create)
		api.GET("/:id", taskHandler.GetByID)
		api.PATCH("/:id", taskHandler.Update)
		api.PUT("/:id", taskHandler.Update)
		api.DELETE("/:id", taskHandler.Delete)
	}

	r.GET("/", viewHandler.Index)
	r.GET("/add", viewHandler.AddForm)
	r.GET("/edit/:id", viewHandler.EditForm)

	r.GET("/health", handler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r, nil
}

func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.Config.ServerPort).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case <-quit:
	}
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	s.log.Info().Msg("server exited properly")
	return nil
}
