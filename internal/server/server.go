package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-api/backend/internal/api"
	"github.com/pageza/recipe-api/backend/internal/middleware"
	"github.com/pageza/recipe-api/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *slog.Logger
}

// New wires middleware, media serving, metrics and the API routes.
func New(deps api.Dependencies) (*Server, error) {
	cfg := deps.Config
	log := deps.Logger

	router := gin.New()
	router.RedirectTrailingSlash = false
	if err := router.SetTrustedProxies(cfg.TrustedProxyCIDRs); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	// ErrorHandler sits inside the logger and metrics so they see the final status.
	router.Use(
		middleware.RequestLogger(log),
		middleware.Metrics(deps.Metrics),
		middleware.ErrorHandler(log),
		middleware.CORS(cfg.CORSAllowOrigins),
	)

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if local, ok := deps.Storage.(*service.LocalStorage); ok && strings.HasPrefix(cfg.MediaURL, "/") {
		router.StaticFS(cfg.MediaURL, gin.Dir(local.Root(), false))
	}

	api.RegisterRoutes(router, deps)

	return &Server{
		router: router,
		log:    log,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
