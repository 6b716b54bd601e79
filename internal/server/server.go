// Package server is the HTTP service: the AI proxy API, the capability
// probe and the Basic Auth protected landing page.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alkime/monshin/internal/api"
	"github.com/alkime/monshin/internal/auth"
	"github.com/alkime/monshin/internal/config"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

//go:embed web
var webFS embed.FS

const shutdownTimeout = 10 * time.Second

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, contentType string) (string, error)
}

// Writer is the summarization and diagnosis collaborator.
type Writer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Diagnose(ctx context.Context, symptoms string) (string, error)
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Transcriber Transcriber
	Writer      Writer
	Credentials *auth.Store
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *slog.Logger
	router *gin.Engine
	deps   Deps
}

// New creates a new Server instance
func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.Transcriber == nil || deps.Writer == nil || deps.Credentials == nil {
		return nil, errors.New("server requires a transcriber, a writer and credentials")
	}

	// Set Gin mode based on environment
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Configure proxy trust for production (Fly.io)
	if cfg.Env == config.EnvProduction {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}

	server := &Server{
		config: cfg,
		logger: logger,
		router: router,
		deps:   deps,
	}

	setupSecurityMiddleware(router, cfg, logger)
	router.Use(requestID(), requestLogger(logger), apiCORS(cfg))
	router.Use(auth.Gate(deps.Credentials, auth.GateConfig{
		Realm:          cfg.AuthRealm,
		BypassPrefixes: auth.DefaultBypassPrefixes,
	}, logger))

	if err := server.setupRoutes(); err != nil {
		return nil, err
	}

	return server, nil
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:              ":" + s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "port", s.config.Port)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() error {
	s.router.GET(api.PathHealth, s.handleHealth)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/transcribe", limitBody(maxTranscribeBody), s.handleTranscribe)
		apiGroup.POST("/summarize", s.handleSummarize)
		apiGroup.POST("/diagnose", s.handleDiagnose)
		apiGroup.GET("/capabilities", s.handleCapabilities)
	}

	site, err := static.EmbedFolder(webFS, "web")
	if err != nil {
		return fmt.Errorf("failed to load embedded site: %w", err)
	}
	s.router.Use(static.Serve("/", site))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Success: false, Error: "Not found"})
	})

	return nil
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "monshin",
	})
}
