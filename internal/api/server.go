package api

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"paygate/internal/api/handlers/session"
	"paygate/internal/api/handlers/system"
	"paygate/internal/api/handlers/transfer"
	"paygate/internal/api/middleares"
	"paygate/internal/config"
	"paygate/internal/logger"
)

// Server is the HTTP surface over the payment-session core: auth, rate
// limiting, error mapping, and the three route groups the spec documents.
type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
	log    logger.Logger

	sessionHandler  *session.Handler
	transferHandler *transfer.Handler
	systemHandler   *system.Handler
}

// NewServer builds a Server wired to its three handler groups. Routes are
// not mounted until SetupRoutes is called.
func NewServer(
	cfg *config.Config,
	log logger.Logger,
	sessionHandler *session.Handler,
	transferHandler *transfer.Handler,
	systemHandler *system.Handler,
) *Server {
	return &Server{
		router:          gin.Default(),
		config:          cfg,
		log:             log,
		sessionHandler:  sessionHandler,
		transferHandler: transferHandler,
		systemHandler:   systemHandler,
	}
}

// SetupRoutes mounts CORS, auth, rate limiting, error handling, the health
// check, and every versioned route group.
func (s *Server) SetupRoutes() {
	s.router.Use(cors.Default())

	s.router.GET("/health", s.healthHandler)

	errorHandler := middleares.NewErrorHandler(nil)
	rateLimiter := middleares.NewRateLimiter(10, 20)

	v1 := s.router.Group("/api/v1")
	v1.Use(errorHandler.Middleware())
	v1.Use(rateLimiter.Middleware())
	v1.Use(middleares.BearerAuth(s.config.APIKey))
	{
		s.sessionHandler.SetupRoutes(v1)
		s.transferHandler.SetupRoutes(v1)
		s.systemHandler.SetupRoutes(v1)
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run starts the server on the configured host/port. Blocks until the
// server stops or errors.
func (s *Server) Run() error {
	addr := s.config.Host + ":" + s.config.Port
	s.log.Info("starting HTTP server", logger.String("address", addr))

	s.http = &http.Server{Addr: addr, Handler: s.router}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
