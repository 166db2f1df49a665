package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mkovalchuk/contacts-api/internal/logging"
)

// Server runs the API and owns its graceful-shutdown deadline
type Server struct {
	httpServer      *http.Server
	logger          *logging.Logger
	shutdownTimeout time.Duration
}

func NewServer(
	addr string,
	handler http.Handler,
	readTimeout, writeTimeout, shutdownTimeout time.Duration,
	logger *logging.Logger,
) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start serves until the listener fails or Shutdown is called. Returning
// because of Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests,
// waiting at most the configured shutdown timeout.
func (s *Server) Shutdown() error {
	s.logger.Info("http server shutting down", "timeout", s.shutdownTimeout.String())

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}
