package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/procman/internal/logging"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	server *http.Server
	logger logging.Logger
}

func NewServer(addr string, logger logging.Logger, api *API) *Server {
	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: api.Router(),
		},
		logger: logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
			_ = s.server.Close()
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
