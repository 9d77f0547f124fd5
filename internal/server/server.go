package server

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-rest-common/internal/config"
	"github.com/MKhiriev/go-rest-common/internal/handler"
	"github.com/MKhiriev/go-rest-common/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	s.run(context.Background())
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

// run serves until ctx is done or a stop signal arrives.
func (s *server) run(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	served := make(chan struct{})
	go func() {
		defer close(served)
		s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")
		s.httpServer.RunServer()
	}()

	select {
	case <-ctx.Done():
		s.Shutdown()
		<-served
	case <-served:
	}

	s.logger.Info().Msg("server Shutdown gracefully")
}
