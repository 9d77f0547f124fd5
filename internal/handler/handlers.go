package handler

import (
	"github.com/MKhiriev/go-rest-common/audit"
	"github.com/MKhiriev/go-rest-common/internal/config"
	"github.com/MKhiriev/go-rest-common/internal/handler/http"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, tokens audit.TokenLookup, cfg config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, tokens, cfg, logger),
	}, nil
}
