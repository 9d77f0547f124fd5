package http

import (
	"github.com/MKhiriev/go-rest-common/audit"
	"github.com/MKhiriev/go-rest-common/auth"
	"github.com/MKhiriev/go-rest-common/internal/config"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/service"
)

type Handler struct {
	services  *service.Services
	auditor   *audit.Auditor
	tokenAuth *auth.TokenAuthentication

	logger *logger.Logger
}

// NewHandler wires the auditor and the token scheme. tokens is the fallback
// lookup the auditor uses for requests that were not authenticated. Outside
// production the token is also accepted from the Authorization header.
func NewHandler(services *service.Services, tokens audit.TokenLookup, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")

	opts := []auth.Option{auth.WithFallback(!cfg.App.IsProduction())}
	if cfg.Auth.TokenHeaderName != "" {
		opts = append(opts, auth.WithHeaderName(cfg.Auth.TokenHeaderName))
	}

	return &Handler{
		services: services,
		auditor: audit.New(audit.Config{
			LoggerName: cfg.Audit.LoggerName,
			APIPrefix:  cfg.Audit.APIPrefix,
		}, tokens, logger.Logger),
		tokenAuth: auth.NewTokenAuthentication(services.AuthService, opts...),
		logger:    logger,
	}
}
