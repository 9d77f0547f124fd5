package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-rest-common/internal/config"
	"github.com/MKhiriev/go-rest-common/internal/handler"
	"github.com/MKhiriev/go-rest-common/internal/logger"
	"github.com/MKhiriev/go-rest-common/internal/server"
	"github.com/MKhiriev/go-rest-common/internal/service"
	"github.com/MKhiriev/go-rest-common/internal/store"
	"github.com/MKhiriev/go-rest-common/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(orNA(buildVersion), orNA(buildDate), orNA(buildCommit))
	printBuildInfo(buildInfo)

	log := logger.NewLogger("rest-common-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	logger.SetDebug(cfg.App.Debug)

	if cfg.App.Version == "" && buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewStorages(context.Background(), cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, storages.TokenRepository, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
