package http

import (
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/service"
)

type Handler struct {
	services *service.Services

	// version is the semantic version exposed by the /api/version endpoint.
	version string

	logger *logger.Logger
}

func NewHandler(services *service.Services, version string, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		version:  version,
		logger:   logger,
	}
}
