package token

import (
	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/fx"
)

func NewTokenService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg, logger)
}

var Module = fx.Options(
	fx.Provide(NewTokenService),
)
