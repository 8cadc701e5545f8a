package auth

import (
	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/fx"
)

func NewAuthService(cfg *config.Config, store *users.Store, tokens *token.Service, revocationSvc *revocation.Service, logger *logging.Service) *Service {
	return NewService(cfg, store, tokens, revocationSvc, logger)
}

var Module = fx.Options(
	fx.Provide(NewAuthService),
)
