package users

import (
	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func NewUserStore(db *gorm.DB, logger *logging.Service) *Store {
	return NewStore(db, logger)
}

var Module = fx.Options(
	fx.Provide(NewUserStore),
)
