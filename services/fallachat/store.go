package fallachat

import (
	"context"
	"errors"
	"fmt"

	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Store struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewStore(db *gorm.DB, logger *logging.Service) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// GetOrCreate returns the chat metadata for a falla code, creating an
// empty record on first access so every code always has a room.
func (s *Store) GetOrCreate(ctx context.Context, fallaCode string) (*FallaChat, error) {
	var chat FallaChat
	err := s.db.WithContext(ctx).Where("falla_code = ?", fallaCode).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	chat = FallaChat{FallaCode: fallaCode}
	if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, fmt.Errorf("failed to create falla chat: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("falla chat created", zap.String("falla_code", fallaCode))
	}

	return &chat, nil
}
