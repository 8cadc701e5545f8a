package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

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

func (s *Store) List(ctx context.Context) ([]Event, error) {
	var found []Event
	if err := s.db.WithContext(ctx).Order("start_date").Find(&found).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return found, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*Event, error) {
	var event Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &event, nil
}

func (s *Store) Create(ctx context.Context, event *Event) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("event created",
			zap.String("event_id", event.ID),
			zap.String("creator_id", event.CreatorID))
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
