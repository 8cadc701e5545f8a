package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("device session not found")
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

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return found, nil
}

// FindByFallaCode resolves the falla account owning the given code.
func (s *Store) FindByFallaCode(ctx context.Context, code string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("falla_info_code = ?", code).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *Store) Create(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, user *User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// UpsertDeviceSession installs a refresh token for a device. Any previous
// row for the same device, and any row still holding the same token value,
// is removed first so that exactly one session per device remains and no
// token value appears twice.
func (s *Store) UpsertDeviceSession(ctx context.Context, userID, deviceID, refreshToken, deviceName string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND (device_id = ? OR token = ?)", userID, deviceID, refreshToken).
			Delete(&DeviceSession{}).Error; err != nil {
			return err
		}

		return tx.Create(&DeviceSession{
			UserID:     userID,
			DeviceID:   deviceID,
			Token:      refreshToken,
			DeviceName: deviceName,
		}).Error
	})

	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to upsert device session",
				zap.String("user_id", userID),
				zap.String("device_id", deviceID),
				zap.Error(err))
		}
		return fmt.Errorf("failed to upsert device session: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("device session stored",
			zap.String("user_id", userID),
			zap.String("device_id", deviceID))
	}

	return nil
}

// RemoveDeviceSession drops the session for a device. Removing a device
// that has no session is a no-op.
func (s *Store) RemoveDeviceSession(ctx context.Context, userID, deviceID string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND device_id = ?", userID, deviceID).
		Delete(&DeviceSession{})

	if result.Error != nil {
		return fmt.Errorf("failed to remove device session: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Debug("device session removed",
			zap.String("user_id", userID),
			zap.String("device_id", deviceID),
			zap.Int64("affected_rows", result.RowsAffected))
	}

	return nil
}

func (s *Store) DeviceSessions(ctx context.Context, userID string) ([]DeviceSession, error) {
	var sessions []DeviceSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return sessions, nil
}

// FindByRefreshToken locates the user owning a refresh token for a given
// device. Both values must match exactly.
func (s *Store) FindByRefreshToken(ctx context.Context, refreshToken, deviceID string) (*User, error) {
	var session DeviceSession
	err := s.db.WithContext(ctx).
		Where("token = ? AND device_id = ?", refreshToken, deviceID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.FindByID(ctx, session.UserID)
}
