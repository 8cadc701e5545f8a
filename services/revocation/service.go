package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
)

var ErrStoreNotConfigured = errors.New("revocation store not configured")

type Service struct {
	store  Store
	logger *logging.Service
}

func NewService(store Store, logger *logging.Service) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// RevokeToken blacklists a jti until the token's natural expiry. Tokens
// that already expired are skipped; they can no longer pass validation
// anyway.
func (s *Service) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		if s.logger != nil {
			s.logger.Debug("skipping revocation of already expired token",
				zap.String("jti", jti))
		}
		return nil
	}

	if err := s.store.Revoke(ctx, jti, ttl); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke token", zap.String("jti", jti), zap.Error(err))
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("token revoked",
			zap.String("jti", jti),
			zap.Duration("ttl", ttl))
	}

	return nil
}

func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	revoked, err := s.store.IsRevoked(ctx, jti)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to check revocation status", zap.String("jti", jti), zap.Error(err))
		}
		return false, fmt.Errorf("failed to check revocation status: %w", err)
	}

	return revoked, nil
}
