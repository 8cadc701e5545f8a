package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrWrongKind        = errors.New("wrong token kind")
)

// Kind distinguishes access from refresh tokens. Both share the same
// signing key and wire format, so the claim is the only structural
// difference between them.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type Claims struct {
	Role string `json:"role,omitempty"`
	Kind Kind   `json:"kind"`
	jwt.RegisteredClaims
}

func (c *Claims) JTI() string {
	return c.ID
}

func (c *Claims) Email() string {
	return c.Subject
}

type Service struct {
	config *config.Config
	logger *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) AccessExpiry() time.Duration {
	return s.config.JWT.AccessExpiry
}

func (s *Service) RefreshExpiry() time.Duration {
	return s.config.JWT.RefreshExpiry
}

// GenerateAccessToken issues a short-lived token carrying the user's role.
func (s *Service) GenerateAccessToken(email, role string) (string, error) {
	return s.generate(email, role, KindAccess, s.config.JWT.AccessExpiry)
}

// GenerateRefreshToken issues a long-lived token without a role claim.
func (s *Service) GenerateRefreshToken(email string) (string, error) {
	return s.generate(email, "", KindRefresh, s.config.JWT.RefreshExpiry)
}

func (s *Service) generate(email, role string, kind Kind, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.config.JWT.Issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := tok.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign token", zap.String("kind", string(kind)), zap.Error(err))
		}
		return "", fmt.Errorf("failed to generate %s token: %w", kind, err)
	}

	return tokenString, nil
}

// Decode verifies signature and shape only. Expiry is left to the caller
// via IsExpired so that logout can still extract claims from a token that
// has just expired.
func (s *Service) Decode(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if t.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", t.Method.Alg())
		}

		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", t.Header["alg"])
		}

		return []byte(s.config.JWT.SecretKey), nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("token decode failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) IsExpired(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(time.Now())
}

// Validate decodes a token and enforces subject, kind and expiry.
func (s *Service) Validate(tokenString, email string, kind Kind) (*Claims, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Subject != email {
		if s.logger != nil {
			s.logger.Warn("token validation failed - subject mismatch")
		}
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		if s.logger != nil {
			s.logger.Warn("token validation failed - wrong kind",
				zap.String("expected", string(kind)),
				zap.String("got", string(claims.Kind)))
		}
		return nil, ErrWrongKind
	}

	if s.IsExpired(claims) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

// RemainingTTL reports how long the token stays valid, clamped to zero for
// tokens that already expired. Used to size revocation entries.
func (s *Service) RemainingTTL(claims *Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 0 {
		return 0
	}
	return ttl
}
