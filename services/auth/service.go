package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserNotFound          = errors.New("user not found")
	ErrUnrecognizedToken     = errors.New("refresh token not recognized")
	ErrInvalidOrExpired      = errors.New("token invalid or expired")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidFallaCode      = errors.New("invalid falla code")
	ErrPasswordHashingFailed = errors.New("failed to hash password")
)

type Service struct {
	config     *config.Config
	store      *users.Store
	tokens     *token.Service
	revocation *revocation.Service
	logger     *logging.Service
}

func NewService(cfg *config.Config, store *users.Store, tokens *token.Service, revocationSvc *revocation.Service, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:     cfg,
		store:      store,
		tokens:     tokens,
		revocation: revocationSvc,
		logger:     logger,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	User *users.User
	TokenPair
}

// Login validates credentials and opens a device session. Unknown email
// and wrong password both map to ErrInvalidCredentials so callers cannot
// probe which addresses are registered.
func (s *Service) Login(ctx context.Context, email, password, deviceID, userAgent string) (*LoginResult, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			if s.logger != nil {
				s.logger.Warn("login failed - unknown email")
			}
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.CheckPassword(password, user.PasswordHash) {
		if s.logger != nil {
			s.logger.Warn("login failed - password mismatch", zap.String("user_id", user.ID))
		}
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertDeviceSession(ctx, user.ID, deviceID, pair.RefreshToken, deviceName(userAgent)); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("user logged in",
			zap.String("user_id", user.ID),
			zap.String("device_id", deviceID))
	}

	return &LoginResult{User: user, TokenPair: pair}, nil
}

// Refresh rotates the device's refresh token. The presented token is
// located by exact match; after a successful rotation it is no longer on
// file and can never be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken, deviceID string) (*LoginResult, error) {
	user, err := s.store.FindByRefreshToken(ctx, refreshToken, deviceID)
	if err != nil {
		if errors.Is(err, users.ErrSessionNotFound) || errors.Is(err, users.ErrUserNotFound) {
			if s.logger != nil {
				s.logger.Warn("refresh failed - token not on file", zap.String("device_id", deviceID))
			}
			return nil, ErrUnrecognizedToken
		}
		return nil, err
	}

	if _, err := s.tokens.Validate(refreshToken, user.Email, token.KindRefresh); err != nil {
		if s.logger != nil {
			s.logger.Warn("refresh failed - token validation",
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
		return nil, ErrInvalidOrExpired
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertDeviceSession(ctx, user.ID, deviceID, pair.RefreshToken, ""); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("refresh token rotated",
			zap.String("user_id", user.ID),
			zap.String("device_id", deviceID))
	}

	return &LoginResult{User: user, TokenPair: pair}, nil
}

// Logout blacklists the access token in flight. It is deliberately
// lenient: a missing or undecodable token still counts as a successful
// logout. Device sessions are untouched.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	claims, err := s.tokens.Decode(accessToken)
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("logout with undecodable token", zap.Error(err))
		}
		return nil
	}

	return s.revocation.RevokeToken(ctx, claims.JTI(), tokenExpiry(claims))
}

// LogoutDevice drops the device's refresh-token session and blacklists
// the presented access token.
func (s *Service) LogoutDevice(ctx context.Context, accessToken, deviceID string) (*users.User, error) {
	claims, err := s.tokens.Decode(accessToken)
	if err != nil {
		return nil, ErrInvalidOrExpired
	}

	user, err := s.store.FindByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.store.RemoveDeviceSession(ctx, user.ID, deviceID); err != nil {
		return nil, err
	}

	if err := s.revocation.RevokeToken(ctx, claims.JTI(), tokenExpiry(claims)); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("device logged out",
			zap.String("user_id", user.ID),
			zap.String("device_id", deviceID))
	}

	return user, nil
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FullName  string
	Phone     string
	Address   string
	FallaCode string
}

// Register creates a plain user account. A falla code, when present, must
// reference an existing falla; the new user is then queued on that
// falla's pending requests.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*users.User, error) {
	if _, err := s.store.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return nil, err
	}

	var falla *users.User
	if input.FallaCode != "" {
		var err error
		falla, err = s.store.FindByFallaCode(ctx, input.FallaCode)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return nil, ErrInvalidFallaCode
			}
			return nil, err
		}
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Address:      input.Address,
		Role:         users.RoleUser,
		Active:       true,
		FallaCode:    input.FallaCode,
		PendingJoin:  falla != nil,
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if falla != nil {
		falla.FallaInfo.AddPendingRequest(user.ID)
		if err := s.store.Save(ctx, falla); err != nil {
			return nil, err
		}
	}

	if s.logger != nil {
		s.logger.Info("user registered",
			zap.String("user_id", user.ID),
			zap.Bool("pending_join", user.PendingJoin))
	}

	return user, nil
}

func (s *Service) issueTokenPair(user *users.User) (TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.Email)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// tokenExpiry reads the exp claim without assuming it is present. A
// token with no expiry has nothing left to blacklist, so the zero time
// makes RevokeToken skip it.
func tokenExpiry(claims *token.Claims) time.Time {
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func deviceName(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.Parse(userAgentString)
	parts := make([]string, 0, 2)
	if ua.Name != "" {
		parts = append(parts, ua.Name)
	}
	if ua.OS != "" {
		parts = append(parts, ua.OS)
	}
	return strings.Join(parts, " / ")
}
