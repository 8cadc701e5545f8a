package bearerauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"github.com/manugamu/pfc/testutils"
)

type unavailableStore struct{}

func (unavailableStore) Revoke(context.Context, string, time.Duration) error {
	return errors.New("revocation store unavailable")
}

func (unavailableStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("revocation store unavailable")
}

type testEnv struct {
	tokens     *token.Service
	store      *users.Store
	revocation *revocation.Service
	middleware echo.MiddlewareFunc
	echo       *echo.Echo
	user       *users.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutils.GetTestConfig()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&users.User{}, &users.DeviceSession{}))

	store := users.NewStore(db, nil)
	tokens := token.NewService(cfg, nil)
	revocationSvc := revocation.NewService(revocation.NewMemoryStore(), nil)

	user := &users.User{
		Username:     "pepet",
		Email:        "pepet@example.com",
		PasswordHash: "$2a$04$notarealhash",
		Role:         users.RoleFallero,
		Active:       true,
	}
	require.NoError(t, store.Create(context.Background(), user))

	return &testEnv{
		tokens:     tokens,
		store:      store,
		revocation: revocationSvc,
		middleware: Authenticate(tokens, store, revocationSvc, nil),
		echo:       echo.New(),
		user:       user,
	}
}

func (e *testEnv) do(t *testing.T, authHeader string) (*Identity, error) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.echo.NewContext(req, rec)

	var identity *Identity
	handler := func(c echo.Context) error {
		identity, _ = CurrentIdentity(c)
		return c.NoContent(http.StatusOK)
	}

	err := e.middleware(handler)(c)
	return identity, err
}

func TestAuthenticate(t *testing.T) {
	t.Run("no header passes through unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		identity, err := env.do(t, "")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("valid token establishes identity", func(t *testing.T) {
		env := newTestEnv(t)

		tokenString, err := env.tokens.GenerateAccessToken(env.user.Email, env.user.Role)
		require.NoError(t, err)

		identity, err := env.do(t, "Bearer "+tokenString)
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, env.user.ID, identity.UserID)
		assert.Equal(t, env.user.Email, identity.Email)
		assert.Equal(t, users.RoleFallero, identity.Role)
	})

	t.Run("revoked token is rejected with 401", func(t *testing.T) {
		env := newTestEnv(t)

		tokenString, err := env.tokens.GenerateAccessToken(env.user.Email, env.user.Role)
		require.NoError(t, err)
		claims, err := env.tokens.Decode(tokenString)
		require.NoError(t, err)
		require.NoError(t, env.revocation.RevokeToken(context.Background(), claims.JTI(), claims.ExpiresAt.Time))

		_, err = env.do(t, "Bearer "+tokenString)
		require.Error(t, err)
		httpError, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpError.Code)
	})

	t.Run("revocation store outage is rejected with 503", func(t *testing.T) {
		env := newTestEnv(t)
		env.middleware = Authenticate(env.tokens, env.store, revocation.NewService(unavailableStore{}, nil), nil)

		tokenString, err := env.tokens.GenerateAccessToken(env.user.Email, env.user.Role)
		require.NoError(t, err)

		identity, err := env.do(t, "Bearer "+tokenString)
		require.Error(t, err)
		httpError, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, httpError.Code)
		assert.Nil(t, identity)
	})

	t.Run("garbage token passes through unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		identity, err := env.do(t, "Bearer not.a.jwt")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("expired token passes through unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		cfg := testutils.GetTestConfig()
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
			Role: env.user.Role,
			Kind: token.KindAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "expired-jti",
				Subject:   env.user.Email,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		signed, err := expired.SignedString([]byte(cfg.JWT.SecretKey))
		require.NoError(t, err)

		identity, err := env.do(t, "Bearer "+signed)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("refresh token cannot authenticate a request", func(t *testing.T) {
		env := newTestEnv(t)

		tokenString, err := env.tokens.GenerateRefreshToken(env.user.Email)
		require.NoError(t, err)

		identity, err := env.do(t, "Bearer "+tokenString)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("token for deleted user passes through unauthenticated", func(t *testing.T) {
		env := newTestEnv(t)

		tokenString, err := env.tokens.GenerateAccessToken("ghost@example.com", users.RoleUser)
		require.NoError(t, err)

		identity, err := env.do(t, "Bearer "+tokenString)
		require.NoError(t, err)
		assert.Nil(t, identity)
	})
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	t.Run("no identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		err := RequireAuth()(handler)(c)
		require.Error(t, err)
		httpError, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpError.Code)
	})

	t.Run("identity present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.Set(identityKey, &Identity{UserID: "u1", Email: "pepet@example.com", Role: users.RoleUser})

		assert.NoError(t, RequireAuth()(handler)(c))
	})
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()

	handler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	newCtx := func(role string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if role != "" {
			c.Set(identityKey, &Identity{UserID: "u1", Email: "pepet@example.com", Role: role})
		}
		return c
	}

	t.Run("matching role", func(t *testing.T) {
		err := RequireRoles(users.RoleFalla, users.RoleFallero)(handler)(newCtx(users.RoleFallero))
		assert.NoError(t, err)
	})

	t.Run("role comparison is case insensitive", func(t *testing.T) {
		err := RequireRoles(users.RoleFalla)(handler)(newCtx("falla"))
		assert.NoError(t, err)
	})

	t.Run("wrong role", func(t *testing.T) {
		err := RequireRoles(users.RoleFalla)(handler)(newCtx(users.RoleUser))
		require.Error(t, err)
		httpError, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, httpError.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		err := RequireRoles(users.RoleFalla)(handler)(newCtx(""))
		require.Error(t, err)
		httpError, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpError.Code)
	})
}
