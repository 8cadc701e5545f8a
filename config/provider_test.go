package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/manugamu/pfc/config"
	"github.com/manugamu/pfc/testutils"
)

func TestNewProvider(t *testing.T) {
	t.Run("supplies the given config", func(t *testing.T) {
		cfg := testutils.GetTestConfig()

		var got *config.Config
		app := fx.New(
			config.NewProvider(cfg),
			fx.NopLogger,
			fx.Invoke(func(c *config.Config) { got = c }),
		)
		require.NoError(t, app.Err())
		assert.Same(t, cfg, got)
	})

	t.Run("loads from the environment when nil", func(t *testing.T) {
		t.Setenv("PFC_JWT_SECRET_KEY", "env-secret")
		t.Setenv("PFC_SERVER_PORT", "9090")

		var got *config.Config
		app := fx.New(
			config.NewProvider(nil),
			fx.NopLogger,
			fx.Invoke(func(c *config.Config) { got = c }),
		)
		require.NoError(t, app.Err())
		assert.Equal(t, "env-secret", got.JWT.SecretKey)
		assert.Equal(t, "9090", got.Server.Port)
	})
}
