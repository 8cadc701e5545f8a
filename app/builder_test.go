package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manugamu/pfc/services/users"
	"github.com/manugamu/pfc/testutils"
)

func TestBuilder_NilConfig(t *testing.T) {
	_, err := NewApp().WithConfig(nil).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestBuilder_HandlersRequireAuth(t *testing.T) {
	_, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		WithHandlers().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handlers require auth")
}

func TestBuilder_HandlersRequireEvents(t *testing.T) {
	_, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		WithAuth().
		WithHandlers().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handlers require events")
}

func TestBuilder_HandlersRequireFallaChats(t *testing.T) {
	_, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		WithAuth().
		WithEvents().
		WithHandlers().
		Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handlers require falla-chat")
}

func TestBuilder_Build(t *testing.T) {
	application, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		WithAuth().
		WithEvents().
		WithFallaChats().
		WithHandlers().
		Build()
	require.NoError(t, err)
	require.NotNil(t, application)

	require.NotNil(t, application.Database())
	assert.True(t, application.Database().Migrator().HasTable(&users.User{}))
	assert.True(t, application.Database().Migrator().HasTable(&users.DeviceSession{}))
	assert.NotNil(t, application.Config())
	assert.NotNil(t, application.Logger())
}

func TestBuilder_WithDatabaseOnly(t *testing.T) {
	application, err := NewApp().
		WithConfig(testutils.GetTestConfig()).
		WithDatabase(&users.User{}).
		Build()
	require.NoError(t, err)

	assert.True(t, application.Database().Migrator().HasTable(&users.User{}))
	assert.False(t, application.Database().Migrator().HasTable(&users.DeviceSession{}))
}
