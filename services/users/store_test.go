package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &DeviceSession{}))

	return NewStore(db, nil)
}

func createTestUser(t *testing.T, store *Store, email string) *User {
	t.Helper()

	user := &User{
		Username:     "user-" + email,
		Email:        email,
		PasswordHash: "$2a$04$notarealhash",
		Role:         RoleUser,
		Active:       true,
	}
	require.NoError(t, store.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func TestStore_FindByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, store, "pepet@example.com")

	t.Run("existing user", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "pepet@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := store.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStore_FindByFallaCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	falla := &User{
		Username: "falla-el-pilar",
		Email:    "elpilar@example.com",
		Role:     RoleFalla,
		Active:   true,
		FallaInfo: FallaInfo{
			Code: "FLL-001",
		},
	}
	require.NoError(t, store.Create(ctx, falla))

	found, err := store.FindByFallaCode(ctx, "FLL-001")
	require.NoError(t, err)
	assert.Equal(t, falla.ID, found.ID)

	_, err = store.FindByFallaCode(ctx, "FLL-999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStore_UpsertDeviceSession(t *testing.T) {
	ctx := context.Background()

	t.Run("second upsert for same device replaces the row", func(t *testing.T) {
		store := newTestStore(t)
		user := createTestUser(t, store, "pepet@example.com")

		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-1", "android"))
		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-2", "android"))

		sessions, err := store.DeviceSessions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "d1", sessions[0].DeviceID)
		assert.Equal(t, "token-2", sessions[0].Token)
	})

	t.Run("duplicate token value on another device is removed", func(t *testing.T) {
		store := newTestStore(t)
		user := createTestUser(t, store, "pepet@example.com")

		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-1", ""))
		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d2", "token-1", ""))

		sessions, err := store.DeviceSessions(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "d2", sessions[0].DeviceID)
	})

	t.Run("different devices keep separate sessions", func(t *testing.T) {
		store := newTestStore(t)
		user := createTestUser(t, store, "pepet@example.com")

		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-1", ""))
		require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d2", "token-2", ""))

		sessions, err := store.DeviceSessions(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})
}

func TestStore_RemoveDeviceSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "pepet@example.com")

	require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-1", ""))
	require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d2", "token-2", ""))

	require.NoError(t, store.RemoveDeviceSession(ctx, user.ID, "d1"))

	sessions, err := store.DeviceSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "d2", sessions[0].DeviceID)

	// removing an absent device is a no-op
	require.NoError(t, store.RemoveDeviceSession(ctx, user.ID, "d1"))
}

func TestStore_FindByRefreshToken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "pepet@example.com")

	require.NoError(t, store.UpsertDeviceSession(ctx, user.ID, "d1", "token-1", ""))

	t.Run("exact match on token and device", func(t *testing.T) {
		found, err := store.FindByRefreshToken(ctx, "token-1", "d1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("right token wrong device", func(t *testing.T) {
		_, err := store.FindByRefreshToken(ctx, "token-1", "d2")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.FindByRefreshToken(ctx, "token-x", "d1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestFallaInfo_Membership(t *testing.T) {
	fi := &FallaInfo{Code: "FLL-001"}

	fi.AddPendingRequest("u1")
	fi.AddPendingRequest("u1")
	assert.Equal(t, []string{"u1"}, fi.PendingRequests)

	fi.AddFallero("u1")
	fi.AddFallero("u1")
	fi.RemovePendingRequest("u1")
	assert.Empty(t, fi.PendingRequests)
	assert.Equal(t, []string{"u1"}, fi.FalleroIDs)

	fi.RemoveFallero("u1")
	assert.Empty(t, fi.FalleroIDs)
}
