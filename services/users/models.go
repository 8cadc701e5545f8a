package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser    = "USER"
	RoleFallero = "FALLERO"
	RoleFalla   = "FALLA"
)

type User struct {
	ID              string `json:"id" gorm:"primaryKey"`
	Username        string `json:"username"`
	Email           string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string `json:"-" gorm:"not null"`
	FullName        string `json:"fullName"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Role            string `json:"role"`
	Active          bool   `json:"active"`
	ProfileImageURL string `json:"profileImageUrl"`

	// FallaCode is the code of the falla this user belongs to or has
	// requested to join. Empty for users without a falla.
	FallaCode   string `json:"codigoFalla"`
	PendingJoin bool   `json:"pendienteUnion"`

	// FallaInfo is populated only on falla accounts (Role == FALLA).
	FallaInfo FallaInfo `json:"fallaInfo" gorm:"embedded;embeddedPrefix:falla_info_"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (u *User) IsFalla() bool {
	return u.Role == RoleFalla
}

type FallaInfo struct {
	Code            string   `json:"fallaCode"`
	FalleroIDs      []string `json:"falleroIds" gorm:"serializer:json"`
	PendingRequests []string `json:"pendingRequests" gorm:"serializer:json"`
}

func (f *FallaInfo) AddPendingRequest(userID string) {
	for _, id := range f.PendingRequests {
		if id == userID {
			return
		}
	}
	f.PendingRequests = append(f.PendingRequests, userID)
}

func (f *FallaInfo) RemovePendingRequest(userID string) {
	f.PendingRequests = remove(f.PendingRequests, userID)
}

func (f *FallaInfo) AddFallero(userID string) {
	for _, id := range f.FalleroIDs {
		if id == userID {
			return
		}
	}
	f.FalleroIDs = append(f.FalleroIDs, userID)
}

func (f *FallaInfo) RemoveFallero(userID string) {
	f.FalleroIDs = remove(f.FalleroIDs, userID)
}

func remove(ids []string, userID string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// DeviceSession binds a client device to its currently valid refresh
// token. The store guarantees at most one row per (user, device) and no
// duplicate token values. Token is indexed so refresh can locate the
// owning user without scanning the users table.
type DeviceSession struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	UserID     string    `json:"userId" gorm:"index;not null"`
	DeviceID   string    `json:"deviceId" gorm:"not null"`
	Token      string    `json:"-" gorm:"index;not null"`
	DeviceName string    `json:"deviceName"`
	CreatedAt  time.Time `json:"createdAt"`
}
