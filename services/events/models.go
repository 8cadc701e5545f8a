package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`

	CreatorID    string `json:"creatorId" gorm:"index"`
	CreatorName  string `json:"creatorName"`
	CreatorImage string `json:"creatorImage"`
	CreatorRole  string `json:"creatorRole"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
