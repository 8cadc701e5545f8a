package fallachat

import "time"

// FallaChat is the chat-room metadata for a falla, keyed by the falla
// code the mobile client joins with. The message history itself lives
// in the chat server; this record only describes the room.
type FallaChat struct {
	FallaCode   string    `json:"fallaCode" gorm:"primaryKey"`
	CreatorID   string    `json:"creatorId"`
	CreatorName string    `json:"creatorName"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}
