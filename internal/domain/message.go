package domain

import "time"

// Message is one chat message persisted for a room. SenderID is nil for
// anonymous connections. Rows are append-only.
type Message struct {
	ID        string
	Room      string
	SenderID  *string
	Content   string
	CreatedAt time.Time
}
