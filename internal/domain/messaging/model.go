package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two accounts. Messages are immutable
// once created.
type Message struct {
	ID            uuid.UUID `db:"id" json:"id"`
	SenderID      uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID   uuid.UUID `db:"recipient_id" json:"recipient_id"`
	SenderName    string    `db:"sender_name" json:"sender_name"`
	RecipientName string    `db:"recipient_name" json:"recipient_name"`
	Content       string    `db:"content" json:"content"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Counterpart is the projection of an account that conversation assembly
// needs: identity, display name, and role.
type Counterpart struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

// Conversation is derived from messages on every read and never persisted.
// There is exactly one conversation per counterpart: either the messages
// exchanged with that counterpart, or an empty placeholder when the
// counterpart is messageable but no message exists yet.
type Conversation struct {
	CounterpartID   uuid.UUID `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name"`
	// Role is the current user's side of the conversation's most recent
	// message: "sender" or "recipient". Empty conversations carry
	// "sender" by convention; the value has no meaning there.
	Role          string    `json:"role"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	Messages      []Message `json:"messages"`
}
