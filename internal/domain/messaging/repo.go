package messaging

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListInvolving returns every message where the user is sender or
	// recipient, enriched with both display names, oldest first.
	ListInvolving(ctx context.Context, userID uuid.UUID) ([]Message, error)
}
