package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/renalcare/renalcare/internal/domain/identity"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrRecipientNotAllowed means the sender's role may not message the
	// recipient: patients can only reach clinic personnel.
	ErrRecipientNotAllowed = errors.New("recipient not allowed")
	ErrEmptyContent        = errors.New("message content is required")
	ErrSelfMessage         = errors.New("cannot message yourself")
)

// UserDirectory is the slice of the identity service messaging depends on.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
	ListUsersByRoles(ctx context.Context, roles ...identity.Role) ([]*identity.User, error)
}

type Service struct {
	repo  MessageRepository
	users UserDirectory
	now   func() time.Time
}

func NewService(repo MessageRepository, users UserDirectory) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// Send validates the recipient and persists a new message. senderID and
// senderRole come from the authenticated session, never from the payload.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, senderRole string, recipientID uuid.UUID, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if recipientID == senderID {
		return nil, ErrSelfMessage
	}

	recipient, err := s.users.GetUser(ctx, recipientID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if senderRole == string(identity.RolePatient) && !recipient.Role.Clinician() {
		return nil, ErrRecipientNotAllowed
	}

	sender, err := s.users.GetUser(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("lookup sender: %w", err)
	}

	m := &Message{
		SenderID:      senderID,
		RecipientID:   recipientID,
		SenderName:    sender.FullName,
		RecipientName: recipient.FullName,
		Content:       content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// Conversations returns the caller's messages grouped per counterpart,
// including empty conversations for every counterpart the caller could
// message but has not yet.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID, role string) ([]Conversation, error) {
	msgs, err := s.repo.ListInvolving(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	roles := []identity.Role{identity.RoleDoctor, identity.RoleStaff}
	if role != string(identity.RolePatient) {
		roles = append(roles, identity.RolePatient)
	}
	accounts, err := s.users.ListUsersByRoles(ctx, roles...)
	if err != nil {
		return nil, fmt.Errorf("list counterparts: %w", err)
	}

	counterparts := make([]Counterpart, 0, len(accounts))
	for _, u := range accounts {
		counterparts = append(counterparts, Counterpart{
			ID:   u.ID,
			Name: u.FullName,
			Role: string(u.Role),
		})
	}

	return AssembleConversations(msgs, userID, role, counterparts, s.now()), nil
}
