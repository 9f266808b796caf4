package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/renalcare/renalcare/internal/domain/identity"
)

type mockMessageRepo struct {
	messages []Message
	clock    time.Time
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	m.clock = m.clock.Add(time.Second)
	msg.CreatedAt = m.clock
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageRepo) ListInvolving(_ context.Context, userID uuid.UUID) ([]Message, error) {
	var out []Message
	for _, msg := range m.messages {
		if msg.SenderID == userID || msg.RecipientID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type mockDirectory struct {
	users map[uuid.UUID]*identity.User
}

func (m *mockDirectory) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockDirectory) ListUsersByRoles(_ context.Context, roles ...identity.Role) ([]*identity.User, error) {
	var out []*identity.User
	for _, u := range m.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func newMessagingFixture() (*Service, *mockMessageRepo, *mockDirectory) {
	repo := &mockMessageRepo{clock: baseTime}
	dir := &mockDirectory{users: map[uuid.UUID]*identity.User{
		userA: {ID: userA, FullName: "Rohan Mehta", Role: identity.RolePatient},
		userB: {ID: userB, FullName: "Dr Patel", Role: identity.RoleDoctor},
		userC: {ID: userC, FullName: "Amara Okafor", Role: identity.RoleStaff},
		userD: {ID: userD, FullName: "Other Patient", Role: identity.RolePatient},
	}}
	svc := NewService(repo, dir)
	svc.now = func() time.Time { return baseTime }
	return svc, repo, dir
}

func TestSend(t *testing.T) {
	svc, repo, _ := newMessagingFixture()
	ctx := context.Background()

	m, err := svc.Send(ctx, userA, "patient", userB, "hello doctor")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.SenderName != "Rohan Mehta" || m.RecipientName != "Dr Patel" {
		t.Errorf("names = %q, %q", m.SenderName, m.RecipientName)
	}
	if m.ID == uuid.Nil || m.CreatedAt.IsZero() {
		t.Error("expected persisted id and timestamp")
	}
	if len(repo.messages) != 1 {
		t.Errorf("stored %d messages, want 1", len(repo.messages))
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, _ := newMessagingFixture()
	ctx := context.Background()

	cases := []struct {
		name      string
		sender    uuid.UUID
		role      string
		recipient uuid.UUID
		content   string
		want      error
	}{
		{"empty content", userA, "patient", userB, "   ", ErrEmptyContent},
		{"self message", userA, "patient", userA, "hi", ErrSelfMessage},
		{"unknown recipient", userA, "patient", uuid.New(), "hi", ErrRecipientNotFound},
		{"patient to patient", userA, "patient", userD, "hi", ErrRecipientNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.sender, tc.role, tc.recipient, tc.content)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	t.Run("doctor may message a patient", func(t *testing.T) {
		if _, err := svc.Send(ctx, userB, "doctor", userA, "checkup reminder"); err != nil {
			t.Errorf("Send: %v", err)
		}
	})
}

func TestConversations(t *testing.T) {
	svc, _, _ := newMessagingFixture()
	ctx := context.Background()

	if _, err := svc.Send(ctx, userA, "patient", userB, "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(ctx, userB, "doctor", userA, "hello back"); err != nil {
		t.Fatal(err)
	}

	t.Run("patient view", func(t *testing.T) {
		convs, err := svc.Conversations(ctx, userA, "patient")
		if err != nil {
			t.Fatalf("Conversations: %v", err)
		}
		// Doctor thread plus an empty staff conversation; the other
		// patient is not visible.
		if len(convs) != 2 {
			t.Fatalf("got %d conversations, want 2", len(convs))
		}
		doctor := findConversation(t, convs, userB)
		if len(doctor.Messages) != 2 || doctor.LastMessage != "hello back" {
			t.Errorf("doctor thread = %+v", doctor)
		}
		staff := findConversation(t, convs, userC)
		if len(staff.Messages) != 0 {
			t.Errorf("staff conversation should be empty")
		}
	})

	t.Run("doctor view includes patients", func(t *testing.T) {
		convs, err := svc.Conversations(ctx, userB, "doctor")
		if err != nil {
			t.Fatalf("Conversations: %v", err)
		}
		// Thread with A plus empty conversations for staff C and
		// patient D.
		if len(convs) != 3 {
			t.Fatalf("got %d conversations, want 3", len(convs))
		}
		if c := findConversation(t, convs, userD); len(c.Messages) != 0 {
			t.Errorf("expected empty conversation with the other patient")
		}
	})
}
