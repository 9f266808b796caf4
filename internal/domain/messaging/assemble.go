package messaging

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	RoleSender    = "sender"
	RoleRecipient = "recipient"
)

// AssembleConversations groups the given messages into one conversation
// per counterpart and unions in every eligible counterpart without message
// history as an empty conversation. msgs must be the messages involving
// currentUserID; users is the full set of candidate counterparts. Patients
// only see doctor and staff counterparts; other roles see everyone. The
// current user is never a counterpart of itself.
//
// The group's last message is the one with the greatest CreatedAt; on equal
// timestamps the earlier message in input order wins, so the result is
// deterministic for a fixed input ordering. Empty conversations carry now
// as a placeholder timestamp. Output is sorted by last-message timestamp
// descending, then counterpart ID ascending.
//
// The function is pure: it never fails and never touches storage.
func AssembleConversations(msgs []Message, currentUserID uuid.UUID, currentRole string, users []Counterpart, now time.Time) []Conversation {
	groups := make(map[uuid.UUID]*Conversation)
	order := make([]uuid.UUID, 0, len(msgs))

	for _, m := range msgs {
		counterpartID := m.RecipientID
		counterpartName := m.RecipientName
		if m.SenderID != currentUserID {
			counterpartID = m.SenderID
			counterpartName = m.SenderName
		}
		if counterpartID == currentUserID {
			// Self-addressed rows never form a conversation.
			continue
		}

		conv, ok := groups[counterpartID]
		if !ok {
			conv = &Conversation{
				CounterpartID:   counterpartID,
				CounterpartName: counterpartName,
			}
			groups[counterpartID] = conv
			order = append(order, counterpartID)
		}
		conv.Messages = append(conv.Messages, m)

		// Strictly greater, so the first message at the maximum
		// timestamp stays the preview.
		if len(conv.Messages) == 1 || m.CreatedAt.After(conv.LastMessageAt) {
			conv.LastMessage = m.Content
			conv.LastMessageAt = m.CreatedAt
			conv.Role = RoleRecipient
			if m.SenderID == currentUserID {
				conv.Role = RoleSender
			}
		}
	}

	out := make([]Conversation, 0, len(order)+len(users))
	for _, id := range order {
		out = append(out, *groups[id])
	}

	for _, u := range users {
		if u.ID == currentUserID {
			continue
		}
		if currentRole == "patient" && u.Role != "doctor" && u.Role != "staff" {
			continue
		}
		if _, ok := groups[u.ID]; ok {
			continue
		}
		out = append(out, Conversation{
			CounterpartID:   u.ID,
			CounterpartName: u.Name,
			Role:            RoleSender,
			LastMessageAt:   now,
			Messages:        []Message{},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastMessageAt.Equal(out[j].LastMessageAt) {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		}
		return out[i].CounterpartID.String() < out[j].CounterpartID.String()
	})

	return out
}
