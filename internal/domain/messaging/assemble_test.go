package messaging

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	userA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	userB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	userC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	userD = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func msg(sender, recipient uuid.UUID, content string, at time.Time) Message {
	return Message{
		ID:          uuid.New(),
		SenderID:    sender,
		RecipientID: recipient,
		Content:     content,
		CreatedAt:   at,
	}
}

func findConversation(t *testing.T, convs []Conversation, counterpart uuid.UUID) Conversation {
	t.Helper()
	for _, c := range convs {
		if c.CounterpartID == counterpart {
			return c
		}
	}
	t.Fatalf("no conversation for counterpart %s", counterpart)
	return Conversation{}
}

func TestAssembleTwoWayExchange(t *testing.T) {
	t1 := baseTime
	t2 := baseTime.Add(time.Minute)
	msgs := []Message{
		msg(userA, userB, "hello", t1),
		msg(userB, userA, "hi back", t2),
	}

	convs := AssembleConversations(msgs, userA, "doctor", nil, baseTime)

	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	c := convs[0]
	if c.CounterpartID != userB {
		t.Errorf("counterpart = %s, want %s", c.CounterpartID, userB)
	}
	if len(c.Messages) != 2 {
		t.Errorf("message count = %d, want 2", len(c.Messages))
	}
	if !c.LastMessageAt.Equal(t2) {
		t.Errorf("last message at = %v, want %v", c.LastMessageAt, t2)
	}
	if c.LastMessage != "hi back" {
		t.Errorf("last message = %q, want %q", c.LastMessage, "hi back")
	}
	if c.Role != RoleRecipient {
		t.Errorf("role = %q, want recipient (B sent the last message)", c.Role)
	}
}

func TestAssembleRoleFollowsLastMessage(t *testing.T) {
	msgs := []Message{
		msg(userB, userA, "question", baseTime),
		msg(userA, userB, "answer", baseTime.Add(time.Minute)),
	}
	convs := AssembleConversations(msgs, userA, "doctor", nil, baseTime)
	if got := convs[0].Role; got != RoleSender {
		t.Errorf("role = %q, want sender (A sent the last message)", got)
	}
}

func TestAssembleTieBreakFirstInInput(t *testing.T) {
	// Two messages at the identical instant: the earlier one in input
	// order stays the preview.
	msgs := []Message{
		msg(userA, userB, "first", baseTime),
		msg(userB, userA, "second", baseTime),
	}
	convs := AssembleConversations(msgs, userA, "doctor", nil, baseTime)
	c := findConversation(t, convs, userB)
	if c.LastMessage != "first" {
		t.Errorf("last message = %q, want %q on timestamp tie", c.LastMessage, "first")
	}
	if c.Role != RoleSender {
		t.Errorf("role = %q, want sender", c.Role)
	}
}

func TestAssembleEmptyConversations(t *testing.T) {
	users := []Counterpart{
		{ID: userB, Name: "Dr X", Role: "doctor"},
		{ID: userC, Name: "Staff Y", Role: "staff"},
		{ID: userA, Name: "Me", Role: "patient"},
	}

	convs := AssembleConversations(nil, userA, "patient", users, baseTime)

	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	for _, c := range convs {
		if c.CounterpartID == userA {
			t.Error("current user must never be its own counterpart")
		}
		if len(c.Messages) != 0 {
			t.Errorf("counterpart %s: expected no messages", c.CounterpartID)
		}
		if c.LastMessage != "" {
			t.Errorf("counterpart %s: expected empty preview", c.CounterpartID)
		}
		if !c.LastMessageAt.Equal(baseTime) {
			t.Errorf("counterpart %s: placeholder timestamp = %v", c.CounterpartID, c.LastMessageAt)
		}
	}
}

func TestAssemblePatientOnlySeesClinicians(t *testing.T) {
	users := []Counterpart{
		{ID: userB, Name: "Dr X", Role: "doctor"},
		{ID: userC, Name: "Other Patient", Role: "patient"},
	}
	convs := AssembleConversations(nil, userA, "patient", users, baseTime)
	if len(convs) != 1 || convs[0].CounterpartID != userB {
		t.Errorf("patient should only see the doctor, got %+v", convs)
	}

	// Clinicians see patients too.
	convs = AssembleConversations(nil, userB, "doctor", []Counterpart{
		{ID: userA, Name: "Patient A", Role: "patient"},
		{ID: userC, Name: "Other Patient", Role: "patient"},
	}, baseTime)
	if len(convs) != 2 {
		t.Errorf("doctor should see both patients, got %d", len(convs))
	}
}

func TestAssembleNoDuplicateCounterparts(t *testing.T) {
	msgs := []Message{
		msg(userA, userB, "one", baseTime),
		msg(userB, userA, "two", baseTime.Add(time.Second)),
		msg(userA, userB, "three", baseTime.Add(2*time.Second)),
	}
	// userB also appears in the eligible set; it must not produce a
	// second, empty conversation.
	users := []Counterpart{{ID: userB, Name: "Dr X", Role: "doctor"}}

	convs := AssembleConversations(msgs, userA, "patient", users, baseTime)
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}
	if len(convs[0].Messages) != 3 {
		t.Errorf("message count = %d, want 3", len(convs[0].Messages))
	}
}

func TestAssembleMixedGroupsAndOrdering(t *testing.T) {
	msgs := []Message{
		msg(userB, userA, "old thread", baseTime),
		msg(userA, userC, "new thread", baseTime.Add(time.Hour)),
	}
	users := []Counterpart{
		{ID: userB, Name: "B", Role: "doctor"},
		{ID: userC, Name: "C", Role: "staff"},
		{ID: userD, Name: "D", Role: "doctor"},
	}
	now := baseTime.Add(2 * time.Hour)

	convs := AssembleConversations(msgs, userA, "patient", users, now)

	if len(convs) != 3 {
		t.Fatalf("got %d conversations, want 3", len(convs))
	}
	// The empty conversation carries now as its placeholder, so it sorts
	// first; then C's thread, then B's.
	want := []uuid.UUID{userD, userC, userB}
	for i, id := range want {
		if convs[i].CounterpartID != id {
			t.Errorf("position %d: counterpart = %s, want %s", i, convs[i].CounterpartID, id)
		}
	}
}

func TestAssembleOrderingTieBreakByCounterpartID(t *testing.T) {
	msgs := []Message{
		msg(userC, userA, "from c", baseTime),
		msg(userB, userA, "from b", baseTime),
	}
	convs := AssembleConversations(msgs, userA, "doctor", nil, baseTime)
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	// Equal timestamps: counterpart ID ascending.
	if convs[0].CounterpartID != userB || convs[1].CounterpartID != userC {
		t.Errorf("order = %s, %s; want %s, %s",
			convs[0].CounterpartID, convs[1].CounterpartID, userB, userC)
	}
}

func TestAssembleIdempotent(t *testing.T) {
	msgs := []Message{
		msg(userA, userB, "one", baseTime),
		msg(userC, userA, "two", baseTime.Add(time.Second)),
		msg(userB, userA, "three", baseTime.Add(2*time.Second)),
	}
	users := []Counterpart{{ID: userD, Name: "D", Role: "staff"}}

	type key struct {
		counterpart uuid.UUID
		count       int
		last        string
	}
	summarize := func(convs []Conversation) map[key]bool {
		out := make(map[key]bool)
		for _, c := range convs {
			out[key{c.CounterpartID, len(c.Messages), c.LastMessage}] = true
		}
		return out
	}

	first := summarize(AssembleConversations(msgs, userA, "doctor", users, baseTime))
	second := summarize(AssembleConversations(msgs, userA, "doctor", users, baseTime))

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %v vs %v", first, second)
	}
	for k := range first {
		if !second[k] {
			t.Errorf("second run missing %+v", k)
		}
	}
}

func TestAssembleEmptyInput(t *testing.T) {
	convs := AssembleConversations(nil, userA, "doctor", nil, baseTime)
	if len(convs) != 0 {
		t.Errorf("got %d conversations, want 0", len(convs))
	}
}
