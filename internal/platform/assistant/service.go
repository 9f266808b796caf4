package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// historyWindow caps how many persisted turns accompany each request, so
// long-running conversations cannot grow the prompt without bound.
const historyWindow = 20

const systemPrompt = "You are a helpful assistant for a kidney-care clinic. " +
	"Answer questions about dialysis schedules, diet, medication routines and " +
	"general kidney health in plain language. You are not a doctor: for " +
	"anything urgent or clinical, tell the user to contact clinic staff."

// Completer is the outbound dependency; satisfied by Client.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type Service struct {
	completer Completer
	history   HistoryRepository
}

func NewService(completer Completer, history HistoryRepository) *Service {
	return &Service{completer: completer, history: history}
}

// Chat sends the user's prompt plus their recent history to the completion
// service, persists both sides of the exchange, and returns the reply. The
// user turn is persisted even when the completion call fails, so the
// question is not lost from the record.
func (s *Service) Chat(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	recent, err := s.history.Recent(ctx, userID, historyWindow)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	messages := make([]ChatMessage, 0, len(recent)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt})
	for _, t := range recent {
		messages = append(messages, ChatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: prompt})

	if err := s.history.Append(ctx, &Turn{UserID: userID, Role: "user", Content: prompt}); err != nil {
		return "", fmt.Errorf("record prompt: %w", err)
	}

	reply, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	if err := s.history.Append(ctx, &Turn{UserID: userID, Role: "assistant", Content: reply}); err != nil {
		return "", fmt.Errorf("record reply: %w", err)
	}
	return reply, nil
}

// History returns the user's recent turns, oldest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]Turn, error) {
	return s.history.Recent(ctx, userID, historyWindow)
}
