package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/renalcare/renalcare/internal/platform/auth"
)

func messagingRequest(method, target, body string, p *auth.Principal) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req.WithContext(auth.ContextWithPrincipal(context.Background(), p))
}

func TestSendHandler(t *testing.T) {
	e := echo.New()
	svc, _, _ := newMessagingFixture()
	h := NewHandler(svc)
	patient := &auth.Principal{UserID: userA.String(), Username: "rohan", Role: "patient"}

	send := func(p *auth.Principal, body string) (int, string) {
		rec := httptest.NewRecorder()
		c := e.NewContext(messagingRequest(http.MethodPost, "/messages", body, p), rec)
		if err := h.Send(c); err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				return he.Code, ""
			}
			t.Fatalf("Send handler: %v", err)
		}
		return rec.Code, rec.Body.String()
	}

	t.Run("created", func(t *testing.T) {
		code, body := send(patient, `{"to":"`+userB.String()+`","content":"hello"}`)
		if code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", code)
		}
		var m Message
		if err := json.Unmarshal([]byte(body), &m); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if m.Content != "hello" || m.RecipientName != "Dr Patel" {
			t.Errorf("message = %+v", m)
		}
	})

	t.Run("unknown recipient is 404", func(t *testing.T) {
		code, _ := send(patient, `{"to":"`+uuid.NewString()+`","content":"hello"}`)
		if code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", code)
		}
	})

	t.Run("ineligible recipient is 403", func(t *testing.T) {
		code, _ := send(patient, `{"to":"`+userD.String()+`","content":"hello"}`)
		if code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", code)
		}
	})

	t.Run("malformed recipient id is 400", func(t *testing.T) {
		code, _ := send(patient, `{"to":"not-a-uuid","content":"hello"}`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})

	t.Run("empty content is 400", func(t *testing.T) {
		code, _ := send(patient, `{"to":"`+userB.String()+`","content":""}`)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})
}

func TestConversationsHandler(t *testing.T) {
	e := echo.New()
	svc, _, _ := newMessagingFixture()
	h := NewHandler(svc)

	if _, err := svc.Send(context.Background(), userA, "patient", userB, "hello"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	p := &auth.Principal{UserID: userA.String(), Username: "rohan", Role: "patient"}
	c := e.NewContext(messagingRequest(http.MethodGet, "/messages", "", p), rec)
	if err := h.Conversations(c); err != nil {
		t.Fatalf("Conversations handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var convs []Conversation
	if err := json.Unmarshal(rec.Body.Bytes(), &convs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
}
