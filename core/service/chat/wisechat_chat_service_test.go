package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wisechat_server/core/domain"
	"wisechat_server/core/port/in"
	"wisechat_server/pkg/apperr"

	"github.com/google/uuid"
)

type memoryChats struct {
	chats  []*domain.WiseChat
	getErr error
}

func (m *memoryChats) Create(ctx context.Context, c *domain.WiseChat) error {
	c.ID = int64(len(m.chats) + 1)
	m.chats = append(m.chats, c)
	return nil
}

func (m *memoryChats) GetByID(ctx context.Context, id int64) (*domain.WiseChat, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, c := range m.chats {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryChats) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error) {
	var out []*domain.WiseChat
	for _, c := range m.chats {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryChats) UpdateAggregate(ctx context.Context, id int64, s domain.Sentiment, u domain.UrgencyLevel) error {
	return nil
}

func TestCreateChat(t *testing.T) {
	repo := &memoryChats{}
	svc := NewService(repo)
	owner := uuid.New()

	c, err := svc.CreateChat(context.Background(), owner, &in.CreateChatRequest{Name: "  Mi diario ", Description: "notas"})
	if err != nil {
		t.Fatalf("CreateChat() error = %v", err)
	}
	if c.ID == 0 || c.Name != "Mi diario" || c.UserID != owner {
		t.Errorf("chat = %+v", c)
	}
	if c.SentimentGeneral != domain.SentimentNeutral || c.UrgencyGeneral != domain.UrgencyLow {
		t.Errorf("initial aggregate = %s/%s, want neutro/baja", c.SentimentGeneral, c.UrgencyGeneral)
	}
}

func TestCreateChatValidation(t *testing.T) {
	svc := NewService(&memoryChats{})

	tests := []struct {
		name string
		req  *in.CreateChatRequest
		code string
	}{
		{"nil request", nil, apperr.CodeMissingField},
		{"blank name", &in.CreateChatRequest{Name: " "}, apperr.CodeMissingField},
		{"long name", &in.CreateChatRequest{Name: strings.Repeat("a", maxNameLength+1)}, apperr.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateChat(context.Background(), uuid.New(), tt.req); !apperr.HasCode(err, tt.code) {
				t.Errorf("CreateChat() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGetChatOwnership(t *testing.T) {
	repo := &memoryChats{}
	svc := NewService(repo)
	owner := uuid.New()
	c, _ := svc.CreateChat(context.Background(), owner, &in.CreateChatRequest{Name: "chat"})

	if _, err := svc.GetChat(context.Background(), owner, c.ID); err != nil {
		t.Errorf("GetChat() by owner error = %v", err)
	}
	if _, err := svc.GetChat(context.Background(), uuid.New(), c.ID); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("GetChat() by stranger error = %v, want NOT_FOUND", err)
	}
	if _, err := svc.GetChat(context.Background(), owner, 42); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("GetChat() unknown error = %v, want NOT_FOUND", err)
	}

	repo.getErr = errors.New("db down")
	if _, err := svc.GetChat(context.Background(), owner, c.ID); !apperr.HasCode(err, apperr.CodeDatabaseError) {
		t.Errorf("GetChat() db failure error = %v, want DATABASE_ERROR", err)
	}
}

func TestListChats(t *testing.T) {
	repo := &memoryChats{}
	svc := NewService(repo)
	a, b := uuid.New(), uuid.New()
	_, _ = svc.CreateChat(context.Background(), a, &in.CreateChatRequest{Name: "uno"})
	_, _ = svc.CreateChat(context.Background(), b, &in.CreateChatRequest{Name: "dos"})
	_, _ = svc.CreateChat(context.Background(), a, &in.CreateChatRequest{Name: "tres"})

	chats, err := svc.ListChats(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 {
		t.Errorf("len(chats) = %d, want 2", len(chats))
	}
}
