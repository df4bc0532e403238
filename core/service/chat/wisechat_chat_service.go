package chat

import (
	"context"
	"errors"
	"strings"

	"wisechat_server/core/domain"
	"wisechat_server/core/port/in"
	"wisechat_server/pkg/apperr"

	"github.com/google/uuid"
)

const maxNameLength = 120

// Service handles chat lifecycle operations.
type Service struct {
	chatRepo domain.ChatRepository
}

func NewService(chatRepo domain.ChatRepository) *Service {
	return &Service{chatRepo: chatRepo}
}

// CreateChat stores a new chat at the neutral/low aggregate.
func (s *Service) CreateChat(ctx context.Context, userID uuid.UUID, req *in.CreateChatRequest) (*domain.WiseChat, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, apperr.MissingField("nombre_chat")
	}
	name := strings.TrimSpace(req.Name)
	if len([]rune(name)) > maxNameLength {
		return nil, apperr.InvalidInput("nombre_chat", "too long")
	}

	chat := domain.NewChat(userID, name, strings.TrimSpace(req.Description))
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, apperr.DatabaseError("create chat", err)
	}
	return chat, nil
}

// GetChat returns the chat when userID owns it. Chats of other users are
// reported as not found.
func (s *Service) GetChat(ctx context.Context, userID uuid.UUID, chatID int64) (*domain.WiseChat, error) {
	return LoadOwned(ctx, s.chatRepo, userID, chatID)
}

func (s *Service) ListChats(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError("list chats", err)
	}
	return chats, nil
}

// LoadOwned fetches a chat and checks ownership.
func LoadOwned(ctx context.Context, repo domain.ChatRepository, userID uuid.UUID, chatID int64) (*domain.WiseChat, error) {
	chat, err := repo.GetByID(ctx, chatID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("chat")
	}
	if err != nil {
		return nil, apperr.DatabaseError("get chat", err)
	}
	if !chat.OwnedBy(userID) {
		return nil, apperr.NotFound("chat")
	}
	return chat, nil
}
