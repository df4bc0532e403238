package in

import (
	"context"

	"wisechat_server/core/domain"

	"github.com/google/uuid"
)

type ChatService interface {
	CreateChat(ctx context.Context, userID uuid.UUID, req *CreateChatRequest) (*domain.WiseChat, error)
	GetChat(ctx context.Context, userID uuid.UUID, chatID int64) (*domain.WiseChat, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error)
}

type CreateChatRequest struct {
	Name        string `json:"nombre_chat"`
	Description string `json:"descripcion"`
}

type NotificationService interface {
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*domain.Notification, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, id int64) error
}

// Analyzer exposes the local classification without generating a reply.
type Analyzer interface {
	Classify(text string) domain.ClassificationResult
}
