package in

import (
	"context"

	"wisechat_server/core/domain"

	"github.com/google/uuid"
)

type MessageService interface {
	CreateMessage(ctx context.Context, userID uuid.UUID, chatID int64, content string) (*CreateMessageResult, error)
	ListMessages(ctx context.Context, userID uuid.UUID, chatID int64) ([]*domain.Message, error)
	BotReplyStatus(ctx context.Context, userID uuid.UUID, chatID int64) (*BotReplyStatus, error)
}

type CreateMessageResult struct {
	OK          bool             `json:"ok"`
	UserMessage *domain.Message  `json:"user_message"`
	BotMessage  *domain.Message  `json:"bot_message"`
	Chat        *domain.WiseChat `json:"chat"`
	// Source is "enhanced" or "template".
	Source string `json:"source"`
}

type BotReplyStatus struct {
	HasReplies    bool            `json:"tiene_respuestas"`
	TotalMessages int             `json:"total_mensajes"`
	BotMessages   int             `json:"mensajes_bot"`
	LastReply     *domain.Message `json:"ultima_respuesta,omitempty"`
}
