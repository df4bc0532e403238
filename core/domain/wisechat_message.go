package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Message - 채팅 메시지 (사용자/어시스턴트)
// =============================================================================

// MessageStatusSent is the only delivery state messages are stored in.
const MessageStatusSent = "enviado"

type Message struct {
	ID             int64        `json:"id"`
	ChatID         int64        `json:"chat_id"`
	UserID         uuid.UUID    `json:"user_id"`
	Content        string       `json:"contenido"`
	IsBot          bool         `json:"es_bot"`
	Sentiment      Sentiment    `json:"sentimiento"`
	UrgencyLevel   UrgencyLevel `json:"nivel_urgencia"`
	UrgencyScore   int          `json:"puntaje_urgencia"`
	Emoji          string       `json:"emoji_reaccion,omitempty"`
	AlertTriggered bool         `json:"alerta_disparada"`
	Status         string       `json:"estado"`
	CreatedAt      time.Time    `json:"creation_date"`
}

// NewUserMessage stores the user's text with the terminal classification.
func NewUserMessage(chatID int64, userID uuid.UUID, content string, r ClassificationResult, at time.Time) *Message {
	return &Message{
		ChatID:         chatID,
		UserID:         userID,
		Content:        content,
		Sentiment:      r.Sentiment,
		UrgencyLevel:   r.UrgencyLevel,
		UrgencyScore:   r.UrgencyScore,
		Emoji:          r.Emoji,
		AlertTriggered: r.TriggersAlert(),
		Status:         MessageStatusSent,
		CreatedAt:      at,
	}
}

// NewBotMessage stores the reply at neutral defaults. Its timestamp sits just
// after the user message so ordering by creation time keeps the pair in order
// even when both rows are written concurrently.
func NewBotMessage(chatID int64, userID uuid.UUID, reply string, userAt time.Time) *Message {
	n := NeutralResult()
	return &Message{
		ChatID:       chatID,
		UserID:       userID,
		Content:      reply,
		IsBot:        true,
		Sentiment:    n.Sentiment,
		UrgencyLevel: n.UrgencyLevel,
		UrgencyScore: n.UrgencyScore,
		Status:       MessageStatusSent,
		CreatedAt:    userAt.Add(time.Microsecond),
	}
}

type MessageRepository interface {
	// CreateExchange stores the user message and the assistant reply
	// atomically; on error neither row is kept.
	CreateExchange(ctx context.Context, user, bot *Message) error
	// ListByChat returns messages ordered by creation time, oldest first.
	ListByChat(ctx context.Context, chatID int64) ([]*Message, error)
}
