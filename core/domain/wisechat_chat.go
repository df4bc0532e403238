package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// WiseChat - 대화 및 집계 감정 상태
// =============================================================================

// WiseChat is a conversation owned by one user. SentimentGeneral and
// UrgencyGeneral are overwritten by every new message.
type WiseChat struct {
	ID               int64        `json:"id"`
	UserID           uuid.UUID    `json:"user_id"`
	Name             string       `json:"nombre_chat"`
	Description      string       `json:"descripcion,omitempty"`
	SentimentGeneral Sentiment    `json:"sentimiento_general"`
	UrgencyGeneral   UrgencyLevel `json:"nivel_urgencia_general"`
	CreatedAt        time.Time    `json:"creation_date"`
}

// NewChat builds a chat at the neutral/low starting aggregate.
func NewChat(userID uuid.UUID, name, description string) *WiseChat {
	return &WiseChat{
		UserID:           userID,
		Name:             name,
		Description:      description,
		SentimentGeneral: SentimentNeutral,
		UrgencyGeneral:   UrgencyLow,
		CreatedAt:        time.Now().UTC(),
	}
}

// Aggregate returns the chat's current mood as a result without reply.
func (c *WiseChat) Aggregate() ClassificationResult {
	return ClassificationResult{
		Sentiment:    c.SentimentGeneral,
		UrgencyLevel: c.UrgencyGeneral,
	}
}

// ApplyAggregate overwrites the aggregate with r.
func (c *WiseChat) ApplyAggregate(r ClassificationResult) {
	c.SentimentGeneral = r.Sentiment
	c.UrgencyGeneral = r.UrgencyLevel
}

// OwnedBy reports whether userID owns the chat.
func (c *WiseChat) OwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}

type ChatRepository interface {
	Create(ctx context.Context, chat *WiseChat) error
	GetByID(ctx context.Context, id int64) (*WiseChat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*WiseChat, error)
	UpdateAggregate(ctx context.Context, id int64, sentiment Sentiment, urgency UrgencyLevel) error
}
