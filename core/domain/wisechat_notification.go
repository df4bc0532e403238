package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Notification - 긴급 메시지 알림
// =============================================================================

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

type Notification struct {
	ID        int64              `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	ChatID    int64              `json:"chat_id"`
	MessageID int64              `json:"message_id"`
	Text      string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	CreatedAt time.Time          `json:"creation_date"`
}

// AlertEvent is published when a stored user message triggered an alert.
type AlertEvent struct {
	ChatID       int64        `json:"chat_id"`
	MessageID    int64        `json:"message_id"`
	UserID       uuid.UUID    `json:"user_id"`
	ChatName     string       `json:"chat_name"`
	Content      string       `json:"content"`
	UrgencyLevel UrgencyLevel `json:"nivel_urgencia"`
	UrgencyScore int          `json:"puntaje_urgencia"`
	OccurredAt   time.Time    `json:"occurred_at"`
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	// MarkAsRead flips a notification owned by userID to read.
	MarkAsRead(ctx context.Context, id int64, userID uuid.UUID) error
}
