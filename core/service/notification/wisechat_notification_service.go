package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wisechat_server/core/domain"
	"wisechat_server/pkg/apperr"
	"wisechat_server/pkg/logger"

	"github.com/google/uuid"
)

// excerptRunes bounds the quoted message inside a notification text.
const excerptRunes = 120

// Service turns alert events into stored notifications.
type Service struct {
	notificationRepo domain.NotificationRepository
}

func NewService(notificationRepo domain.NotificationRepository) *Service {
	return &Service{notificationRepo: notificationRepo}
}

// HandleAlert stores an unread notification for the chat owner.
func (s *Service) HandleAlert(ctx context.Context, event *domain.AlertEvent) error {
	if event == nil {
		return apperr.BadRequest("empty alert event")
	}

	n := &domain.Notification{
		UserID:    event.UserID,
		ChatID:    event.ChatID,
		MessageID: event.MessageID,
		Text:      alertText(event),
		Status:    domain.NotificationUnread,
		CreatedAt: event.OccurredAt,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return apperr.DatabaseError("create notification", err)
	}

	logger.WithContext(ctx).WithFields(map[string]any{
		"chat_id":         event.ChatID,
		"notification_id": n.ID,
	}).Info("[NotificationService.HandleAlert] alert notification stored")
	return nil
}

// PublishAlert lets the service stand in for the stream publisher when no
// Redis is configured.
func (s *Service) PublishAlert(ctx context.Context, event *domain.AlertEvent) error {
	return s.HandleAlert(ctx, event)
}

func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*domain.Notification, error) {
	list, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperr.DatabaseError("list notifications", err)
	}
	return list, nil
}

func (s *Service) MarkAsRead(ctx context.Context, userID uuid.UUID, id int64) error {
	err := s.notificationRepo.MarkAsRead(ctx, id, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound("notification")
	}
	if err != nil {
		return apperr.DatabaseError("mark notification read", err)
	}
	return nil
}

func alertText(e *domain.AlertEvent) string {
	name := strings.TrimSpace(e.ChatName)
	if name == "" {
		name = fmt.Sprintf("#%d", e.ChatID)
	}
	return fmt.Sprintf("Alerta de urgencia (%s) en el chat %q: %s", e.UrgencyLevel, name, excerpt(e.Content, excerptRunes))
}

func excerpt(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max]) + "..."
}
