package persistence

import (
	"context"
	"time"

	"wisechat_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// NotificationAdapter implements domain.NotificationRepository using PostgreSQL.
type NotificationAdapter struct {
	db *sqlx.DB
}

// NewNotificationAdapter creates a new notification adapter.
func NewNotificationAdapter(db *sqlx.DB) *NotificationAdapter {
	return &NotificationAdapter{db: db}
}

// notificationRow represents the database row.
type notificationRow struct {
	ID        int64     `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ChatID    int64     `db:"wise_chat_id"`
	MessageID int64     `db:"message_id"`
	Text      string    `db:"message"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"creation_date"`
}

func (r *notificationRow) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		ChatID:    r.ChatID,
		MessageID: r.MessageID,
		Text:      r.Text,
		Status:    domain.NotificationStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

// Create stores a notification. A zero CreatedAt uses the database clock.
func (a *NotificationAdapter) Create(ctx context.Context, n *domain.Notification) error {
	status := n.Status
	if status == "" {
		status = domain.NotificationUnread
	}

	var createdAt *time.Time
	if !n.CreatedAt.IsZero() {
		createdAt = &n.CreatedAt
	}

	query := `
		INSERT INTO notifications (user_id, wise_chat_id, message_id, message, status, creation_date)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, creation_date
	`
	err := a.db.QueryRowxContext(ctx, query,
		n.UserID,
		n.ChatID,
		n.MessageID,
		n.Text,
		string(status),
		createdAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return translate(err)
	}
	n.Status = status
	return nil
}

// ListByUser returns the newest notifications first.
func (a *NotificationAdapter) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, wise_chat_id, message_id, message, status, creation_date
		FROM notifications
		WHERE user_id = $1 AND ($2::boolean = false OR status = 'unread')
		ORDER BY creation_date DESC
		LIMIT 100
	`
	var rows []notificationRow
	if err := a.db.SelectContext(ctx, &rows, query, userID, unreadOnly); err != nil {
		return nil, translate(err)
	}

	notifications := make([]*domain.Notification, len(rows))
	for i := range rows {
		notifications[i] = rows[i].toDomain()
	}
	return notifications, nil
}

// MarkAsRead marks a notification as read.
func (a *NotificationAdapter) MarkAsRead(ctx context.Context, id int64, userID uuid.UUID) error {
	res, err := a.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'read' WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
