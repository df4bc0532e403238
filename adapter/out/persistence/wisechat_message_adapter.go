package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wisechat_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MessageAdapter implements domain.MessageRepository using PostgreSQL.
type MessageAdapter struct {
	db *sqlx.DB
}

func NewMessageAdapter(db *sqlx.DB) *MessageAdapter {
	return &MessageAdapter{db: db}
}

type messageRow struct {
	ID             int64          `db:"id"`
	ChatID         int64          `db:"wise_chat_id"`
	UserID         uuid.UUID      `db:"user_id"`
	Content        string         `db:"contenido"`
	IsBot          bool           `db:"es_bot"`
	Sentiment      string         `db:"sentimiento"`
	UrgencyLevel   string         `db:"nivel_urgencia"`
	UrgencyScore   int            `db:"puntaje_urgencia"`
	Emoji          sql.NullString `db:"emoji_reaccion"`
	AlertTriggered bool           `db:"alerta_disparada"`
	Status         string         `db:"estado"`
	CreatedAt      time.Time      `db:"creation_date"`
}

func (r *messageRow) toDomain() *domain.Message {
	m := &domain.Message{
		ID:             r.ID,
		ChatID:         r.ChatID,
		UserID:         r.UserID,
		Content:        r.Content,
		IsBot:          r.IsBot,
		Sentiment:      domain.Sentiment(r.Sentiment),
		UrgencyLevel:   domain.UrgencyLevel(r.UrgencyLevel),
		UrgencyScore:   r.UrgencyScore,
		AlertTriggered: r.AlertTriggered,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
	}
	if r.Emoji.Valid {
		m.Emoji = r.Emoji.String
	}
	return m
}

const insertMessageQuery = `
	INSERT INTO messages (wise_chat_id, user_id, contenido, es_bot, sentimiento, nivel_urgencia,
		puntaje_urgencia, emoji_reaccion, alerta_disparada, estado, creation_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id
`

// CreateExchange inserts the user message and the assistant reply in one
// transaction.
func (a *MessageAdapter) CreateExchange(ctx context.Context, user, bot *domain.Message) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertMessage(ctx, tx, user); err != nil {
		return fmt.Errorf("failed to insert user message: %w", err)
	}
	if err := insertMessage(ctx, tx, bot); err != nil {
		return fmt.Errorf("failed to insert bot message: %w", err)
	}
	return translate(tx.Commit())
}

func insertMessage(ctx context.Context, q sqlx.QueryerContext, msg *domain.Message) error {
	var emoji sql.NullString
	if msg.Emoji != "" {
		emoji = sql.NullString{String: msg.Emoji, Valid: true}
	}
	status := msg.Status
	if status == "" {
		status = domain.MessageStatusSent
	}

	err := q.QueryRowxContext(ctx, insertMessageQuery,
		msg.ChatID,
		msg.UserID,
		msg.Content,
		msg.IsBot,
		string(msg.Sentiment),
		string(msg.UrgencyLevel),
		msg.UrgencyScore,
		emoji,
		msg.AlertTriggered,
		status,
		msg.CreatedAt,
	).Scan(&msg.ID)
	return translate(err)
}

func (a *MessageAdapter) ListByChat(ctx context.Context, chatID int64) ([]*domain.Message, error) {
	query := `
		SELECT id, wise_chat_id, user_id, contenido, es_bot, sentimiento, nivel_urgencia,
			puntaje_urgencia, emoji_reaccion, alerta_disparada, estado, creation_date
		FROM messages
		WHERE wise_chat_id = $1
		ORDER BY creation_date ASC, id ASC
	`
	var rows []messageRow
	if err := a.db.SelectContext(ctx, &rows, query, chatID); err != nil {
		return nil, translate(err)
	}

	messages := make([]*domain.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].toDomain()
	}
	return messages, nil
}
