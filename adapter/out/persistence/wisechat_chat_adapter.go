package persistence

import (
	"context"
	"database/sql"
	"time"

	"wisechat_server/core/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ChatAdapter implements domain.ChatRepository using PostgreSQL.
type ChatAdapter struct {
	db *sqlx.DB
}

func NewChatAdapter(db *sqlx.DB) *ChatAdapter {
	return &ChatAdapter{db: db}
}

type chatRow struct {
	ID               int64          `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	Name             string         `db:"nombre_chat"`
	Description      sql.NullString `db:"descripcion"`
	SentimentGeneral string         `db:"sentimiento_general"`
	UrgencyGeneral   string         `db:"nivel_urgencia_general"`
	CreatedAt        time.Time      `db:"creation_date"`
}

func (r *chatRow) toDomain() *domain.WiseChat {
	c := &domain.WiseChat{
		ID:               r.ID,
		UserID:           r.UserID,
		Name:             r.Name,
		SentimentGeneral: domain.Sentiment(r.SentimentGeneral),
		UrgencyGeneral:   domain.UrgencyLevel(r.UrgencyGeneral),
		CreatedAt:        r.CreatedAt,
	}
	if r.Description.Valid {
		c.Description = r.Description.String
	}
	return c
}

const chatColumns = `id, user_id, nombre_chat, descripcion, sentimiento_general, nivel_urgencia_general, creation_date`

func (a *ChatAdapter) Create(ctx context.Context, chat *domain.WiseChat) error {
	var description sql.NullString
	if chat.Description != "" {
		description = sql.NullString{String: chat.Description, Valid: true}
	}

	query := `
		INSERT INTO wise_chats (user_id, nombre_chat, descripcion, sentimiento_general, nivel_urgencia_general, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, creation_date
	`
	err := a.db.QueryRowxContext(ctx, query,
		chat.UserID,
		chat.Name,
		description,
		string(chat.SentimentGeneral),
		string(chat.UrgencyGeneral),
		chat.CreatedAt,
	).Scan(&chat.ID, &chat.CreatedAt)
	return translate(err)
}

func (a *ChatAdapter) GetByID(ctx context.Context, id int64) (*domain.WiseChat, error) {
	var row chatRow
	if err := a.db.GetContext(ctx, &row, `SELECT `+chatColumns+` FROM wise_chats WHERE id = $1`, id); err != nil {
		return nil, translate(err)
	}
	return row.toDomain(), nil
}

func (a *ChatAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WiseChat, error) {
	var rows []chatRow
	query := `SELECT ` + chatColumns + ` FROM wise_chats WHERE user_id = $1 ORDER BY creation_date DESC`
	if err := a.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, translate(err)
	}

	chats := make([]*domain.WiseChat, len(rows))
	for i := range rows {
		chats[i] = rows[i].toDomain()
	}
	return chats, nil
}

// UpdateAggregate overwrites the aggregate in a single statement.
func (a *ChatAdapter) UpdateAggregate(ctx context.Context, id int64, sentiment domain.Sentiment, urgency domain.UrgencyLevel) error {
	res, err := a.db.ExecContext(ctx,
		`UPDATE wise_chats SET sentimiento_general = $2, nivel_urgencia_general = $3 WHERE id = $1`,
		id, string(sentiment), string(urgency))
	if err != nil {
		return translate(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
