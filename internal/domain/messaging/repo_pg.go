package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renalcare/renalcare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

func (r *messageRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO message (id, sender_id, recipient_id, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		m.ID, m.SenderID, m.RecipientID, m.Content).Scan(&m.CreatedAt)
}

func (r *messageRepoPG) ListInvolving(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.id, m.sender_id, m.recipient_id,
			s.full_name AS sender_name, t.full_name AS recipient_name,
			m.content, m.created_at
		FROM message m
		JOIN app_user s ON s.id = m.sender_id
		JOIN app_user t ON t.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at, m.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID,
			&m.SenderName, &m.RecipientName, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
