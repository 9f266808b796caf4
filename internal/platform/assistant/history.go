package assistant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renalcare/renalcare/internal/platform/db"
)

// Turn is one persisted exchange turn for a user: either the user's prompt
// or the assistant's reply.
type Turn struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type HistoryRepository interface {
	Append(ctx context.Context, t *Turn) error
	// Recent returns the user's most recent turns, oldest first, capped
	// at limit.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Turn, error)
}

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepoPG{pool: pool}
}

func (r *historyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *historyRepoPG) Append(ctx context.Context, t *Turn) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO assistant_message (id, user_id, role, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		t.ID, t.UserID, t.Role, t.Content).Scan(&t.CreatedAt)
}

func (r *historyRepoPG) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]Turn, error) {
	// Newest first in SQL, then reversed so callers get chronological
	// order.
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, role, content, created_at
		FROM assistant_message
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
