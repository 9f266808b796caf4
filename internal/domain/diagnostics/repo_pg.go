package diagnostics

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

type labResultRepoPG struct{ pool *pgxpool.Pool }

func NewLabResultRepoPG(pool *pgxpool.Pool) LabResultRepository {
	return &labResultRepoPG{pool: pool}
}

func (r *labResultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const labCols = `id, patient_id, test_name, value, unit, reference_range, flag, resulted_at,
	ordered_by_id, created_at`

func scanLabResult(row pgx.Row) (*LabResult, error) {
	var lr LabResult
	err := row.Scan(&lr.ID, &lr.PatientID, &lr.TestName, &lr.Value, &lr.Unit,
		&lr.ReferenceRange, &lr.Flag, &lr.ResultedAt, &lr.OrderedByID, &lr.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func collectLabResults(rows pgx.Rows) ([]*LabResult, error) {
	defer rows.Close()
	var out []*LabResult
	for rows.Next() {
		lr, err := scanLabResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

func (r *labResultRepoPG) Create(ctx context.Context, lr *LabResult) error {
	lr.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO lab_result (id, patient_id, test_name, value, unit, reference_range,
			flag, resulted_at, ordered_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		lr.ID, lr.PatientID, lr.TestName, lr.Value, lr.Unit, lr.ReferenceRange,
		lr.Flag, lr.ResultedAt, lr.OrderedByID).Scan(&lr.CreatedAt)
}

func (r *labResultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LabResult, error) {
	return scanLabResult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labCols+` FROM lab_result WHERE id = $1`, id))
}

func (r *labResultRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM lab_result WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *labResultRepoPG) List(ctx context.Context, limit, offset int) ([]*LabResult, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM lab_result`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_result ORDER BY resulted_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectLabResults(rows)
	return out, total, err
}

func (r *labResultRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*LabResult, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lab_result WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM lab_result WHERE patient_id = $1
		 ORDER BY resulted_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectLabResults(rows)
	return out, total, err
}

func (r *labResultRepoPG) CountByFlag(ctx context.Context) (map[Flag]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT flag, COUNT(*) FROM lab_result GROUP BY flag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Flag]int)
	for rows.Next() {
		var f Flag
		var n int
		if err := rows.Scan(&f, &n); err != nil {
			return nil, err
		}
		out[f] = n
	}
	return out, rows.Err()
}
