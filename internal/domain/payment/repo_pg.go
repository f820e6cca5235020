package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careops/careops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const paymentCols = `id, organization_id, amount, invoice_no, status, created_by, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrganizationID, &p.Amount, &p.InvoiceNo, &p.Status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *RepoPG) Create(ctx context.Context, p *Payment) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO payment (organization_id, amount, invoice_no, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		p.OrganizationID, p.Amount, p.InvoiceNo, p.Status, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payment WHERE id = $1`, id))
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE payment SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		target, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Payment, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + paymentCols + ` FROM payment ` + where + ` ORDER BY created_at DESC`
	if status != "" {
		q += ` LIMIT $3 OFFSET $4`
	} else {
		q += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// CounterRepoPG implements the per-date invoice counter as an upsert that
// increments under the row lock, so concurrent payments on the same day get
// distinct sequence values.
type CounterRepoPG struct {
	pool *pgxpool.Pool
}

func NewCounterRepoPG(pool *pgxpool.Pool) *CounterRepoPG {
	return &CounterRepoPG{pool: pool}
}

func (r *CounterRepoPG) NextNumber(ctx context.Context, day time.Time) (int, error) {
	var seq int
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO invoice_counter (day, last_value)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = invoice_counter.last_value + 1
		RETURNING last_value`, day.Format("2006-01-02")).Scan(&seq)
	return seq, err
}
