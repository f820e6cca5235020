package ticket

import (
	"context"

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

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const ticketCols = `id, organization_id, subject, priority, status, created_by, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Subject, &t.Priority, &t.Status,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *RepoPG) Create(ctx context.Context, t *Ticket) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ticket (organization_id, subject, priority, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		t.OrganizationID, t.Subject, t.Priority, t.Status, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	return scanTicket(r.conn(ctx).QueryRow(ctx,
		`SELECT `+ticketCols+` FROM ticket WHERE id = $1`, id))
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE ticket SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		target, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepoPG) ForceStatus(ctx context.Context, id uuid.UUID, target string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE ticket SET status = $1, updated_at = NOW() WHERE id = $2`, target, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Ticket, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + ticketCols + ` FROM ticket ` + where + ` ORDER BY created_at DESC`
	if status != "" {
		q += ` LIMIT $3 OFFSET $4`
	} else {
		q += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
