package dispute

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

const disputeCols = `id, organization_id, reason, status, COALESCE(resolution_note, ''), created_by, created_at, updated_at`

func scanDispute(row pgx.Row) (*Dispute, error) {
	var d Dispute
	err := row.Scan(&d.ID, &d.OrganizationID, &d.Reason, &d.Status, &d.ResolutionNote,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *RepoPG) Create(ctx context.Context, d *Dispute) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO dispute (organization_id, reason, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		d.OrganizationID, d.Reason, d.Status, d.CreatedBy,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	return scanDispute(r.conn(ctx).QueryRow(ctx,
		`SELECT `+disputeCols+` FROM dispute WHERE id = $1`, id))
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target, note string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE dispute
		SET status = $1,
		    resolution_note = COALESCE(NULLIF($2, ''), resolution_note),
		    updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		target, note, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Dispute, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM dispute `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + disputeCols + ` FROM dispute ` + where + ` ORDER BY created_at DESC`
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

	var items []*Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}
