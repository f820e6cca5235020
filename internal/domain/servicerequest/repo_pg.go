package servicerequest

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

const requestCols = `id, organization_id, title, category, status, created_by, created_at, updated_at`

func scanRequest(row pgx.Row) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := row.Scan(&sr.ID, &sr.OrganizationID, &sr.Title, &sr.Category, &sr.Status,
		&sr.CreatedBy, &sr.CreatedAt, &sr.UpdatedAt)
	return &sr, err
}

func (r *RepoPG) Create(ctx context.Context, sr *ServiceRequest) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO service_request (organization_id, title, category, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		sr.OrganizationID, sr.Title, sr.Category, sr.Status, sr.CreatedBy,
	).Scan(&sr.ID, &sr.CreatedAt, &sr.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error) {
	return scanRequest(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+requestCols+` FROM service_request WHERE id = $1`, id))
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE service_request SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		target, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*ServiceRequest, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM service_request `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + requestCols + ` FROM service_request ` + where + ` ORDER BY created_at DESC`
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

	var items []*ServiceRequest
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, sr)
	}
	return items, total, rows.Err()
}

func (r *RepoPG) ListUpdatedBefore(ctx context.Context, cutoff time.Time) ([]*ServiceRequest, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+requestCols+` FROM service_request WHERE updated_at < $1 ORDER BY updated_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ServiceRequest
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sr)
	}
	return items, rows.Err()
}

type QuoteRepoPG struct {
	pool *pgxpool.Pool
}

func NewQuoteRepoPG(pool *pgxpool.Pool) *QuoteRepoPG {
	return &QuoteRepoPG{pool: pool}
}

const quoteCols = `id, organization_id, request_id, provider_id, amount, valid_until, status, created_by, created_at, updated_at`

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.OrganizationID, &q.RequestID, &q.ProviderID, &q.Amount,
		&q.ValidUntil, &q.Status, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	return &q, err
}

func (r *QuoteRepoPG) Create(ctx context.Context, q *Quote) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO quote (organization_id, request_id, provider_id, amount, valid_until, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		q.OrganizationID, q.RequestID, q.ProviderID, q.Amount, q.ValidUntil, q.Status, q.CreatedBy,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

func (r *QuoteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return scanQuote(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+quoteCols+` FROM quote WHERE id = $1`, id))
}

func (r *QuoteRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE quote SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		target, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *QuoteRepoPG) ListByRequest(ctx context.Context, orgID, requestID uuid.UUID) ([]*Quote, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+quoteCols+` FROM quote WHERE organization_id = $1 AND request_id = $2 ORDER BY created_at ASC`,
		orgID, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}
