package audit

import (
	"context"
	"fmt"

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

// EntryRepoPG persists audit entries. Writes ride the caller's transaction
// when one is on the context, which is what makes the commit-together
// guarantee hold.
type EntryRepoPG struct {
	pool *pgxpool.Pool
}

func NewEntryRepoPG(pool *pgxpool.Pool) *EntryRepoPG {
	return &EntryRepoPG{pool: pool}
}

func (r *EntryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, organization_id, actor_id, action, resource_type, resource_id,
	previous_values, new_values, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.OrganizationID, &e.ActorID, &e.Action, &e.ResourceType, &e.ResourceID,
		&e.PreviousValues, &e.NewValues, &e.CreatedAt,
	)
	return &e, err
}

func (r *EntryRepoPG) Create(ctx context.Context, entry *Entry) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO audit_entry (organization_id, actor_id, action, resource_type, resource_id, previous_values, new_values)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		entry.OrganizationID, entry.ActorID, entry.Action, entry.ResourceType, entry.ResourceID,
		entry.PreviousValues, entry.NewValues,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *EntryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+entryCols+` FROM audit_entry WHERE id = $1`, id))
}

func (r *EntryRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_entry WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+entryCols+` FROM audit_entry WHERE organization_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *EntryRepoPG) ListByResource(ctx context.Context, orgID uuid.UUID, resourceType string, resourceID uuid.UUID) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+entryCols+` FROM audit_entry
		 WHERE organization_id = $1 AND resource_type = $2 AND resource_id = $3
		 ORDER BY created_at ASC`,
		orgID, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// RunRepoPG persists automation run records.
type RunRepoPG struct {
	pool *pgxpool.Pool
}

func NewRunRepoPG(pool *pgxpool.Pool) *RunRepoPG {
	return &RunRepoPG{pool: pool}
}

func (r *RunRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *RunRepoPG) Create(ctx context.Context, rec *RunRecord) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO automation_run (rule_name, status, affected_count, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		rec.RuleName, rec.Status, rec.AffectedCount, rec.Metadata,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (r *RunRepoPG) List(ctx context.Context, ruleName string, limit, offset int) ([]*RunRecord, int, error) {
	where := ""
	args := []interface{}{}
	if ruleName != "" {
		where = "WHERE rule_name = $1"
		args = append(args, ruleName)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM automation_run `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	q := fmt.Sprintf(`SELECT id, rule_name, status, affected_count, metadata, created_at
		FROM automation_run %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.ID, &rec.RuleName, &rec.Status, &rec.AffectedCount, &rec.Metadata, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}
