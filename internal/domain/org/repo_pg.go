package org

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// OrgRepoPG persists organizations.
type OrgRepoPG struct {
	pool *pgxpool.Pool
}

func NewOrgRepoPG(pool *pgxpool.Pool) *OrgRepoPG {
	return &OrgRepoPG{pool: pool}
}

const orgCols = `id, name, slug, type, status, created_at, updated_at`

func scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Type, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *OrgRepoPG) Create(ctx context.Context, o *Organization) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO organization (name, slug, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		o.Name, o.Slug, o.Type, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *OrgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return scanOrg(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organization WHERE id = $1`, id))
}

func (r *OrgRepoPG) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	return scanOrg(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organization WHERE slug = $1`, slug))
}

func (r *OrgRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE organization SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *OrgRepoPG) List(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM organization`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+orgCols+` FROM organization ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Organization
	for rows.Next() {
		o, err := scanOrg(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

// UserRepoPG persists users.
type UserRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepoPG(pool *pgxpool.Pool) *UserRepoPG {
	return &UserRepoPG{pool: pool}
}

const userCols = `id, email, name, COALESCE(platform_role, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PlatformRole, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *UserRepoPG) Create(ctx context.Context, u *User) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO app_user (email, name, platform_role)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, created_at, updated_at`,
		u.Email, u.Name, u.PlatformRole,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
}

func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userCols+` FROM app_user WHERE LOWER(email) = LOWER($1)`, email))
}

// MembershipRepoPG persists memberships.
type MembershipRepoPG struct {
	pool *pgxpool.Pool
}

func NewMembershipRepoPG(pool *pgxpool.Pool) *MembershipRepoPG {
	return &MembershipRepoPG{pool: pool}
}

const membershipCols = `id, organization_id, user_id, role, created_at, updated_at`

func scanMembership(row pgx.Row) (*Membership, error) {
	var m Membership
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *MembershipRepoPG) Create(ctx context.Context, m *Membership) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO membership (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		m.OrganizationID, m.UserID, m.Role,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MembershipRepoPG) Get(ctx context.Context, orgID, userID uuid.UUID) (*Membership, error) {
	return scanMembership(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+membershipCols+` FROM membership WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID))
}

func (r *MembershipRepoPG) ActiveForUser(ctx context.Context, userID uuid.UUID) (*Membership, error) {
	// Suspended organizations do not count as an active scope.
	return scanMembership(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT m.id, m.organization_id, m.user_id, m.role, m.created_at, m.updated_at
		FROM membership m
		JOIN organization o ON o.id = m.organization_id
		WHERE m.user_id = $1 AND o.status IN ('active', 'trial')
		ORDER BY m.created_at ASC
		LIMIT 1`, userID))
}

func (r *MembershipRepoPG) UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE membership SET role = $1, updated_at = NOW() WHERE organization_id = $2 AND user_id = $3`,
		role, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MembershipRepoPG) Delete(ctx context.Context, orgID, userID uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM membership WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MembershipRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Membership, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM membership WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+membershipCols+` FROM membership WHERE organization_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
