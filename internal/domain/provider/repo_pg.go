package provider

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

const accountCols = `id, organization_id, company_name, service_categories, created_by, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.OrganizationID, &a.CompanyName, &a.ServiceCategories,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *RepoPG) Create(ctx context.Context, a *Account) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO provider_account (organization_id, company_name, service_categories, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		a.OrganizationID, a.CompanyName, a.ServiceCategories, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+accountCols+` FROM provider_account WHERE id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, a *Account) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE provider_account
		SET company_name = $1, service_categories = $2, updated_at = NOW()
		WHERE id = $3`,
		a.CompanyName, a.ServiceCategories, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Account, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM provider_account WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+accountCols+` FROM provider_account WHERE organization_id = $1 ORDER BY company_name ASC LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

type CertificationRepoPG struct {
	pool *pgxpool.Pool
}

func NewCertificationRepoPG(pool *pgxpool.Pool) *CertificationRepoPG {
	return &CertificationRepoPG{pool: pool}
}

const certCols = `id, organization_id, provider_id, name, expires_at, created_by, created_at`

func scanCert(row pgx.Row) (*Certification, error) {
	var c Certification
	err := row.Scan(&c.ID, &c.OrganizationID, &c.ProviderID, &c.Name, &c.ExpiresAt,
		&c.CreatedBy, &c.CreatedAt)
	return &c, err
}

func (r *CertificationRepoPG) Create(ctx context.Context, c *Certification) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO certification (organization_id, provider_id, name, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		c.OrganizationID, c.ProviderID, c.Name, c.ExpiresAt, c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *CertificationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Certification, error) {
	return scanCert(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+certCols+` FROM certification WHERE id = $1`, id))
}

func (r *CertificationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM certification WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CertificationRepoPG) ListByProvider(ctx context.Context, orgID, providerID uuid.UUID) ([]*Certification, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+certCols+` FROM certification WHERE organization_id = $1 AND provider_id = $2 ORDER BY name ASC`,
		orgID, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCerts(rows)
}

func (r *CertificationRepoPG) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Certification, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+certCols+` FROM certification WHERE expires_at IS NOT NULL AND expires_at < $1 ORDER BY expires_at ASC`,
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCerts(rows)
}

func collectCerts(rows pgx.Rows) ([]*Certification, error) {
	var items []*Certification
	for rows.Next() {
		c, err := scanCert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
