package provider

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Update(ctx context.Context, a *Account) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Account, int, error)
}

type CertificationRepository interface {
	Create(ctx context.Context, c *Certification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Certification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, orgID, providerID uuid.UUID) ([]*Certification, error)
	// ListExpiringBefore is the cross-tenant scan behind the expiry warning
	// rule. Certifications without an expiry are never returned.
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Certification, error)
}
