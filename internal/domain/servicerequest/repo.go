package servicerequest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, sr *ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*ServiceRequest, int, error)
	// ListUpdatedBefore is the cross-tenant scan behind the stale-item rule.
	// Status filtering happens in the rule, not here.
	ListUpdatedBefore(ctx context.Context, cutoff time.Time) ([]*ServiceRequest, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error)
	ListByRequest(ctx context.Context, orgID, requestID uuid.UUID) ([]*Quote, error)
}
