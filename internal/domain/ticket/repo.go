package ticket

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error)
	// ForceStatus writes the status unconditionally. Only the administrative
	// force-close path uses it.
	ForceStatus(ctx context.Context, id uuid.UUID, target string) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Ticket, int, error)
}
