package dispute

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error)
	// UpdateStatus writes the target status and, when note is non-empty, the
	// resolution note, guarded on the expected current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target, note string) (bool, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Dispute, int, error)
}
