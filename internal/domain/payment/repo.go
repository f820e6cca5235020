package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Payment, int, error)
}

// CounterRepository hands out per-date invoice sequence values. NextNumber
// must be atomic under concurrent callers and must run inside the payment's
// transaction so an aborted payment never burns a gap silently committed
// elsewhere.
type CounterRepository interface {
	NextNumber(ctx context.Context, day time.Time) (int, error)
}
