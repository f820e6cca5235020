package audit

import (
	"context"

	"github.com/google/uuid"
)

// EntryRepository defines the append-only persistence interface for audit
// entries. There is deliberately no update or delete.
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Entry, int, error)
	ListByResource(ctx context.Context, orgID uuid.UUID, resourceType string, resourceID uuid.UUID) ([]*Entry, error)
}

// RunRepository persists automation run records.
type RunRepository interface {
	Create(ctx context.Context, rec *RunRecord) error
	List(ctx context.Context, ruleName string, limit, offset int) ([]*RunRecord, int, error)
}
