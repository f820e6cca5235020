package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Equipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Equipment, error)
	// UpdateStatus only succeeds when the row still holds expected; a
	// concurrent transition makes it a no-op and the caller reports
	// INVALID_TRANSITION.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Equipment, int, error)
}

type FailureReportRepository interface {
	Create(ctx context.Context, r *FailureReport) error
	ListByEquipment(ctx context.Context, orgID, equipmentID uuid.UUID) ([]*FailureReport, error)
}

type MaintenanceRepository interface {
	Create(ctx context.Context, m *MaintenanceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRecord, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByEquipment(ctx context.Context, orgID, equipmentID uuid.UUID) ([]*MaintenanceRecord, error)
	// ListScheduledBetween is the cross-tenant scan behind the maintenance
	// reminder rule. Completed records are excluded.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*MaintenanceRecord, error)
}

type SupplyRepository interface {
	Create(ctx context.Context, s *SupplyItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*SupplyItem, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*SupplyItem, int, error)
	// ListBelowReorder is the cross-tenant scan behind the low-stock rule.
	ListBelowReorder(ctx context.Context) ([]*SupplyItem, error)
}
