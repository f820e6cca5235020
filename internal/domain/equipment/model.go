package equipment

import (
	"time"

	"github.com/google/uuid"
)

// Criticality levels for equipment and failure report urgency.
const (
	CriticalityLow      = "low"
	CriticalityMedium   = "medium"
	CriticalityHigh     = "high"
	CriticalityCritical = "critical"
)

// Equipment maps to the equipment table. OrganizationID is immutable after
// creation; status moves only through the lifecycle table.
type Equipment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	SerialNumber   string    `db:"serial_number" json:"serial_number"`
	Category       string    `db:"category" json:"category"`
	Criticality    string    `db:"criticality" json:"criticality"`
	Status         string    `db:"status" json:"status"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// FailureReport documents an equipment fault. A critical report moves the
// equipment to damaged as a side effect when that transition is open.
type FailureReport struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	EquipmentID    uuid.UUID `db:"equipment_id" json:"equipment_id"`
	Urgency        string    `db:"urgency" json:"urgency"`
	Description    string    `db:"description" json:"description"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// MaintenanceRecord schedules planned work on a piece of equipment.
type MaintenanceRecord struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	EquipmentID    uuid.UUID  `db:"equipment_id" json:"equipment_id"`
	ScheduledAt    time.Time  `db:"scheduled_at" json:"scheduled_at"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedBy      uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// SupplyItem tracks consumable stock per organization.
type SupplyItem struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	CurrentStock   int       `db:"current_stock" json:"current_stock"`
	ReorderPoint   int       `db:"reorder_point" json:"reorder_point"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func validCriticality(v string) bool {
	switch v {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}
