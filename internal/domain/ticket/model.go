package ticket

import (
	"time"

	"github.com/google/uuid"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Ticket maps to the ticket table. Routine status moves go through the
// lifecycle table; the platform-admin force-close is a separate, separately
// audited path.
type Ticket struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Subject        string    `db:"subject" json:"subject"`
	Priority       string    `db:"priority" json:"priority"`
	Status         string    `db:"status" json:"status"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

func validPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
