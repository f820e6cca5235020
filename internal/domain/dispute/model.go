package dispute

import (
	"time"

	"github.com/google/uuid"
)

// MinResolutionNote is the shortest acceptable resolution note. Resolving a
// dispute is an audit-sensitive action; a bare "ok" is not a record.
const MinResolutionNote = 10

// Dispute maps to the dispute table. The open→under_review move is
// approval-class; resolving requires a resolution note.
type Dispute struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Reason         string    `db:"reason" json:"reason"`
	Status         string    `db:"status" json:"status"`
	ResolutionNote string    `db:"resolution_note" json:"resolution_note,omitempty"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
