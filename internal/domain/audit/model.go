package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one immutable record of a privileged action. Entries are written
// in the same transaction as the mutation they document and are never
// updated or deleted.
type Entry struct {
	ID             uuid.UUID              `db:"id" json:"id"`
	OrganizationID uuid.UUID              `db:"organization_id" json:"organization_id"`
	ActorID        uuid.UUID              `db:"actor_id" json:"actor_id"`
	Action         string                 `db:"action" json:"action"`
	ResourceType   string                 `db:"resource_type" json:"resource_type"`
	ResourceID     uuid.UUID              `db:"resource_id" json:"resource_id"`
	PreviousValues map[string]interface{} `db:"previous_values" json:"previous_values,omitempty"`
	NewValues      map[string]interface{} `db:"new_values" json:"new_values,omitempty"`
	CreatedAt      time.Time              `db:"created_at" json:"created_at"`
}

// RunRecord summarizes one automation rule execution. A run that finds
// nothing still gets a record with AffectedCount zero, so "checked, found
// nothing" is distinguishable from "never ran".
type RunRecord struct {
	ID            uuid.UUID              `db:"id" json:"id"`
	RuleName      string                 `db:"rule_name" json:"rule_name"`
	Status        string                 `db:"status" json:"status"`
	AffectedCount int                    `db:"affected_count" json:"affected_count"`
	Metadata      map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}

// Run statuses.
const (
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// StatusChange builds the diff maps for a plain status transition. Only the
// changed field is captured, never a full snapshot.
func StatusChange(from, to string) (prev, next map[string]interface{}) {
	return map[string]interface{}{"status": from}, map[string]interface{}{"status": to}
}
