package servicerequest

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest maps to the service_request table. Requests are created by
// hospital staff and move through the request lifecycle table; the
// pending→quoted move is approval-class.
type ServiceRequest struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Title          string    `db:"title" json:"title"`
	Category       string    `db:"category" json:"category"`
	Status         string    `db:"status" json:"status"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Quote is a priced offer against a service request. It is scoped to the
// request's organization; ProviderID optionally points at the provider
// account the offer came from. The submitted→accepted move is approval-class,
// so the quote's creator can never accept it themselves.
type Quote struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	RequestID      uuid.UUID  `db:"request_id" json:"request_id"`
	ProviderID     *uuid.UUID `db:"provider_id" json:"provider_id,omitempty"`
	Amount         int64      `db:"amount" json:"amount"`
	ValidUntil     *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedBy      uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
