package provider

import (
	"time"

	"github.com/google/uuid"
)

// Account maps to the provider_account table: a service provider's public
// profile within its organization.
type Account struct {
	ID                uuid.UUID `db:"id" json:"id"`
	OrganizationID    uuid.UUID `db:"organization_id" json:"organization_id"`
	CompanyName       string    `db:"company_name" json:"company_name"`
	ServiceCategories []string  `db:"service_categories" json:"service_categories"`
	CreatedBy         uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Certification is a credential held by a provider account. ExpiresAt is
// nullable; certifications without an expiry never trigger the expiry
// warning rule.
type Certification struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organization_id"`
	ProviderID     uuid.UUID  `db:"provider_id" json:"provider_id"`
	Name           string     `db:"name" json:"name"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy      uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
