package org

import (
	"time"

	"github.com/google/uuid"
)

// Organization statuses. Organizations are never hard-deleted; offboarding is
// a status change to suspended.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusTrial     = "trial"
)

// Organization types.
const (
	TypeHospital = "hospital"
	TypeProvider = "provider"
)

// Organization maps to the organization table. Slug is unique platform-wide.
type Organization struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	Type      string    `db:"type" json:"type"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User maps to the app_user table. PlatformRole is empty for regular users.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PlatformRole string    `db:"platform_role" json:"platform_role,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Membership ties a user to an organization with a role. A user holds at most
// one membership per organization.
type Membership struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Role           string    `db:"role" json:"role"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
