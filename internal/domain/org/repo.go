package org

import (
	"context"

	"github.com/google/uuid"
)

type OrganizationRepository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	List(ctx context.Context, limit, offset int) ([]*Organization, int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	Get(ctx context.Context, orgID, userID uuid.UUID) (*Membership, error)
	// ActiveForUser returns the user's single membership in an active (or
	// trial) organization, the membership-lookup fallback path.
	ActiveForUser(ctx context.Context, userID uuid.UUID) (*Membership, error)
	UpdateRole(ctx context.Context, orgID, userID uuid.UUID, role string) error
	Delete(ctx context.Context, orgID, userID uuid.UUID) error
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Membership, int, error)
}
