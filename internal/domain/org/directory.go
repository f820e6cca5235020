package org

import (
	"context"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/platform/auth"
)

// Directory adapts the org repositories to the lookup surface the identity
// resolver needs.
type Directory struct {
	users       UserRepository
	memberships MembershipRepository
}

func NewDirectory(users UserRepository, memberships MembershipRepository) *Directory {
	return &Directory{users: users, memberships: memberships}
}

func (d *Directory) UserByEmail(ctx context.Context, email string) (*auth.DirectoryUser, error) {
	u, err := d.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &auth.DirectoryUser{ID: u.ID, Email: u.Email, PlatformRole: u.PlatformRole}, nil
}

func (d *Directory) UserByID(ctx context.Context, id uuid.UUID) (*auth.DirectoryUser, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.DirectoryUser{ID: u.ID, Email: u.Email, PlatformRole: u.PlatformRole}, nil
}

func (d *Directory) ActiveMembership(ctx context.Context, userID uuid.UUID) (*auth.DirectoryMembership, error) {
	m, err := d.memberships.ActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.DirectoryMembership{OrganizationID: m.OrganizationID, Role: m.Role}, nil
}
