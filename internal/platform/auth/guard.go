package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/lifecycle"
)

// Guard exposes the three authorization primitives every mutating request
// passes through: organization-scoped auth, platform-admin-only auth, and
// role-gated transition auth with self-action prevention.
type Guard struct {
	resolver *Resolver
	dir      Directory
}

func NewGuard(resolver *Resolver, dir Directory) *Guard {
	return &Guard{resolver: resolver, dir: dir}
}

// RequireOrgAuth resolves the caller and their active organization.
func (g *Guard) RequireOrgAuth(ctx context.Context) (*Identity, error) {
	return g.resolver.Resolve(ctx)
}

// RequirePlatformAdmin resolves the caller and fails with FORBIDDEN unless
// they hold the platform admin role.
func (g *Guard) RequirePlatformAdmin(ctx context.Context) (*Identity, error) {
	ident, err := g.resolver.ResolveUser(ctx)
	if err != nil {
		return nil, err
	}
	if !ident.IsPlatformAdmin() {
		return nil, apperr.ErrForbidden
	}
	return ident, nil
}

// RequireTransitionRole gates approval-class transitions. Non-approval
// transitions pass through untouched.
//
// The creator check runs BEFORE the role gate: "you cannot approve your own
// item" is a role-independent invariant, and the two failures carry distinct
// messages so callers can tell them apart.
func (g *Guard) RequireTransitionRole(ctx context.Context, ident *Identity, kind lifecycle.Kind, from, to string, createdBy uuid.UUID) error {
	if !lifecycle.ApprovalClass(kind, from, to) {
		return nil
	}

	if createdBy != uuid.Nil && createdBy == ident.UserID {
		return apperr.ErrSelfAction
	}

	membership, err := g.dir.ActiveMembership(ctx, ident.UserID)
	if err != nil {
		return apperr.ErrNoActiveOrganization
	}
	if membership.Role != RoleOwner && membership.Role != RoleAdmin {
		return apperr.ErrInsufficientRole
	}
	return nil
}

// CheckWrite enforces tenant isolation on a mutation: writing to another
// organization's resource is an explicit FORBIDDEN.
func CheckWrite(resourceOrg, callerOrg uuid.UUID) error {
	if resourceOrg != callerOrg {
		return apperr.ErrForbidden
	}
	return nil
}

// CheckRead enforces tenant isolation on a point read: another organization's
// resource is reported as NOT_FOUND so its existence does not leak. The
// read/write asymmetry is deliberate.
func CheckRead(resourceOrg, callerOrg uuid.UUID) error {
	if resourceOrg != callerOrg {
		return apperr.ErrNotFound
	}
	return nil
}
