package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/platform/apperr"
)

// Membership roles within an organization.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// PlatformRoleAdmin is the platform-wide privilege level above organization
// membership; it grants the cross-tenant administrative operations.
const PlatformRoleAdmin = "platform_admin"

// ResolutionSource tags how the caller's organization was determined.
type ResolutionSource string

const (
	SourceClaim      ResolutionSource = "claim"
	SourceLookup     ResolutionSource = "lookup"
	SourceUnresolved ResolutionSource = "unresolved"
)

// Identity is the per-request caller identity. It is never persisted; it is
// reconstructed from the credential on every call.
type Identity struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	PlatformRole   string
	OrgSource      ResolutionSource
}

// IsPlatformAdmin reports whether the caller holds the platform admin role.
func (id *Identity) IsPlatformAdmin() bool {
	return id.PlatformRole == PlatformRoleAdmin
}

// DirectoryUser is the stored user record the resolver falls back to.
type DirectoryUser struct {
	ID           uuid.UUID
	Email        string
	PlatformRole string
}

// DirectoryMembership is a user's single active organization membership.
type DirectoryMembership struct {
	OrganizationID uuid.UUID
	Role           string
}

// Directory is the read-only lookup surface the resolver and guards need.
// The org domain package provides the Postgres implementation; tests supply
// in-memory fakes.
type Directory interface {
	UserByEmail(ctx context.Context, email string) (*DirectoryUser, error)
	UserByID(ctx context.Context, id uuid.UUID) (*DirectoryUser, error)
	ActiveMembership(ctx context.Context, userID uuid.UUID) (*DirectoryMembership, error)
}

// Resolver turns request claims into a caller identity. It is read-only and
// idempotent; calling it twice for one request yields the same identity.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve derives the caller identity from the context's claims.
//
// The organization comes from the embedded claim when present (fast path, no
// database access). Otherwise the user's single active membership is looked
// up; a user with no membership cannot be scoped and resolution fails with
// NO_ACTIVE_ORGANIZATION.
func (r *Resolver) Resolve(ctx context.Context) (*Identity, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return nil, apperr.ErrUnauthenticated
	}

	userID, err := r.resolveUserID(ctx, claims)
	if err != nil {
		return nil, err
	}

	ident := &Identity{UserID: userID, OrgSource: SourceUnresolved}

	if claims.OrganizationID != "" {
		orgID, err := uuid.Parse(claims.OrganizationID)
		if err != nil {
			return nil, apperr.ErrUnauthenticated
		}
		ident.OrganizationID = orgID
		ident.OrgSource = SourceClaim
	} else {
		membership, err := r.dir.ActiveMembership(ctx, userID)
		if err != nil {
			return nil, apperr.ErrNoActiveOrganization
		}
		ident.OrganizationID = membership.OrganizationID
		ident.OrgSource = SourceLookup
	}

	role, err := r.resolvePlatformRole(ctx, claims, userID)
	if err != nil {
		return nil, err
	}
	ident.PlatformRole = role

	return ident, nil
}

// ResolveUser derives only the caller's user id and platform role, without
// requiring an organization. Platform-admin endpoints use this: an admin is
// not necessarily a member of any tenant.
func (r *Resolver) ResolveUser(ctx context.Context) (*Identity, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return nil, apperr.ErrUnauthenticated
	}

	userID, err := r.resolveUserID(ctx, claims)
	if err != nil {
		return nil, err
	}

	role, err := r.resolvePlatformRole(ctx, claims, userID)
	if err != nil {
		return nil, err
	}

	return &Identity{UserID: userID, PlatformRole: role, OrgSource: SourceUnresolved}, nil
}

func (r *Resolver) resolveUserID(ctx context.Context, claims *Claims) (uuid.UUID, error) {
	if id, err := uuid.Parse(claims.Subject); err == nil {
		return id, nil
	}
	if claims.Email != "" {
		user, err := r.dir.UserByEmail(ctx, claims.Email)
		if err == nil {
			return user.ID, nil
		}
	}
	return uuid.Nil, apperr.ErrUnauthenticated
}

// resolvePlatformRole mirrors the organization fallback: trust the embedded
// role claim when present, else read the stored per-user platform role.
func (r *Resolver) resolvePlatformRole(ctx context.Context, claims *Claims, userID uuid.UUID) (string, error) {
	if claims.PlatformRole != "" {
		return claims.PlatformRole, nil
	}
	user, err := r.dir.UserByID(ctx, userID)
	if err != nil {
		// Token-only callers (no stored record) simply have no platform role.
		return "", nil
	}
	return user.PlatformRole, nil
}
