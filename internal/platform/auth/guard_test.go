package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/lifecycle"
)

func newGuardFixture(role string) (*Guard, *Identity) {
	dir := newFakeDirectory()
	userID := dir.addUser("actor@cityhospital.example", "")
	orgID := uuid.New()
	dir.memberships[userID] = &DirectoryMembership{OrganizationID: orgID, Role: role}
	guard := NewGuard(NewResolver(dir), dir)
	return guard, &Identity{UserID: userID, OrganizationID: orgID}
}

func TestRequirePlatformAdmin(t *testing.T) {
	dir := newFakeDirectory()
	guard := NewGuard(NewResolver(dir), dir)

	adminClaims := subjectClaims(uuid.New())
	adminClaims.PlatformRole = PlatformRoleAdmin
	if _, err := guard.RequirePlatformAdmin(ctxWithClaims(adminClaims)); err != nil {
		t.Fatalf("RequirePlatformAdmin() error = %v", err)
	}

	_, err := guard.RequirePlatformAdmin(ctxWithClaims(subjectClaims(uuid.New())))
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for ordinary user, got %v", err)
	}

	_, err = guard.RequirePlatformAdmin(context.Background())
	if apperr.CodeOf(err) != apperr.CodeUnauthenticated {
		t.Fatalf("expected UNAUTHENTICATED without claims, got %v", err)
	}
}

func TestTransitionRoleNonApprovalPassesThrough(t *testing.T) {
	guard, ident := newGuardFixture(RoleMember)

	// quoted -> accepted is open to any member; the guard must not even
	// consult the directory's role.
	err := guard.RequireTransitionRole(context.Background(), ident, lifecycle.KindServiceRequest,
		lifecycle.RequestQuoted, lifecycle.RequestAccepted, uuid.New())
	if err != nil {
		t.Fatalf("non-approval transition blocked: %v", err)
	}
}

func TestTransitionRoleCreatorBlockedFirst(t *testing.T) {
	// The actor is an owner, so the role gate alone would pass. Self-action
	// still loses, and with the self-action message rather than the role one.
	guard, ident := newGuardFixture(RoleOwner)

	err := guard.RequireTransitionRole(context.Background(), ident, lifecycle.KindServiceRequest,
		lifecycle.RequestPending, lifecycle.RequestQuoted, ident.UserID)
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	var appErr *apperr.Error
	if !apperr.As(err, &appErr) {
		t.Fatal("expected *apperr.Error")
	}
	if appErr.Message(apperr.LocaleEN) != apperr.ErrSelfAction.Message(apperr.LocaleEN) {
		t.Errorf("got %q, want the self-action message", appErr.Message(apperr.LocaleEN))
	}
}

func TestTransitionRoleMemberInsufficient(t *testing.T) {
	guard, ident := newGuardFixture(RoleMember)

	err := guard.RequireTransitionRole(context.Background(), ident, lifecycle.KindDispute,
		lifecycle.DisputeOpen, lifecycle.DisputeUnderReview, uuid.New())
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	var appErr *apperr.Error
	apperr.As(err, &appErr)
	if appErr.Message(apperr.LocaleEN) != apperr.ErrInsufficientRole.Message(apperr.LocaleEN) {
		t.Errorf("got %q, want the insufficient-role message", appErr.Message(apperr.LocaleEN))
	}
}

func TestTransitionRoleAdminApproves(t *testing.T) {
	for _, role := range []string{RoleOwner, RoleAdmin} {
		guard, ident := newGuardFixture(role)
		err := guard.RequireTransitionRole(context.Background(), ident, lifecycle.KindPayment,
			lifecycle.PaymentPending, lifecycle.PaymentProcessing, uuid.New())
		if err != nil {
			t.Errorf("role %s: approval blocked: %v", role, err)
		}
	}
}

func TestCheckWriteForbidden(t *testing.T) {
	org := uuid.New()
	if err := CheckWrite(org, org); err != nil {
		t.Fatalf("same-org write rejected: %v", err)
	}
	err := CheckWrite(org, uuid.New())
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestCheckReadHidesExistence(t *testing.T) {
	org := uuid.New()
	if err := CheckRead(org, org); err != nil {
		t.Fatalf("same-org read rejected: %v", err)
	}
	err := CheckRead(org, uuid.New())
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
