package org

import (
	"context"
	"regexp"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

type Service struct {
	orgs        OrganizationRepository
	users       UserRepository
	memberships MembershipRepository
	recorder    audit.Recorder
	runner      db.Runner
}

func NewService(orgs OrganizationRepository, users UserRepository, memberships MembershipRepository, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{orgs: orgs, users: users, memberships: memberships, recorder: recorder, runner: runner}
}

// CreateOrganization onboards a tenant. Platform admin only; the handler
// enforces that before calling.
func (s *Service) CreateOrganization(ctx context.Context, actor *auth.Identity, o *Organization) error {
	if o.Name == "" {
		return apperr.Validation("organization name is required", "संगठन का नाम आवश्यक है")
	}
	if !slugPattern.MatchString(o.Slug) {
		return apperr.Validation("slug must be lowercase letters, digits and hyphens", "slug में केवल छोटे अक्षर, अंक और हाइफ़न हो सकते हैं")
	}
	if o.Type != TypeHospital && o.Type != TypeProvider {
		return apperr.Validation("type must be hospital or provider", "प्रकार hospital या provider होना चाहिए")
	}
	if o.Status == "" {
		o.Status = StatusTrial
	}
	if o.Status != StatusActive && o.Status != StatusTrial {
		return apperr.Validation("initial status must be active or trial", "प्रारंभिक स्थिति active या trial होनी चाहिए")
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, o); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: o.ID,
			ActorID:        actor.UserID,
			Action:         "organization.created",
			ResourceType:   "organization",
			ResourceID:     o.ID,
			NewValues:      map[string]interface{}{"name": o.Name, "slug": o.Slug, "type": o.Type, "status": o.Status},
		})
		return err
	})
}

// Suspend takes a tenant out of service. Suspended organizations stop
// resolving as an active scope for their members.
func (s *Service) Suspend(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, StatusSuspended, "organization.suspended")
}

// Reactivate returns a suspended tenant to service.
func (s *Service) Reactivate(ctx context.Context, actor *auth.Identity, id uuid.UUID) error {
	return s.setStatus(ctx, actor, id, StatusActive, "organization.reactivated")
}

func (s *Service) setStatus(ctx context.Context, actor *auth.Identity, id uuid.UUID, target, action string) error {
	o, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return apperr.ErrNotFound
	}
	if o.Status == target {
		return apperr.InvalidTransition(o.Status, target)
	}
	if target == StatusActive && o.Status != StatusSuspended && o.Status != StatusTrial {
		return apperr.InvalidTransition(o.Status, target)
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.orgs.UpdateStatus(ctx, id, target); err != nil {
			return err
		}
		prev, next := audit.StatusChange(o.Status, target)
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: id,
			ActorID:        actor.UserID,
			Action:         action,
			ResourceType:   "organization",
			ResourceID:     id,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	o, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	return s.orgs.List(ctx, limit, offset)
}

// requireManager checks the acting caller holds owner or admin in the org.
func (s *Service) requireManager(ctx context.Context, actor *auth.Identity, orgID uuid.UUID) error {
	m, err := s.memberships.Get(ctx, orgID, actor.UserID)
	if err != nil {
		return apperr.ErrForbidden
	}
	if m.Role != auth.RoleOwner && m.Role != auth.RoleAdmin {
		return apperr.ErrInsufficientRole
	}
	return nil
}

func validRole(role string) bool {
	return role == auth.RoleOwner || role == auth.RoleAdmin || role == auth.RoleMember
}

// AddMember creates a membership for the given email in the actor's
// organization, creating the user record on first contact.
func (s *Service) AddMember(ctx context.Context, actor *auth.Identity, email, name, role string) (*Membership, error) {
	if email == "" {
		return nil, apperr.Validation("email is required", "ईमेल आवश्यक है")
	}
	if !validRole(role) {
		return nil, apperr.Validation("role must be owner, admin or member", "भूमिका owner, admin या member होनी चाहिए")
	}
	if err := s.requireManager(ctx, actor, actor.OrganizationID); err != nil {
		return nil, err
	}

	var m *Membership
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			u = &User{Email: email, Name: name}
			if err := s.users.Create(ctx, u); err != nil {
				return err
			}
		}
		if _, err := s.memberships.Get(ctx, actor.OrganizationID, u.ID); err == nil {
			return apperr.Validation("user is already a member", "उपयोगकर्ता पहले से सदस्य है")
		}

		m = &Membership{OrganizationID: actor.OrganizationID, UserID: u.ID, Role: role}
		if err := s.memberships.Create(ctx, m); err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: actor.OrganizationID,
			ActorID:        actor.UserID,
			Action:         "membership.created",
			ResourceType:   "membership",
			ResourceID:     m.ID,
			NewValues:      map[string]interface{}{"user_id": u.ID.String(), "role": role},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ChangeMemberRole escalates or demotes a member.
func (s *Service) ChangeMemberRole(ctx context.Context, actor *auth.Identity, userID uuid.UUID, role string) error {
	if !validRole(role) {
		return apperr.Validation("role must be owner, admin or member", "भूमिका owner, admin या member होनी चाहिए")
	}
	if err := s.requireManager(ctx, actor, actor.OrganizationID); err != nil {
		return err
	}

	m, err := s.memberships.Get(ctx, actor.OrganizationID, userID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if m.Role == role {
		return nil
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.memberships.UpdateRole(ctx, actor.OrganizationID, userID, role); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: actor.OrganizationID,
			ActorID:        actor.UserID,
			Action:         "membership.roleChanged",
			ResourceType:   "membership",
			ResourceID:     m.ID,
			PreviousValues: map[string]interface{}{"role": m.Role},
			NewValues:      map[string]interface{}{"role": role},
		})
		return err
	})
}

// RemoveMember deletes a membership. The last owner cannot remove themselves.
func (s *Service) RemoveMember(ctx context.Context, actor *auth.Identity, userID uuid.UUID) error {
	if err := s.requireManager(ctx, actor, actor.OrganizationID); err != nil {
		return err
	}

	m, err := s.memberships.Get(ctx, actor.OrganizationID, userID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if m.Role == auth.RoleOwner && userID == actor.UserID {
		return apperr.Validation("an owner cannot remove their own membership", "स्वामी अपनी सदस्यता स्वयं नहीं हटा सकता")
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.memberships.Delete(ctx, actor.OrganizationID, userID); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: actor.OrganizationID,
			ActorID:        actor.UserID,
			Action:         "membership.removed",
			ResourceType:   "membership",
			ResourceID:     m.ID,
			PreviousValues: map[string]interface{}{"user_id": userID.String(), "role": m.Role},
		})
		return err
	})
}

func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Membership, int, error) {
	return s.memberships.ListByOrganization(ctx, orgID, limit, offset)
}
