package dispute

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type Service struct {
	disputes Repository
	guard    *auth.Guard
	recorder audit.Recorder
	runner   db.Runner
}

func NewService(disputes Repository, guard *auth.Guard, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{disputes: disputes, guard: guard, recorder: recorder, runner: runner}
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, d *Dispute) error {
	if strings.TrimSpace(d.Reason) == "" {
		return apperr.Validation("dispute reason is required", "विवाद का कारण आवश्यक है")
	}

	d.OrganizationID = ident.OrganizationID
	d.CreatedBy = ident.UserID
	d.Status = lifecycle.DisputeOpen

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.disputes.Create(ctx, d); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: d.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "dispute.created",
			ResourceType:   "dispute",
			ResourceID:     d.ID,
			NewValues:      map[string]interface{}{"reason": d.Reason, "status": d.Status},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(d.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, status string, limit, offset int) ([]*Dispute, int, error) {
	return s.disputes.ListByOrganization(ctx, ident.OrganizationID, status, limit, offset)
}

// Transition moves a dispute through its lifecycle. Taking a dispute under
// review is approval-class. Moving to resolved requires a resolution note of
// at least ten characters; the note is stored with the status flip.
func (s *Service) Transition(ctx context.Context, ident *auth.Identity, id uuid.UUID, target, note string) (*Dispute, error) {
	d, err := s.disputes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(d.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindDispute, d.Status, target); err != nil {
		return nil, err
	}
	if err := s.guard.RequireTransitionRole(ctx, ident, lifecycle.KindDispute, d.Status, target, d.CreatedBy); err != nil {
		return nil, err
	}

	note = strings.TrimSpace(note)
	if target == lifecycle.DisputeResolved && len(note) < MinResolutionNote {
		return nil, apperr.Validation("resolution note must be at least 10 characters", "समाधान नोट कम से कम 10 अक्षरों का होना चाहिए")
	}
	if target != lifecycle.DisputeResolved {
		note = ""
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.disputes.UpdateStatus(ctx, id, d.Status, target, note)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(d.Status, target)
		}
		prev, next := audit.StatusChange(d.Status, target)
		if note != "" {
			next["resolution_note"] = note
		}
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: d.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "dispute.statusUpdated",
			ResourceType:   "dispute",
			ResourceID:     d.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	d.Status = target
	if note != "" {
		d.ResolutionNote = note
	}
	return d, nil
}
