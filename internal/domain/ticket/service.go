package ticket

import (
	"context"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type Service struct {
	tickets  Repository
	recorder audit.Recorder
	runner   db.Runner
}

func NewService(tickets Repository, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{tickets: tickets, recorder: recorder, runner: runner}
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, t *Ticket) error {
	if t.Subject == "" {
		return apperr.Validation("ticket subject is required", "टिकट का विषय आवश्यक है")
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !validPriority(t.Priority) {
		return apperr.Validation("priority must be low, medium, high or urgent", "प्राथमिकता low, medium, high या urgent होनी चाहिए")
	}

	t.OrganizationID = ident.OrganizationID
	t.CreatedBy = ident.UserID
	t.Status = lifecycle.TicketOpen

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.Create(ctx, t); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: t.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "ticket.created",
			ResourceType:   "ticket",
			ResourceID:     t.ID,
			NewValues:      map[string]interface{}{"subject": t.Subject, "priority": t.Priority, "status": t.Status},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(t.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, status string, limit, offset int) ([]*Ticket, int, error) {
	return s.tickets.ListByOrganization(ctx, ident.OrganizationID, status, limit, offset)
}

// Transition moves a ticket through the routine lifecycle table. No ticket
// transition is approval-class.
func (s *Service) Transition(ctx context.Context, ident *auth.Identity, id uuid.UUID, target string) (*Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(t.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindTicket, t.Status, target); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.tickets.UpdateStatus(ctx, id, t.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(t.Status, target)
		}
		prev, next := audit.StatusChange(t.Status, target)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: t.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "ticket.statusUpdated",
			ResourceType:   "ticket",
			ResourceID:     t.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	t.Status = target
	return t, nil
}

// ForceClose closes a ticket from any non-closed status, bypassing the
// transition table. Platform admin only; the distinct audit action keeps
// administrative overrides separable from routine transitions in the trail.
func (s *Service) ForceClose(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Ticket, error) {
	if !ident.IsPlatformAdmin() {
		return nil, apperr.ErrForbidden
	}

	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if t.Status == lifecycle.TicketClosed {
		return nil, apperr.InvalidTransition(t.Status, lifecycle.TicketClosed)
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.tickets.ForceStatus(ctx, id, lifecycle.TicketClosed); err != nil {
			return err
		}
		prev, next := audit.StatusChange(t.Status, lifecycle.TicketClosed)
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: t.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "ticket.forceClosed",
			ResourceType:   "ticket",
			ResourceID:     t.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	t.Status = lifecycle.TicketClosed
	return t, nil
}
