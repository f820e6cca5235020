package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type Service struct {
	payments Repository
	counters CounterRepository
	guard    *auth.Guard
	recorder audit.Recorder
	runner   db.Runner
	now      func() time.Time
}

func NewService(payments Repository, counters CounterRepository, guard *auth.Guard, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{
		payments: payments,
		counters: counters,
		guard:    guard,
		recorder: recorder,
		runner:   runner,
		now:      time.Now,
	}
}

// Create records a pending payment. The invoice number comes from the
// per-date counter inside the same transaction, so a rollback releases the
// whole unit and numbering stays dense per committed day.
func (s *Service) Create(ctx context.Context, ident *auth.Identity, p *Payment) error {
	if p.Amount <= 0 {
		return apperr.Validation("payment amount must be positive", "भुगतान राशि धनात्मक होनी चाहिए")
	}

	p.OrganizationID = ident.OrganizationID
	p.CreatedBy = ident.UserID
	p.Status = lifecycle.PaymentPending

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		day := s.now().UTC()
		seq, err := s.counters.NextNumber(ctx, day)
		if err != nil {
			return err
		}
		p.InvoiceNo = FormatInvoiceNo(day, seq)

		if err := s.payments.Create(ctx, p); err != nil {
			return err
		}
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: p.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "payment.created",
			ResourceType:   "payment",
			ResourceID:     p.ID,
			NewValues:      map[string]interface{}{"amount": p.Amount, "invoice_no": p.InvoiceNo, "status": p.Status},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(p.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, status string, limit, offset int) ([]*Payment, int, error) {
	return s.payments.ListByOrganization(ctx, ident.OrganizationID, status, limit, offset)
}

// Transition moves a payment through its lifecycle. The pending→processing
// move is approval-class: the payment's creator cannot start processing it.
func (s *Service) Transition(ctx context.Context, ident *auth.Identity, id uuid.UUID, target string) (*Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(p.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindPayment, p.Status, target); err != nil {
		return nil, err
	}
	if err := s.guard.RequireTransitionRole(ctx, ident, lifecycle.KindPayment, p.Status, target, p.CreatedBy); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.payments.UpdateStatus(ctx, id, p.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(p.Status, target)
		}
		prev, next := audit.StatusChange(p.Status, target)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: p.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "payment.statusUpdated",
			ResourceType:   "payment",
			ResourceID:     p.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	p.Status = target
	return p, nil
}
