package servicerequest

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
	requests Repository
	quotes   QuoteRepository
	guard    *auth.Guard
	recorder audit.Recorder
	runner   db.Runner
}

func NewService(requests Repository, quotes QuoteRepository, guard *auth.Guard, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{requests: requests, quotes: quotes, guard: guard, recorder: recorder, runner: runner}
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, sr *ServiceRequest) error {
	if sr.Title == "" {
		return apperr.Validation("request title is required", "अनुरोध का शीर्षक आवश्यक है")
	}
	if sr.Category == "" {
		return apperr.Validation("request category is required", "अनुरोध की श्रेणी आवश्यक है")
	}

	sr.OrganizationID = ident.OrganizationID
	sr.CreatedBy = ident.UserID
	sr.Status = lifecycle.RequestPending

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, sr); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: sr.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "serviceRequest.created",
			ResourceType:   "serviceRequest",
			ResourceID:     sr.ID,
			NewValues:      map[string]interface{}{"title": sr.Title, "category": sr.Category, "status": sr.Status},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(sr.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, status string, limit, offset int) ([]*ServiceRequest, int, error) {
	return s.requests.ListByOrganization(ctx, ident.OrganizationID, status, limit, offset)
}

// Transition moves a request through its lifecycle table. The pending→quoted
// move is approval-class: the request's creator is blocked first, then
// member-role callers.
func (s *Service) Transition(ctx context.Context, ident *auth.Identity, id uuid.UUID, target string) (*ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(sr.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindServiceRequest, sr.Status, target); err != nil {
		return nil, err
	}
	if err := s.guard.RequireTransitionRole(ctx, ident, lifecycle.KindServiceRequest, sr.Status, target, sr.CreatedBy); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.requests.UpdateStatus(ctx, id, sr.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(sr.Status, target)
		}
		prev, next := audit.StatusChange(sr.Status, target)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: sr.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "serviceRequest.statusUpdated",
			ResourceType:   "serviceRequest",
			ResourceID:     sr.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	sr.Status = target
	return sr, nil
}

// CreateQuote files a draft quote against a pending or quoted request.
func (s *Service) CreateQuote(ctx context.Context, ident *auth.Identity, q *Quote) error {
	if q.Amount <= 0 {
		return apperr.Validation("quote amount must be positive", "उद्धरण राशि धनात्मक होनी चाहिए")
	}

	sr, err := s.requests.GetByID(ctx, q.RequestID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(sr.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}
	if sr.Status != lifecycle.RequestPending && sr.Status != lifecycle.RequestQuoted {
		return apperr.Validation("quotes can only be filed against pending or quoted requests", "उद्धरण केवल pending या quoted अनुरोध पर दर्ज हो सकता है")
	}

	q.OrganizationID = sr.OrganizationID
	q.CreatedBy = ident.UserID
	q.Status = lifecycle.QuoteDraft

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.quotes.Create(ctx, q); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: q.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "quote.created",
			ResourceType:   "quote",
			ResourceID:     q.ID,
			NewValues:      map[string]interface{}{"request_id": q.RequestID.String(), "amount": q.Amount, "status": q.Status},
		})
		return err
	})
}

// TransitionQuote moves a quote through its lifecycle table. The
// submitted→accepted move is approval-class, so a quote's creator can submit
// but never accept it.
func (s *Service) TransitionQuote(ctx context.Context, ident *auth.Identity, id uuid.UUID, target string) (*Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(q.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if err := lifecycle.Validate(lifecycle.KindQuote, q.Status, target); err != nil {
		return nil, err
	}
	if err := s.guard.RequireTransitionRole(ctx, ident, lifecycle.KindQuote, q.Status, target, q.CreatedBy); err != nil {
		return nil, err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		moved, err := s.quotes.UpdateStatus(ctx, id, q.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return apperr.InvalidTransition(q.Status, target)
		}
		prev, next := audit.StatusChange(q.Status, target)
		_, err = s.recorder.Record(ctx, audit.Entry{
			OrganizationID: q.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "quote.statusUpdated",
			ResourceType:   "quote",
			ResourceID:     q.ID,
			PreviousValues: prev,
			NewValues:      next,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	q.Status = target
	return q, nil
}

func (s *Service) ListQuotes(ctx context.Context, ident *auth.Identity, requestID uuid.UUID) ([]*Quote, error) {
	return s.quotes.ListByRequest(ctx, ident.OrganizationID, requestID)
}
