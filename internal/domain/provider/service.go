package provider

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
)

type Service struct {
	accounts Repository
	certs    CertificationRepository
	recorder audit.Recorder
	runner   db.Runner
}

func NewService(accounts Repository, certs CertificationRepository, recorder audit.Recorder, runner db.Runner) *Service {
	return &Service{accounts: accounts, certs: certs, recorder: recorder, runner: runner}
}

func (s *Service) Create(ctx context.Context, ident *auth.Identity, a *Account) error {
	if strings.TrimSpace(a.CompanyName) == "" {
		return apperr.Validation("company name is required", "कंपनी का नाम आवश्यक है")
	}
	if len(a.ServiceCategories) == 0 {
		return apperr.Validation("at least one service category is required", "कम से कम एक सेवा श्रेणी आवश्यक है")
	}

	a.OrganizationID = ident.OrganizationID
	a.CreatedBy = ident.UserID

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, a); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: a.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "provider.created",
			ResourceType:   "providerAccount",
			ResourceID:     a.ID,
			NewValues:      map[string]interface{}{"company_name": a.CompanyName, "service_categories": a.ServiceCategories},
		})
		return err
	})
}

func (s *Service) Get(ctx context.Context, ident *auth.Identity, id uuid.UUID) (*Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckRead(a.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, ident *auth.Identity, limit, offset int) ([]*Account, int, error) {
	return s.accounts.ListByOrganization(ctx, ident.OrganizationID, limit, offset)
}

func (s *Service) Update(ctx context.Context, ident *auth.Identity, id uuid.UUID, companyName string, categories []string) (*Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	if err := auth.CheckWrite(a.OrganizationID, ident.OrganizationID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(companyName) == "" {
		return nil, apperr.Validation("company name is required", "कंपनी का नाम आवश्यक है")
	}
	if len(categories) == 0 {
		return nil, apperr.Validation("at least one service category is required", "कम से कम एक सेवा श्रेणी आवश्यक है")
	}

	prev := map[string]interface{}{"company_name": a.CompanyName, "service_categories": a.ServiceCategories}
	a.CompanyName = companyName
	a.ServiceCategories = categories

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Update(ctx, a); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: a.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "provider.updated",
			ResourceType:   "providerAccount",
			ResourceID:     a.ID,
			PreviousValues: prev,
			NewValues:      map[string]interface{}{"company_name": companyName, "service_categories": categories},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) AddCertification(ctx context.Context, ident *auth.Identity, c *Certification) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperr.Validation("certification name is required", "प्रमाणपत्र का नाम आवश्यक है")
	}

	a, err := s.accounts.GetByID(ctx, c.ProviderID)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(a.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}

	c.OrganizationID = a.OrganizationID
	c.CreatedBy = ident.UserID

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.certs.Create(ctx, c); err != nil {
			return err
		}
		vals := map[string]interface{}{"provider_id": a.ID.String(), "name": c.Name}
		if c.ExpiresAt != nil {
			vals["expires_at"] = c.ExpiresAt.Format(time.RFC3339)
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: a.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "provider.certificationAdded",
			ResourceType:   "certification",
			ResourceID:     c.ID,
			NewValues:      vals,
		})
		return err
	})
}

func (s *Service) RemoveCertification(ctx context.Context, ident *auth.Identity, id uuid.UUID) error {
	c, err := s.certs.GetByID(ctx, id)
	if err != nil {
		return apperr.ErrNotFound
	}
	if err := auth.CheckWrite(c.OrganizationID, ident.OrganizationID); err != nil {
		return err
	}

	return s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.certs.Delete(ctx, id); err != nil {
			return err
		}
		_, err := s.recorder.Record(ctx, audit.Entry{
			OrganizationID: c.OrganizationID,
			ActorID:        ident.UserID,
			Action:         "provider.certificationRemoved",
			ResourceType:   "certification",
			ResourceID:     c.ID,
			PreviousValues: map[string]interface{}{"name": c.Name},
		})
		return err
	})
}

func (s *Service) ListCertifications(ctx context.Context, ident *auth.Identity, providerID uuid.UUID) ([]*Certification, error) {
	return s.certs.ListByProvider(ctx, ident.OrganizationID, providerID)
}
