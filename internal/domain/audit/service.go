package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder is the write surface the other domain services depend on. Record
// must be called inside the same unit of work as the mutation it documents.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (uuid.UUID, error)
}

// RunRecorder is the sibling surface the automation runner writes through.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

type Service struct {
	entries EntryRepository
	runs    RunRepository
	logger  zerolog.Logger
}

func NewService(entries EntryRepository, runs RunRepository, logger zerolog.Logger) *Service {
	return &Service{entries: entries, runs: runs, logger: logger}
}

// Record appends one audit entry. The repository write joins the caller's
// context transaction, so the entry commits or rolls back with its mutation.
// A structured log line mirrors every entry for operational visibility.
func (s *Service) Record(ctx context.Context, entry Entry) (uuid.UUID, error) {
	if err := s.entries.Create(ctx, &entry); err != nil {
		return uuid.Nil, err
	}

	s.logger.Info().
		Str("type", "audit_entry").
		Str("org_id", entry.OrganizationID.String()).
		Str("actor_id", entry.ActorID.String()).
		Str("action", entry.Action).
		Str("resource_type", entry.ResourceType).
		Str("resource_id", entry.ResourceID.String()).
		Msg("audit")

	return entry.ID, nil
}

// RecordRun appends one automation run record.
func (s *Service) RecordRun(ctx context.Context, rec RunRecord) error {
	if err := s.runs.Create(ctx, &rec); err != nil {
		return err
	}

	s.logger.Info().
		Str("type", "automation_run").
		Str("rule", rec.RuleName).
		Str("status", rec.Status).
		Int("affected", rec.AffectedCount).
		Msg("automation rule finished")

	return nil
}

// ListByOrganization returns the org's audit trail, newest first.
func (s *Service) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.entries.ListByOrganization(ctx, orgID, limit, offset)
}

// ListByResource returns the full trail of one resource in creation order.
func (s *Service) ListByResource(ctx context.Context, orgID uuid.UUID, resourceType string, resourceID uuid.UUID) ([]*Entry, error) {
	return s.entries.ListByResource(ctx, orgID, resourceType, resourceID)
}

// ListRuns returns automation run records, optionally filtered by rule.
func (s *Service) ListRuns(ctx context.Context, ruleName string, limit, offset int) ([]*RunRecord, int, error) {
	return s.runs.List(ctx, ruleName, limit, offset)
}
