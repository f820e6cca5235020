package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockEntryRepo struct {
	entries []*Entry
	failing bool
}

func (m *mockEntryRepo) Create(_ context.Context, e *Entry) error {
	if m.failing {
		return errors.New("insert failed")
	}
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockEntryRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockEntryRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *mockEntryRepo) ListByResource(_ context.Context, orgID uuid.UUID, resourceType string, resourceID uuid.UUID) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.OrganizationID == orgID && e.ResourceType == resourceType && e.ResourceID == resourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockRunRepo struct {
	runs []*RunRecord
}

func (m *mockRunRepo) Create(_ context.Context, rec *RunRecord) error {
	rec.ID = uuid.New()
	m.runs = append(m.runs, rec)
	return nil
}

func (m *mockRunRepo) List(_ context.Context, ruleName string, limit, offset int) ([]*RunRecord, int, error) {
	var out []*RunRecord
	for _, r := range m.runs {
		if ruleName == "" || r.RuleName == ruleName {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockEntryRepo, *mockRunRepo) {
	entries := &mockEntryRepo{}
	runs := &mockRunRepo{}
	return NewService(entries, runs, zerolog.Nop()), entries, runs
}

func TestRecordAssignsID(t *testing.T) {
	svc, repo, _ := newTestService()

	id, err := svc.Record(context.Background(), Entry{
		OrganizationID: uuid.New(),
		ActorID:        uuid.New(),
		Action:         "equipment.statusChanged",
		ResourceType:   "equipment",
		ResourceID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil entry id")
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.entries))
	}
}

func TestRecordPropagatesRepoError(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failing = true

	if _, err := svc.Record(context.Background(), Entry{}); err == nil {
		t.Fatal("expected error from failing repo")
	}
}

func TestListByResourceFiltersTenant(t *testing.T) {
	svc, _, _ := newTestService()
	orgA, orgB := uuid.New(), uuid.New()
	resID := uuid.New()

	for _, org := range []uuid.UUID{orgA, orgB} {
		if _, err := svc.Record(context.Background(), Entry{
			OrganizationID: org,
			ActorID:        uuid.New(),
			Action:         "ticket.statusChanged",
			ResourceType:   "ticket",
			ResourceID:     resID,
		}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	items, err := svc.ListByResource(context.Background(), orgA, "ticket", resID)
	if err != nil {
		t.Fatalf("ListByResource() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 entry for orgA, got %d", len(items))
	}
	if items[0].OrganizationID != orgA {
		t.Error("entry from another organization leaked into the result")
	}
}

func TestRecordRunKeepsZeroMatchRuns(t *testing.T) {
	svc, _, runs := newTestService()

	err := svc.RecordRun(context.Background(), RunRecord{
		RuleName:      "maintenance-reminder",
		Status:        RunCompleted,
		AffectedCount: 0,
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}
	if len(runs.runs) != 1 {
		t.Fatalf("expected a run record even with zero matches, got %d", len(runs.runs))
	}
}

func TestListRunsFiltersByRule(t *testing.T) {
	svc, _, _ := newTestService()

	for _, name := range []string{"stale-request", "stale-request", "cert-expiry"} {
		if err := svc.RecordRun(context.Background(), RunRecord{RuleName: name, Status: RunCompleted}); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	items, total, err := svc.ListRuns(context.Background(), "stale-request", 50, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 stale-request runs, got total=%d len=%d", total, len(items))
	}
}

func TestStatusChangeCapturesOnlyStatus(t *testing.T) {
	prev, next := StatusChange("pending", "quoted")
	if prev["status"] != "pending" || next["status"] != "quoted" {
		t.Fatalf("unexpected diff: prev=%v next=%v", prev, next)
	}
	if len(prev) != 1 || len(next) != 1 {
		t.Error("diff should contain only the status field")
	}
}
