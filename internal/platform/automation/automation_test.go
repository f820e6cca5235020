package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/domain/equipment"
	"github.com/careops/careops/internal/domain/servicerequest"
)

type mockRunRecorder struct {
	records []audit.RunRecord
	fail    bool
}

func (m *mockRunRecorder) RecordRun(_ context.Context, rec audit.RunRecord) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.records = append(m.records, rec)
	return nil
}

// stubRequests only implements the scan; the mutation methods are never
// reached by rules.
type stubRequests struct {
	items []*servicerequest.ServiceRequest
	err   error
}

func (s *stubRequests) Create(context.Context, *servicerequest.ServiceRequest) error {
	panic("not used")
}
func (s *stubRequests) GetByID(context.Context, uuid.UUID) (*servicerequest.ServiceRequest, error) {
	panic("not used")
}
func (s *stubRequests) UpdateStatus(context.Context, uuid.UUID, string, string) (bool, error) {
	panic("not used")
}
func (s *stubRequests) ListByOrganization(context.Context, uuid.UUID, string, int, int) ([]*servicerequest.ServiceRequest, int, error) {
	panic("not used")
}

func (s *stubRequests) ListUpdatedBefore(_ context.Context, cutoff time.Time) ([]*servicerequest.ServiceRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*servicerequest.ServiceRequest
	for _, sr := range s.items {
		if sr.UpdatedAt.Before(cutoff) {
			out = append(out, sr)
		}
	}
	return out, nil
}

type stubSupplies struct {
	items []*equipment.SupplyItem
}

func (s *stubSupplies) Create(context.Context, *equipment.SupplyItem) error { panic("not used") }
func (s *stubSupplies) GetByID(context.Context, uuid.UUID) (*equipment.SupplyItem, error) {
	panic("not used")
}
func (s *stubSupplies) AdjustStock(context.Context, uuid.UUID, int) (int, error) {
	panic("not used")
}
func (s *stubSupplies) ListByOrganization(context.Context, uuid.UUID, int, int) ([]*equipment.SupplyItem, int, error) {
	panic("not used")
}

func (s *stubSupplies) ListBelowReorder(context.Context) ([]*equipment.SupplyItem, error) {
	var out []*equipment.SupplyItem
	for _, it := range s.items {
		if it.CurrentStock < it.ReorderPoint {
			out = append(out, it)
		}
	}
	return out, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func staleRequest(status string, age time.Duration) *servicerequest.ServiceRequest {
	return &servicerequest.ServiceRequest{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Status:         status,
		UpdatedAt:      fixedNow().Add(-age),
	}
}

func TestStaleRuleSkipsTerminalStatuses(t *testing.T) {
	requests := &stubRequests{items: []*servicerequest.ServiceRequest{
		staleRequest("pending", 10*24*time.Hour),
		staleRequest("quoted", 9*24*time.Hour),
		staleRequest("completed", 30*24*time.Hour),
		staleRequest("cancelled", 30*24*time.Hour),
		staleRequest("pending", time.Hour),
	}}
	rule := &StaleRequestRule{Requests: requests, Now: fixedNow}

	res, err := rule.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.AffectedCount != 2 {
		t.Errorf("AffectedCount = %d, want 2", res.AffectedCount)
	}
}

func TestRunnerWritesOneRecordPerRun(t *testing.T) {
	requests := &stubRequests{items: []*servicerequest.ServiceRequest{
		staleRequest("pending", 10*24*time.Hour),
	}}
	rule := &StaleRequestRule{Requests: requests, Now: fixedNow}
	rec := &mockRunRecorder{}
	runner := NewRunner(rec, zerolog.Nop(), rule)

	// Two identical runs over unchanged data: same count, two records.
	for i := 0; i < 2; i++ {
		if err := runner.RunOnce(context.Background(), rule); err != nil {
			t.Fatalf("RunOnce() error = %v", err)
		}
	}
	if len(rec.records) != 2 {
		t.Fatalf("expected 2 run records, got %d", len(rec.records))
	}
	for _, r := range rec.records {
		if r.RuleName != "stale-request" || r.Status != audit.RunCompleted {
			t.Errorf("unexpected record %+v", r)
		}
		if r.AffectedCount != 1 {
			t.Errorf("AffectedCount = %d, want 1", r.AffectedCount)
		}
	}
}

func TestZeroMatchStillRecorded(t *testing.T) {
	rule := &StaleRequestRule{Requests: &stubRequests{}, Now: fixedNow}
	rec := &mockRunRecorder{}
	runner := NewRunner(rec, zerolog.Nop(), rule)

	if err := runner.RunOnce(context.Background(), rule); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(rec.records))
	}
	if rec.records[0].AffectedCount != 0 || rec.records[0].Status != audit.RunCompleted {
		t.Errorf("zero-match run recorded as %+v", rec.records[0])
	}
}

func TestFailedScanRecordsFailure(t *testing.T) {
	rule := &StaleRequestRule{
		Requests: &stubRequests{err: errors.New("connection reset")},
		Now:      fixedNow,
	}
	rec := &mockRunRecorder{}
	runner := NewRunner(rec, zerolog.Nop(), rule)

	if err := runner.RunOnce(context.Background(), rule); err == nil {
		t.Fatal("expected scan error to propagate")
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(rec.records))
	}
	r := rec.records[0]
	if r.Status != audit.RunFailed || r.AffectedCount != 0 {
		t.Errorf("failed run recorded as %+v", r)
	}
	if r.Metadata["error"] != "connection reset" {
		t.Errorf("error missing from metadata: %v", r.Metadata)
	}
}

func TestLowStockCountsOrganizations(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()
	supplies := &stubSupplies{items: []*equipment.SupplyItem{
		{ID: uuid.New(), OrganizationID: orgA, CurrentStock: 2, ReorderPoint: 10},
		{ID: uuid.New(), OrganizationID: orgA, CurrentStock: 0, ReorderPoint: 5},
		{ID: uuid.New(), OrganizationID: orgB, CurrentStock: 1, ReorderPoint: 3},
		{ID: uuid.New(), OrganizationID: orgB, CurrentStock: 50, ReorderPoint: 3},
	}}
	rule := &LowStockRule{Supplies: supplies}

	res, err := rule.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.AffectedCount != 3 {
		t.Errorf("AffectedCount = %d, want 3", res.AffectedCount)
	}
	if res.Extra["organizations"] != 2 {
		t.Errorf("organizations = %v, want 2", res.Extra["organizations"])
	}
}

func TestSampleIDsCapped(t *testing.T) {
	var items []*servicerequest.ServiceRequest
	for i := 0; i < 25; i++ {
		items = append(items, staleRequest("pending", 10*24*time.Hour))
	}
	rule := &StaleRequestRule{Requests: &stubRequests{items: items}, Now: fixedNow}
	rec := &mockRunRecorder{}
	runner := NewRunner(rec, zerolog.Nop(), rule)

	if err := runner.RunOnce(context.Background(), rule); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	r := rec.records[0]
	if r.AffectedCount != 25 {
		t.Errorf("AffectedCount = %d, want 25", r.AffectedCount)
	}
	ids, ok := r.Metadata["sample_ids"].([]string)
	if !ok {
		t.Fatalf("sample_ids missing or wrong type: %v", r.Metadata["sample_ids"])
	}
	if len(ids) != 10 {
		t.Errorf("sample_ids length = %d, want 10", len(ids))
	}
}

func TestRunByNameUnknownRule(t *testing.T) {
	runner := NewRunner(&mockRunRecorder{}, zerolog.Nop())
	if err := runner.RunByName(context.Background(), "no-such-rule"); err == nil {
		t.Fatal("expected error for unknown rule name")
	}
}
