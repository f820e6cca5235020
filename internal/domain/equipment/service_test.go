package equipment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type mockRepo struct {
	items map[uuid.UUID]*Equipment
}

func newMockRepo() *mockRepo { return &mockRepo{items: map[uuid.UUID]*Equipment{}} }

func (m *mockRepo) Create(_ context.Context, e *Equipment) error {
	e.ID = uuid.New()
	m.items[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Equipment, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, target string) (bool, error) {
	e, ok := m.items[id]
	if !ok || e.Status != expected {
		return false, nil
	}
	e.Status = target
	return true, nil
}

func (m *mockRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Equipment, int, error) {
	var out []*Equipment
	for _, e := range m.items {
		if e.OrganizationID == orgID && (status == "" || e.Status == status) {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

type mockFailureRepo struct {
	reports []*FailureReport
}

func (m *mockFailureRepo) Create(_ context.Context, r *FailureReport) error {
	r.ID = uuid.New()
	m.reports = append(m.reports, r)
	return nil
}

func (m *mockFailureRepo) ListByEquipment(_ context.Context, orgID, equipmentID uuid.UUID) ([]*FailureReport, error) {
	var out []*FailureReport
	for _, r := range m.reports {
		if r.OrganizationID == orgID && r.EquipmentID == equipmentID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockMaintenanceRepo struct {
	records map[uuid.UUID]*MaintenanceRecord
}

func newMockMaintenanceRepo() *mockMaintenanceRepo {
	return &mockMaintenanceRepo{records: map[uuid.UUID]*MaintenanceRecord{}}
}

func (m *mockMaintenanceRepo) Create(_ context.Context, rec *MaintenanceRecord) error {
	rec.ID = uuid.New()
	m.records[rec.ID] = rec
	return nil
}

func (m *mockMaintenanceRepo) GetByID(_ context.Context, id uuid.UUID) (*MaintenanceRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return rec, nil
}

func (m *mockMaintenanceRepo) Complete(_ context.Context, id uuid.UUID, at time.Time) error {
	rec, ok := m.records[id]
	if !ok || rec.CompletedAt != nil {
		return errors.New("not found")
	}
	rec.CompletedAt = &at
	return nil
}

func (m *mockMaintenanceRepo) ListByEquipment(_ context.Context, orgID, equipmentID uuid.UUID) ([]*MaintenanceRecord, error) {
	var out []*MaintenanceRecord
	for _, rec := range m.records {
		if rec.OrganizationID == orgID && rec.EquipmentID == equipmentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockMaintenanceRepo) ListScheduledBetween(_ context.Context, from, to time.Time) ([]*MaintenanceRecord, error) {
	var out []*MaintenanceRecord
	for _, rec := range m.records {
		if rec.CompletedAt == nil && !rec.ScheduledAt.Before(from) && rec.ScheduledAt.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type mockSupplyRepo struct {
	items map[uuid.UUID]*SupplyItem
}

func newMockSupplyRepo() *mockSupplyRepo { return &mockSupplyRepo{items: map[uuid.UUID]*SupplyItem{}} }

func (m *mockSupplyRepo) Create(_ context.Context, s *SupplyItem) error {
	s.ID = uuid.New()
	m.items[s.ID] = s
	return nil
}

func (m *mockSupplyRepo) GetByID(_ context.Context, id uuid.UUID) (*SupplyItem, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (m *mockSupplyRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int, error) {
	s, ok := m.items[id]
	if !ok {
		return 0, errors.New("not found")
	}
	s.CurrentStock += delta
	if s.CurrentStock < 0 {
		s.CurrentStock = 0
	}
	return s.CurrentStock, nil
}

func (m *mockSupplyRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, limit, offset int) ([]*SupplyItem, int, error) {
	var out []*SupplyItem
	for _, s := range m.items {
		if s.OrganizationID == orgID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (m *mockSupplyRepo) ListBelowReorder(_ context.Context) ([]*SupplyItem, error) {
	var out []*SupplyItem
	for _, s := range m.items {
		if s.CurrentStock < s.ReorderPoint {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, e audit.Entry) (uuid.UUID, error) {
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *mockRecorder) actions() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	svc         *Service
	repo        *mockRepo
	failures    *mockFailureRepo
	maintenance *mockMaintenanceRepo
	supplies    *mockSupplyRepo
	recorder    *mockRecorder
	ident       *auth.Identity
}

func newFixture() *fixture {
	repo := newMockRepo()
	failures := &mockFailureRepo{}
	maintenance := newMockMaintenanceRepo()
	supplies := newMockSupplyRepo()
	recorder := &mockRecorder{}
	svc := NewService(repo, failures, maintenance, supplies, recorder, db.PassthroughRunner{})
	return &fixture{
		svc:         svc,
		repo:        repo,
		failures:    failures,
		maintenance: maintenance,
		supplies:    supplies,
		recorder:    recorder,
		ident:       &auth.Identity{UserID: uuid.New(), OrganizationID: uuid.New()},
	}
}

func (f *fixture) seedEquipment(t *testing.T, status string) *Equipment {
	t.Helper()
	e := &Equipment{
		OrganizationID: f.ident.OrganizationID,
		Name:           "Infusion Pump",
		SerialNumber:   "SN-1001",
		Category:       "infusion",
		Criticality:    CriticalityHigh,
		Status:         status,
		CreatedBy:      f.ident.UserID,
	}
	if err := f.repo.Create(context.Background(), e); err != nil {
		t.Fatalf("seed equipment: %v", err)
	}
	return e
}

func TestCreateStartsAvailable(t *testing.T) {
	f := newFixture()
	e := &Equipment{Name: "Ventilator", SerialNumber: "SN-2002"}

	if err := f.svc.Create(context.Background(), f.ident, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Status != lifecycle.EquipmentAvailable {
		t.Errorf("expected available, got %q", e.Status)
	}
	if e.OrganizationID != f.ident.OrganizationID {
		t.Error("organization not stamped from caller identity")
	}
	if e.Criticality != CriticalityMedium {
		t.Errorf("expected medium default criticality, got %q", e.Criticality)
	}
}

func TestTransitionValidAndAudited(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	got, err := f.svc.Transition(context.Background(), f.ident, e.ID, lifecycle.EquipmentInUse)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.Status != lifecycle.EquipmentInUse {
		t.Errorf("expected in_use, got %q", got.Status)
	}
	if len(f.recorder.entries) != 1 || f.recorder.entries[0].Action != "equipment.statusChanged" {
		t.Fatalf("expected one statusChanged audit entry, got %v", f.recorder.actions())
	}
	prev := f.recorder.entries[0].PreviousValues["status"]
	next := f.recorder.entries[0].NewValues["status"]
	if prev != lifecycle.EquipmentAvailable || next != lifecycle.EquipmentInUse {
		t.Errorf("audit diff wrong: %v -> %v", prev, next)
	}
}

func TestTransitionInvalidRejected(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	// available -> damaged is not in the table.
	_, err := f.svc.Transition(context.Background(), f.ident, e.ID, lifecycle.EquipmentDamaged)
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
	if len(f.recorder.entries) != 0 {
		t.Error("rejected transition must not write an audit entry")
	}
}

func TestTransitionTerminalStateRejected(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentRetired)

	_, err := f.svc.Transition(context.Background(), f.ident, e.ID, lifecycle.EquipmentAvailable)
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION out of retired, got %v", err)
	}
}

func TestTransitionCrossTenantWriteForbidden(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	stranger := &auth.Identity{UserID: uuid.New(), OrganizationID: uuid.New()}
	_, err := f.svc.Transition(context.Background(), stranger, e.ID, lifecycle.EquipmentInUse)
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN on cross-tenant write, got %v", err)
	}
}

func TestGetCrossTenantReadsAsNotFound(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	stranger := &auth.Identity{UserID: uuid.New(), OrganizationID: uuid.New()}
	_, err := f.svc.Get(context.Background(), stranger, e.ID)
	if apperr.CodeOf(err) != apperr.CodeNotFound {
		t.Fatalf("expected NOT_FOUND on cross-tenant read, got %v", err)
	}
}

func TestCriticalFailureMovesToDamaged(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentInUse)

	fr := &FailureReport{EquipmentID: e.ID, Urgency: CriticalityCritical, Description: "sparks from the casing"}
	if err := f.svc.ReportFailure(context.Background(), f.ident, fr); err != nil {
		t.Fatalf("ReportFailure() error = %v", err)
	}
	if e.Status != lifecycle.EquipmentDamaged {
		t.Errorf("expected damaged after critical report, got %q", e.Status)
	}
	actions := f.recorder.actions()
	if len(actions) != 2 || actions[0] != "equipment.failureReported" || actions[1] != "equipment.statusChanged" {
		t.Fatalf("unexpected audit actions %v", actions)
	}
}

func TestCriticalFailureNoMoveWhenTransitionClosed(t *testing.T) {
	f := newFixture()
	// available -> damaged is not a table entry, so the equipment stays put.
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	fr := &FailureReport{EquipmentID: e.ID, Urgency: CriticalityCritical, Description: "display flickers"}
	if err := f.svc.ReportFailure(context.Background(), f.ident, fr); err != nil {
		t.Fatalf("ReportFailure() error = %v", err)
	}
	if e.Status != lifecycle.EquipmentAvailable {
		t.Errorf("expected status unchanged, got %q", e.Status)
	}
	actions := f.recorder.actions()
	if len(actions) != 1 || actions[0] != "equipment.failureReported" {
		t.Fatalf("expected only the failureReported entry, got %v", actions)
	}
}

func TestCriticalFailureOnDamagedEquipmentNoSecondAudit(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentDamaged)

	fr := &FailureReport{EquipmentID: e.ID, Urgency: CriticalityCritical, Description: "still broken"}
	if err := f.svc.ReportFailure(context.Background(), f.ident, fr); err != nil {
		t.Fatalf("ReportFailure() error = %v", err)
	}
	actions := f.recorder.actions()
	if len(actions) != 1 {
		t.Fatalf("already-damaged equipment must not produce a status audit, got %v", actions)
	}
}

func TestNonCriticalFailureNeverMoves(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentInUse)

	fr := &FailureReport{EquipmentID: e.ID, Urgency: CriticalityHigh, Description: "intermittent alarm"}
	if err := f.svc.ReportFailure(context.Background(), f.ident, fr); err != nil {
		t.Fatalf("ReportFailure() error = %v", err)
	}
	if e.Status != lifecycle.EquipmentInUse {
		t.Errorf("non-critical report changed status to %q", e.Status)
	}
}

func TestCompleteMaintenanceTwiceRejected(t *testing.T) {
	f := newFixture()
	e := f.seedEquipment(t, lifecycle.EquipmentAvailable)

	m := &MaintenanceRecord{EquipmentID: e.ID, ScheduledAt: time.Now().Add(24 * time.Hour)}
	if err := f.svc.ScheduleMaintenance(context.Background(), f.ident, m); err != nil {
		t.Fatalf("ScheduleMaintenance() error = %v", err)
	}
	if err := f.svc.CompleteMaintenance(context.Background(), f.ident, m.ID); err != nil {
		t.Fatalf("CompleteMaintenance() error = %v", err)
	}
	err := f.svc.CompleteMaintenance(context.Background(), f.ident, m.ID)
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION on double completion, got %v", err)
	}
}

func TestAdjustSupplyStockAudited(t *testing.T) {
	f := newFixture()
	item := &SupplyItem{Name: "IV Sets", CurrentStock: 40, ReorderPoint: 25}
	if err := f.svc.CreateSupply(context.Background(), f.ident, item); err != nil {
		t.Fatalf("CreateSupply() error = %v", err)
	}

	got, err := f.svc.AdjustSupplyStock(context.Background(), f.ident, item.ID, -15)
	if err != nil {
		t.Fatalf("AdjustSupplyStock() error = %v", err)
	}
	if got.CurrentStock != 25 {
		t.Errorf("expected 25, got %d", got.CurrentStock)
	}

	last := f.recorder.entries[len(f.recorder.entries)-1]
	if last.Action != "supply.stockAdjusted" {
		t.Errorf("expected supply.stockAdjusted audit, got %q", last.Action)
	}
	if last.PreviousValues["current_stock"] != 40 || last.NewValues["current_stock"] != 25 {
		t.Errorf("audit diff wrong: %v -> %v", last.PreviousValues, last.NewValues)
	}
}

func TestAdjustSupplyStockZeroDeltaRejected(t *testing.T) {
	f := newFixture()
	item := &SupplyItem{Name: "Gauze", CurrentStock: 10, ReorderPoint: 5}
	if err := f.svc.CreateSupply(context.Background(), f.ident, item); err != nil {
		t.Fatalf("CreateSupply() error = %v", err)
	}

	_, err := f.svc.AdjustSupplyStock(context.Background(), f.ident, item.ID, 0)
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION for zero delta, got %v", err)
	}
}
