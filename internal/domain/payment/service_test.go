package payment

import (
	"context"
	"errors"
	"fmt"
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
	items map[uuid.UUID]*Payment
}

func newMockRepo() *mockRepo { return &mockRepo{items: map[uuid.UUID]*Payment{}} }

func (m *mockRepo) Create(_ context.Context, p *Payment) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, target string) (bool, error) {
	p, ok := m.items[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = target
	return true, nil
}

func (m *mockRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Payment, int, error) {
	var out []*Payment
	for _, p := range m.items {
		if p.OrganizationID == orgID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

// mockCounter mirrors the per-date upsert: one dense sequence per day key.
type mockCounter struct {
	values map[string]int
}

func newMockCounter() *mockCounter { return &mockCounter{values: map[string]int{}} }

func (m *mockCounter) NextNumber(_ context.Context, day time.Time) (int, error) {
	key := day.Format("2006-01-02")
	m.values[key]++
	return m.values[key], nil
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, e audit.Entry) (uuid.UUID, error) {
	e.ID = uuid.New()
	m.entries = append(m.entries, e)
	return e.ID, nil
}

type fakeDirectory struct {
	orgID uuid.UUID
	roles map[uuid.UUID]string
}

func (d *fakeDirectory) UserByEmail(_ context.Context, email string) (*auth.DirectoryUser, error) {
	return nil, errors.New("not found")
}

func (d *fakeDirectory) UserByID(_ context.Context, id uuid.UUID) (*auth.DirectoryUser, error) {
	if _, ok := d.roles[id]; !ok {
		return nil, errors.New("not found")
	}
	return &auth.DirectoryUser{ID: id}, nil
}

func (d *fakeDirectory) ActiveMembership(_ context.Context, userID uuid.UUID) (*auth.DirectoryMembership, error) {
	role, ok := d.roles[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &auth.DirectoryMembership{OrganizationID: d.orgID, Role: role}, nil
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	counter  *mockCounter
	recorder *mockRecorder
	dir      *fakeDirectory
	orgID    uuid.UUID
}

func newFixture() *fixture {
	orgID := uuid.New()
	dir := &fakeDirectory{orgID: orgID, roles: map[uuid.UUID]string{}}
	guard := auth.NewGuard(auth.NewResolver(dir), dir)
	repo := newMockRepo()
	counter := newMockCounter()
	recorder := &mockRecorder{}
	svc := NewService(repo, counter, guard, recorder, db.PassthroughRunner{})
	return &fixture{svc: svc, repo: repo, counter: counter, recorder: recorder, dir: dir, orgID: orgID}
}

func (f *fixture) member(role string) *auth.Identity {
	id := uuid.New()
	f.dir.roles[id] = role
	return &auth.Identity{UserID: id, OrganizationID: f.orgID}
}

func TestCreateAssignsSequentialInvoiceNumbers(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleMember)
	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return day }

	for i := 1; i <= 3; i++ {
		p := &Payment{Amount: int64(i) * 1000}
		if err := f.svc.Create(context.Background(), member, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		want := fmt.Sprintf("INV-20260314-%04d", i)
		if p.InvoiceNo != want {
			t.Errorf("invoice %d: got %q, want %q", i, p.InvoiceNo, want)
		}
	}
}

func TestInvoiceCounterResetsPerDay(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleMember)

	f.svc.now = func() time.Time { return time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC) }
	p1 := &Payment{Amount: 500}
	if err := f.svc.Create(context.Background(), member, p1); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.svc.now = func() time.Time { return time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC) }
	p2 := &Payment{Amount: 700}
	if err := f.svc.Create(context.Background(), member, p2); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p1.InvoiceNo != "INV-20260314-0001" || p2.InvoiceNo != "INV-20260315-0001" {
		t.Errorf("per-day sequences wrong: %q, %q", p1.InvoiceNo, p2.InvoiceNo)
	}
}

func TestCreatorCannotStartProcessing(t *testing.T) {
	f := newFixture()
	creator := f.member(auth.RoleOwner)

	p := &Payment{Amount: 25000}
	if err := f.svc.Create(context.Background(), creator, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := f.svc.Transition(context.Background(), creator, p.ID, lifecycle.PaymentProcessing)
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for creator, got %v", err)
	}

	approver := f.member(auth.RoleAdmin)
	got, err := f.svc.Transition(context.Background(), approver, p.ID, lifecycle.PaymentProcessing)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.Status != lifecycle.PaymentProcessing {
		t.Errorf("expected processing, got %q", got.Status)
	}
}

func TestFailedPaymentReturnsToPending(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleAdmin)
	p := &Payment{OrganizationID: f.orgID, Amount: 100, Status: lifecycle.PaymentFailed, CreatedBy: uuid.New()}
	if err := f.repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	got, err := f.svc.Transition(context.Background(), member, p.ID, lifecycle.PaymentPending)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.Status != lifecycle.PaymentPending {
		t.Errorf("expected pending, got %q", got.Status)
	}
}

func TestRefundOnlyFromPaid(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleAdmin)

	p := &Payment{OrganizationID: f.orgID, Amount: 100, Status: lifecycle.PaymentProcessing, CreatedBy: uuid.New()}
	if err := f.repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	_, err := f.svc.Transition(context.Background(), member, p.ID, lifecycle.PaymentRefunded)
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestZeroAmountRejected(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleMember)

	err := f.svc.Create(context.Background(), member, &Payment{Amount: 0})
	if apperr.CodeOf(err) != apperr.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if len(f.counter.values) != 0 {
		t.Error("rejected payment must not consume a counter value")
	}
}
