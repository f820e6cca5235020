package dispute

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/careops/careops/internal/domain/audit"
	"github.com/careops/careops/internal/platform/apperr"
	"github.com/careops/careops/internal/platform/auth"
	"github.com/careops/careops/internal/platform/db"
	"github.com/careops/careops/internal/platform/lifecycle"
)

type mockRepo struct {
	items map[uuid.UUID]*Dispute
}

func newMockRepo() *mockRepo { return &mockRepo{items: map[uuid.UUID]*Dispute{}} }

func (m *mockRepo) Create(_ context.Context, d *Dispute) error {
	d.ID = uuid.New()
	m.items[d.ID] = d
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Dispute, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return d, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, target, note string) (bool, error) {
	d, ok := m.items[id]
	if !ok || d.Status != expected {
		return false, nil
	}
	d.Status = target
	if note != "" {
		d.ResolutionNote = note
	}
	return true, nil
}

func (m *mockRepo) ListByOrganization(_ context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Dispute, int, error) {
	var out []*Dispute
	for _, d := range m.items {
		if d.OrganizationID == orgID && (status == "" || d.Status == status) {
			out = append(out, d)
		}
	}
	return out, len(out), nil
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
	recorder *mockRecorder
	dir      *fakeDirectory
	orgID    uuid.UUID
}

func newFixture() *fixture {
	orgID := uuid.New()
	dir := &fakeDirectory{orgID: orgID, roles: map[uuid.UUID]string{}}
	guard := auth.NewGuard(auth.NewResolver(dir), dir)
	repo := newMockRepo()
	recorder := &mockRecorder{}
	return &fixture{
		svc:      NewService(repo, guard, recorder, db.PassthroughRunner{}),
		repo:     repo,
		recorder: recorder,
		dir:      dir,
		orgID:    orgID,
	}
}

func (f *fixture) member(role string) *auth.Identity {
	id := uuid.New()
	f.dir.roles[id] = role
	return &auth.Identity{UserID: id, OrganizationID: f.orgID}
}

func (f *fixture) seedDispute(t *testing.T, createdBy uuid.UUID, status string) *Dispute {
	t.Helper()
	d := &Dispute{
		OrganizationID: f.orgID,
		Reason:         "invoice amount does not match the quote",
		Status:         status,
		CreatedBy:      createdBy,
	}
	if err := f.repo.Create(context.Background(), d); err != nil {
		t.Fatalf("seed dispute: %v", err)
	}
	return d
}

func TestCreatorCannotTakeOwnDisputeUnderReview(t *testing.T) {
	f := newFixture()
	creator := f.member(auth.RoleAdmin)
	d := f.seedDispute(t, creator.UserID, lifecycle.DisputeOpen)

	_, err := f.svc.Transition(context.Background(), creator, d.ID, lifecycle.DisputeUnderReview, "")
	if apperr.CodeOf(err) != apperr.CodeForbidden {
		t.Fatalf("expected FORBIDDEN for creator, got %v", err)
	}

	reviewer := f.member(auth.RoleAdmin)
	got, err := f.svc.Transition(context.Background(), reviewer, d.ID, lifecycle.DisputeUnderReview, "")
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.Status != lifecycle.DisputeUnderReview {
		t.Errorf("expected under_review, got %q", got.Status)
	}
}

func TestResolveRequiresNote(t *testing.T) {
	f := newFixture()
	creator := f.member(auth.RoleMember)
	reviewer := f.member(auth.RoleAdmin)

	cases := []struct {
		name string
		note string
		code apperr.Code
	}{
		{"empty note", "", apperr.CodeValidation},
		{"short note", "too short", apperr.CodeValidation},
		{"whitespace padding does not count", "   ok    ", apperr.CodeValidation},
		{"long enough", "replacement part shipped, credit issued", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := f.seedDispute(t, creator.UserID, lifecycle.DisputeUnderReview)
			_, err := f.svc.Transition(context.Background(), reviewer, d.ID, lifecycle.DisputeResolved, tc.note)
			if apperr.CodeOf(err) != tc.code {
				t.Fatalf("note %q: expected code %q, got %v", tc.note, tc.code, err)
			}
		})
	}
}

func TestResolveStoresNoteAndAuditsIt(t *testing.T) {
	f := newFixture()
	creator := f.member(auth.RoleMember)
	reviewer := f.member(auth.RoleAdmin)
	d := f.seedDispute(t, creator.UserID, lifecycle.DisputeUnderReview)

	note := "vendor agreed to reissue the corrected invoice"
	got, err := f.svc.Transition(context.Background(), reviewer, d.ID, lifecycle.DisputeResolved, note)
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.ResolutionNote != note {
		t.Errorf("resolution note not stored, got %q", got.ResolutionNote)
	}

	last := f.recorder.entries[len(f.recorder.entries)-1]
	if last.Action != "dispute.statusUpdated" {
		t.Fatalf("expected dispute.statusUpdated, got %q", last.Action)
	}
	if last.NewValues["resolution_note"] != note {
		t.Error("resolution note missing from audit diff")
	}
}

func TestEscalatedDisputeCanResolve(t *testing.T) {
	f := newFixture()
	creator := f.member(auth.RoleMember)
	reviewer := f.member(auth.RoleOwner)
	d := f.seedDispute(t, creator.UserID, lifecycle.DisputeEscalated)

	got, err := f.svc.Transition(context.Background(), reviewer, d.ID, lifecycle.DisputeResolved, "escalation reviewed, refund approved")
	if err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if got.Status != lifecycle.DisputeResolved {
		t.Errorf("expected resolved, got %q", got.Status)
	}
}

func TestClosedDisputeIsTerminal(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleOwner)
	d := f.seedDispute(t, uuid.New(), lifecycle.DisputeClosed)

	_, err := f.svc.Transition(context.Background(), member, d.ID, lifecycle.DisputeOpen, "")
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION out of closed, got %v", err)
	}
}

func TestFailedTransitionWritesNoAudit(t *testing.T) {
	f := newFixture()
	member := f.member(auth.RoleMember)
	d := f.seedDispute(t, uuid.New(), lifecycle.DisputeOpen)

	// open -> resolved skips under_review and must fail before any write.
	_, err := f.svc.Transition(context.Background(), member, d.ID, lifecycle.DisputeResolved, "note long enough here")
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
	if len(f.recorder.entries) != 0 {
		t.Error("failed transition must not write an audit entry")
	}
}
