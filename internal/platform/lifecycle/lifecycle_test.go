package lifecycle

import (
	"testing"

	"github.com/careops/careops/internal/platform/apperr"
)

var allKinds = []Kind{
	KindEquipment, KindServiceRequest, KindQuote, KindDispute, KindTicket, KindPayment,
}

// Every transition target must itself be a key in the same table, so no move
// can land in a state the table does not know.
func TestTablesAreClosed(t *testing.T) {
	for _, kind := range allKinds {
		table := tables[kind]
		if len(table) == 0 {
			t.Fatalf("kind %q has no table", kind)
		}
		for from, tos := range table {
			for to := range tos {
				if _, ok := table[to]; !ok {
					t.Errorf("%s: %s -> %s targets a state missing from the table", kind, from, to)
				}
			}
		}
	}
}

func TestEveryKindHasATerminalState(t *testing.T) {
	for _, kind := range allKinds {
		found := false
		for _, s := range States(kind) {
			if IsTerminal(kind, s) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("kind %q has no terminal state", kind)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		kind Kind
		from string
		to   string
		want bool
	}{
		{KindEquipment, EquipmentAvailable, EquipmentInUse, true},
		{KindEquipment, EquipmentAvailable, EquipmentDamaged, false},
		{KindEquipment, EquipmentRetired, EquipmentAvailable, false},
		{KindServiceRequest, RequestPending, RequestQuoted, true},
		{KindServiceRequest, RequestRejected, RequestPending, true},
		{KindServiceRequest, RequestCompleted, RequestPending, false},
		{KindQuote, QuoteSubmitted, QuoteAccepted, true},
		{KindQuote, QuoteDraft, QuoteAccepted, false},
		{KindDispute, DisputeEscalated, DisputeResolved, true},
		{KindTicket, TicketOpen, TicketResolved, false},
		{KindTicket, TicketResolved, TicketInProgress, true},
		{KindPayment, PaymentFailed, PaymentPending, true},
		{KindPayment, PaymentPaid, PaymentProcessing, false},
		{Kind("unknown"), "a", "b", false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.kind, tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s, %s) = %v, want %v", tc.kind, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidateCarriesBothStatuses(t *testing.T) {
	err := Validate(KindTicket, TicketOpen, TicketClosed)
	if apperr.CodeOf(err) != apperr.CodeInvalidTransition {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
	var appErr *apperr.Error
	if !apperr.As(err, &appErr) {
		t.Fatal("expected *apperr.Error")
	}
	if appErr.Details["currentStatus"] != TicketOpen || appErr.Details["targetStatus"] != TicketClosed {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestApprovalClassTransitions(t *testing.T) {
	approvals := []struct {
		kind Kind
		from string
		to   string
	}{
		{KindServiceRequest, RequestPending, RequestQuoted},
		{KindQuote, QuoteSubmitted, QuoteAccepted},
		{KindDispute, DisputeOpen, DisputeUnderReview},
		{KindPayment, PaymentPending, PaymentProcessing},
	}
	for _, a := range approvals {
		if !ApprovalClass(a.kind, a.from, a.to) {
			t.Errorf("ApprovalClass(%s, %s, %s) = false, want true", a.kind, a.from, a.to)
		}
		// Approval-class moves must also be legal table moves.
		if !CanTransition(a.kind, a.from, a.to) {
			t.Errorf("approval move %s: %s -> %s missing from the table", a.kind, a.from, a.to)
		}
	}

	if ApprovalClass(KindServiceRequest, RequestQuoted, RequestAccepted) {
		t.Error("quoted -> accepted is not approval-class")
	}
	if ApprovalClass(KindTicket, TicketOpen, TicketInProgress) {
		t.Error("tickets have no approval-class moves")
	}
	if ApprovalClass(KindEquipment, EquipmentAvailable, EquipmentInUse) {
		t.Error("equipment has no approval-class moves")
	}
}
