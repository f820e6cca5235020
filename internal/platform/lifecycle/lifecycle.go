// Package lifecycle validates resource status transitions against static
// per-kind tables. Every resource kind owns its own table; the tables are
// data, not code branches, so the seven workflows share one engine.
package lifecycle

import (
	"github.com/careops/careops/internal/platform/apperr"
)

// Kind names a lifecycle resource family. Tables are not interchangeable
// between kinds.
type Kind string

const (
	KindEquipment      Kind = "equipment"
	KindServiceRequest Kind = "serviceRequest"
	KindQuote          Kind = "quote"
	KindDispute        Kind = "dispute"
	KindTicket         Kind = "ticket"
	KindPayment        Kind = "payment"
)

// Table maps each state to the set of states reachable from it. A state with
// an empty (or absent) outgoing set is terminal.
type Table map[string]map[string]bool

// CanTransition reports whether kind permits moving from one status to
// another. Unknown kinds and unknown source states permit nothing.
func CanTransition(kind Kind, from, to string) bool {
	table, ok := tables[kind]
	if !ok {
		return false
	}
	return table[from][to]
}

// Validate returns INVALID_TRANSITION (carrying both statuses) when the move
// is not in the kind's table.
func Validate(kind Kind, from, to string) error {
	if !CanTransition(kind, from, to) {
		return apperr.InvalidTransition(from, to)
	}
	return nil
}

// IsTerminal reports whether status has no outgoing transitions for kind.
func IsTerminal(kind Kind, status string) bool {
	table, ok := tables[kind]
	if !ok {
		return true
	}
	return len(table[status]) == 0
}

// States returns all states known to the kind's table, sources and targets
// alike. Used by table-closure tests and the automation scans.
func States(kind Kind) []string {
	table, ok := tables[kind]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for from, tos := range table {
		if !seen[from] {
			seen[from] = true
			out = append(out, from)
		}
		for to := range tos {
			if !seen[to] {
				seen[to] = true
				out = append(out, to)
			}
		}
	}
	return out
}

// ApprovalClass reports whether the from→to move for kind is an
// approval-class transition: restricted to owner/admin roles and subject to
// self-action prevention.
func ApprovalClass(kind Kind, from, to string) bool {
	return approvalTransitions[kind][from] == to
}
