package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payment maps to the payment table. The pending→processing move is
// approval-class. Every payment gets an invoice number from the per-date
// counter at creation, inside the same transaction.
type Payment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Amount         int64     `db:"amount" json:"amount"`
	InvoiceNo      string    `db:"invoice_no" json:"invoice_no"`
	Status         string    `db:"status" json:"status"`
	CreatedBy      uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// FormatInvoiceNo renders INV-YYYYMMDD-NNNN from a date and a sequence value.
func FormatInvoiceNo(day time.Time, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", day.Format("20060102"), seq)
}
