// Package invoicing is the gateway's view of the invoicing system:
// the amount of record for an invoice, the payment ledger, and the
// gateway transaction log.
package invoicing

import (
	"context"
	"errors"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrDuplicateTransaction = errors.New("transaction already recorded")
)

type Invoices interface {
	// Get returns the invoice of record. The amount it carries is the
	// only amount trusted during validation and crediting.
	Get(ctx context.Context, invoiceID int) (*models.Invoice, error)
	// AddPayment records a credit against the invoice and marks it
	// paid. The transaction id is the gateway order identifier and is
	// unique per payment attempt.
	AddPayment(ctx context.Context, txn *models.Transaction) error
}

// AuditLog records gateway activity for operator review. Recording is
// fire-and-forget: a failed write is logged, never propagated.
type AuditLog interface {
	Record(ctx context.Context, gateway string, payload any, outcome string)
}
