package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/correlation"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/invoicing"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
)

const gatewayTag = "smepay"

type FailureReason string

const (
	ReasonMalformedOrderID FailureReason = "malformed_order_id"
	ReasonUnknownOrder     FailureReason = "unknown_order"
	ReasonInvoiceNotFound  FailureReason = "invoice_not_found"
	ReasonAuthFailed       FailureReason = "auth_failed"
	ReasonValidationError  FailureReason = "validation_error"
	ReasonNotConfirmed     FailureReason = "payment_not_confirmed"
	ReasonCreditingFailed  FailureReason = "crediting_failed"
)

// ReconcileError is a terminal failure of the callback state machine.
// InvoiceID is zero only when the identifier could not be parsed;
// PaymentStatus is set for ReasonNotConfirmed.
type ReconcileError struct {
	Reason        FailureReason
	InvoiceID     int
	PaymentStatus string
	Err           error
}

func (e *ReconcileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reconcile %s: %v", e.Reason, e.Err)
	}
	if e.PaymentStatus != "" {
		return fmt.Sprintf("reconcile %s: payment_status=%s", e.Reason, e.PaymentStatus)
	}
	return fmt.Sprintf("reconcile %s", e.Reason)
}

func (e *ReconcileError) Unwrap() error { return e.Err }

// Reconciler drives the second phase: on a processor/browser callback,
// re-validate the order against SMEPay with the invoice's amount of
// record and credit the invoice exactly once.
type Reconciler struct {
	Processor    Processor
	Correlations correlation.Store
	Invoices     invoicing.Invoices
	Audit        invoicing.AuditLog
}

// Reconcile is linear and terminal on first failure. Consuming the
// correlation record before any processor call is the double-credit
// defense: a replayed callback fails with ReasonUnknownOrder.
func (r *Reconciler) Reconcile(ctx context.Context, rawOrderID string) (*models.CreditOutcome, error) {
	invoiceID, err := ParseOrderID(rawOrderID)
	if err != nil {
		r.audit(ctx, map[string]string{"order_id": rawOrderID}, "Malformed Order ID")
		return nil, &ReconcileError{Reason: ReasonMalformedOrderID, Err: err}
	}

	slug, err := r.Correlations.TakeOnce(ctx, rawOrderID)
	if err != nil {
		if errors.Is(err, correlation.ErrNotFound) {
			r.audit(ctx, map[string]string{"order_id": rawOrderID}, "Unknown Order")
		}
		return nil, &ReconcileError{Reason: ReasonUnknownOrder, InvoiceID: invoiceID, Err: err}
	}

	invoice, err := r.Invoices.Get(ctx, invoiceID)
	if err != nil {
		return nil, &ReconcileError{Reason: ReasonInvoiceNotFound, InvoiceID: invoiceID, Err: err}
	}

	token, err := r.Processor.Authenticate(ctx)
	if err != nil {
		return nil, &ReconcileError{Reason: ReasonAuthFailed, InvoiceID: invoiceID, Err: err}
	}

	// The amount of record, never a client-supplied one.
	validation, err := r.Processor.ValidateOrder(ctx, token, invoice.Amount, slug)
	if err != nil {
		return nil, &ReconcileError{Reason: ReasonValidationError, InvoiceID: invoiceID, Err: err}
	}

	if !validation.Paid() {
		r.audit(ctx, auditPayload(validation.Raw), "Validation Failed")
		return nil, &ReconcileError{
			Reason:        ReasonNotConfirmed,
			InvoiceID:     invoiceID,
			PaymentStatus: validation.PaymentStatus,
		}
	}

	txn := &models.Transaction{
		InvoiceID:     invoiceID,
		TransactionID: rawOrderID,
		Amount:        invoice.Amount,
		Fee:           "0.00",
		Gateway:       gatewayTag,
	}
	if err := r.Invoices.AddPayment(ctx, txn); err != nil {
		// Confirmed paid but unrecorded: a financial discrepancy that
		// needs an operator, not a retryable client error.
		r.audit(ctx, map[string]string{"order_id": rawOrderID, "error": err.Error()}, "Crediting Failed")
		return nil, &ReconcileError{Reason: ReasonCreditingFailed, InvoiceID: invoiceID, Err: err}
	}

	r.audit(ctx, auditPayload(validation.Raw), "Successful")
	return &models.CreditOutcome{
		InvoiceID:     invoiceID,
		Amount:        invoice.Amount,
		TransactionID: rawOrderID,
	}, nil
}

func (r *Reconciler) audit(ctx context.Context, payload any, outcome string) {
	if r.Audit != nil {
		r.Audit.Record(ctx, gatewayTag, payload, outcome)
	}
}

func auditPayload(raw json.RawMessage) any {
	if len(raw) == 0 {
		return map[string]string{}
	}
	return raw
}
