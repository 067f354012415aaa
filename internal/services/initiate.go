package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/correlation"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/invoicing"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/smepay"
)

var (
	ErrInvalidInvoice     = errors.New("invalid invoice id")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrMissingCredentials = errors.New("smepay credentials not configured")
)

// Processor is the slice of the SMEPay client the services need.
type Processor interface {
	Authenticate(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, token string, req smepay.OrderRequest) (string, error)
	ValidateOrder(ctx context.Context, token, amount, slug string) (smepay.Validation, error)
}

// Initiator drives the first phase: authenticate, create the processor
// order, persist the order-id→slug correlation, and hand back what the
// checkout widget needs.
type Initiator struct {
	Processor    Processor
	Correlations correlation.Store
	Audit        invoicing.AuditLog
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

func (i *Initiator) Initiate(ctx context.Context, invoiceID int, amount float64, customer models.Customer) (*models.Checkout, error) {
	if invoiceID <= 0 {
		return nil, ErrInvalidInvoice
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if i.ClientID == "" || i.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	orderID := NewOrderID(invoiceID)

	token, err := i.Processor.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	slug, err := i.Processor.CreateOrder(ctx, token, smepay.OrderRequest{
		OrderID:     orderID,
		Amount:      FormatAmount(amount),
		CallbackURL: i.CallbackURL,
		Customer:    sanitizeCustomer(customer),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// A lost correlation orphans this attempt (the callback will be
	// rejected) but the buyer can retry, so it does not abort the flow.
	if err := i.Correlations.Put(ctx, orderID, slug); err != nil {
		log.Printf("correlation put failed (order=%s): %v", orderID, err)
		i.audit(ctx, map[string]string{"order_id": orderID, "error": err.Error()}, "Correlation Write Failed")
	}

	return &models.Checkout{
		OrderID:     orderID,
		Slug:        slug,
		CallbackURL: i.CallbackURL,
	}, nil
}

func (i *Initiator) audit(ctx context.Context, payload any, outcome string) {
	if i.Audit != nil {
		i.Audit.Record(ctx, gatewayTag, payload, outcome)
	}
}
