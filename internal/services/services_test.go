package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/smepay"
)

type fakeProcessor struct {
	token       string
	authErr     error
	slug        string
	createErr   error
	validation  smepay.Validation
	validateErr error

	authCalls     int
	createCalls   int
	validateCalls int

	lastOrderReq       smepay.OrderRequest
	lastValidateAmount string
	lastValidateSlug   string
}

func (p *fakeProcessor) Authenticate(ctx context.Context) (string, error) {
	p.authCalls++
	if p.authErr != nil {
		return "", p.authErr
	}
	return p.token, nil
}

func (p *fakeProcessor) CreateOrder(ctx context.Context, token string, req smepay.OrderRequest) (string, error) {
	p.createCalls++
	p.lastOrderReq = req
	if p.createErr != nil {
		return "", p.createErr
	}
	return p.slug, nil
}

func (p *fakeProcessor) ValidateOrder(ctx context.Context, token, amount, slug string) (smepay.Validation, error) {
	p.validateCalls++
	p.lastValidateAmount = amount
	p.lastValidateSlug = slug
	if p.validateErr != nil {
		return smepay.Validation{}, p.validateErr
	}
	return p.validation, nil
}

type fakeInvoices struct {
	mu       sync.Mutex
	invoices map[int]*models.Invoice
	addErr   error
	payments []*models.Transaction
}

func (f *fakeInvoices) Get(ctx context.Context, invoiceID int) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, errors.New("invoice not found")
	}
	return inv, nil
}

func (f *fakeInvoices) AddPayment(ctx context.Context, txn *models.Transaction) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, txn)
	return nil
}

type recordingAudit struct {
	mu       sync.Mutex
	outcomes []string
}

func (a *recordingAudit) Record(ctx context.Context, gateway string, payload any, outcome string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outcomes = append(a.outcomes, outcome)
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, orderID, slug string) error {
	return errors.New("disk full")
}

func (failingStore) TakeOnce(ctx context.Context, orderID string) (string, error) {
	return "", errors.New("disk full")
}
