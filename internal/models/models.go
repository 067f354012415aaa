package models

import "time"

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "unpaid"
	InvoicePaid   InvoiceStatus = "paid"
)

type Invoice struct {
	ID        int
	Amount    string // fixed two-decimal string, amount of record
	Status    InvoiceStatus
	Customer  Customer
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Checkout is what the UI layer needs to open the SMEPay widget for a
// freshly created order.
type Checkout struct {
	OrderID     string
	Slug        string
	CallbackURL string
}

// CreditOutcome reports a reconciled, credited payment.
type CreditOutcome struct {
	InvoiceID     int
	Amount        string
	TransactionID string
}

type Transaction struct {
	ID            int64
	InvoiceID     int
	TransactionID string // external id, the gateway order identifier
	Amount        string
	Fee           string
	Gateway       string
	CreatedAt     time.Time
}
