package services

import (
	"net/mail"
	"strconv"
	"strings"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/smepay"
)

// SMEPay rejects orders with malformed contact fields outright, so
// cosmetic problems in customer data are papered over with defaults
// instead of failing the whole payment flow.
const (
	defaultCustomerName  = "Customer"
	defaultCustomerEmail = "customer@example.com"
	defaultCustomerPhone = "0000000000"
)

// FormatAmount renders an amount as a fixed two-decimal string, the
// only representation the processor API accepts.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func sanitizeCustomer(c models.Customer) smepay.CustomerDetails {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultCustomerName
	}
	first, last, found := strings.Cut(name, " ")
	if !found {
		last = ""
	}

	email := strings.TrimSpace(c.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		email = defaultCustomerEmail
	}

	phone := sanitizePhone(c.Phone)

	return smepay.CustomerDetails{
		Name:      name,
		Email:     email,
		Mobile:    phone,
		FirstName: first,
		LastName:  strings.TrimSpace(last),
	}
}

func sanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	if b.Len() < 10 {
		return defaultCustomerPhone
	}
	return b.String()
}
