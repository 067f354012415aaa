package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const orderIDPrefix = "INV"

var ErrMalformedOrderID = errors.New("malformed order identifier")

// NewOrderID builds a gateway order identifier of the form
// INV<invoiceID>_<8 chars>. The random suffix keeps repeated payment
// attempts on the same invoice from colliding.
func NewOrderID(invoiceID int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s%d_%s", orderIDPrefix, invoiceID, suffix)
}

// ParseOrderID recovers the invoice id embedded in an order identifier.
// Anything that does not match INV<digits>_<suffix> with a positive
// invoice id is rejected.
func ParseOrderID(raw string) (int, error) {
	rest, ok := strings.CutPrefix(raw, orderIDPrefix)
	if !ok {
		return 0, ErrMalformedOrderID
	}
	digits, _, ok := strings.Cut(rest, "_")
	if !ok || digits == "" {
		return 0, ErrMalformedOrderID
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, ErrMalformedOrderID
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, ErrMalformedOrderID
	}
	return id, nil
}
