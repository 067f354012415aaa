package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/invoicing"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/models"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/services"
	"github.com/Typof-Technologies-Pvt-Ltd/smepay-whmcs/internal/smepay"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Initiator  *services.Initiator
	Reconciler *services.Reconciler
	Invoices   invoicing.Invoices
	SystemURL  string
}

func NewHandler(initiator *services.Initiator, reconciler *services.Reconciler, invoices invoicing.Invoices, systemURL string) *Handler {
	return &Handler{
		Initiator:  initiator,
		Reconciler: reconciler,
		Invoices:   invoices,
		SystemURL:  systemURL,
	}
}

type createOrderRequest struct {
	InvoiceID int `json:"invoice_id"`
}

type createOrderResponse struct {
	OrderID     string `json:"order_id"`
	Slug        string `json:"slug"`
	CallbackURL string `json:"callback_url"`
	CheckoutURL string `json:"checkout_url"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	checkout, status, msg := h.initiate(r, req.InvoiceID)
	if checkout == nil {
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, createOrderResponse{
		OrderID:     checkout.OrderID,
		Slug:        checkout.Slug,
		CallbackURL: checkout.CallbackURL,
		CheckoutURL: fmt.Sprintf("/payments/checkout/%d", req.InvoiceID),
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.Atoi(chi.URLParam(r, "invoiceID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	checkout, status, msg := h.initiate(r, invoiceID)
	if checkout == nil {
		http.Error(w, msg, status)
		return
	}

	renderCheckoutPage(w, checkout)
}

// initiate loads the invoice of record and runs the initiation flow,
// translating failures to an HTTP status and operator-safe message.
func (h *Handler) initiate(r *http.Request, invoiceID int) (*models.Checkout, int, string) {
	ctx := r.Context()

	invoice, err := h.Invoices.Get(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, invoicing.ErrInvoiceNotFound) {
			return nil, http.StatusNotFound, "invoice not found"
		}
		return nil, http.StatusInternalServerError, "invoice lookup failed"
	}
	if invoice.Status == models.InvoicePaid {
		return nil, http.StatusConflict, "invoice already paid"
	}

	amount, err := strconv.ParseFloat(invoice.Amount, 64)
	if err != nil {
		return nil, http.StatusInternalServerError, "invalid invoice amount of record"
	}

	checkout, err := h.Initiator.Initiate(ctx, invoiceID, amount, invoice.Customer)
	if err != nil {
		var apiErr *smepay.APIError
		switch {
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidInvoice):
			return nil, http.StatusBadRequest, err.Error()
		case errors.Is(err, services.ErrMissingCredentials):
			return nil, http.StatusPreconditionFailed, "smepay credentials not configured"
		case errors.As(err, &apiErr):
			// Raw processor diagnostics are safe to show the operator.
			return nil, http.StatusBadGateway, apiErr.Error()
		default:
			return nil, http.StatusBadGateway, "smepay order creation failed"
		}
	}
	return checkout, http.StatusOK, ""
}

// Callback is the entry point SMEPay redirects the buyer to. Success
// and known-invoice failures both land on the invoice view; malformed
// or unknown identifiers get a terse diagnostic instead, since there is
// nothing safe to redirect to.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	rawOrderID := r.URL.Query().Get("order_id")
	if rawOrderID == "" {
		http.Error(w, "Invalid Request", http.StatusBadRequest)
		return
	}

	outcome, err := h.Reconciler.Reconcile(r.Context(), rawOrderID)
	if err != nil {
		var rerr *services.ReconcileError
		if !errors.As(err, &rerr) {
			http.Error(w, "Payment validation failed.", http.StatusBadGateway)
			return
		}
		switch rerr.Reason {
		case services.ReasonMalformedOrderID, services.ReasonUnknownOrder:
			http.Error(w, "Invalid Request", http.StatusBadRequest)
		case services.ReasonCreditingFailed:
			http.Error(w, "Payment received but could not be recorded. Contact support.", http.StatusInternalServerError)
		default:
			http.Redirect(w, r, h.invoiceURL(rerr.InvoiceID, true), http.StatusFound)
		}
		return
	}

	http.Redirect(w, r, h.invoiceURL(outcome.InvoiceID, false), http.StatusFound)
}

func (h *Handler) invoiceURL(invoiceID int, failed bool) string {
	u := fmt.Sprintf("%s/viewinvoice.php?id=%s", h.SystemURL, url.QueryEscape(strconv.Itoa(invoiceID)))
	if failed {
		u += "&paymentfailed=true"
	}
	return u
}
