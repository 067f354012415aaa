package smepay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		BaseURL:      srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestNewSelectsEnvironment(t *testing.T) {
	prod, err := New(Config{Environment: "production"})
	require.NoError(t, err)
	assert.Equal(t, ProductionBaseURL, prod.baseURL)

	sandbox, err := New(Config{Environment: "sandbox"})
	require.NoError(t, err)
	assert.Equal(t, SandboxBaseURL, sandbox.baseURL)

	_, err = New(Config{Environment: "staging"})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/external/auth", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cid", body["client_id"])
		assert.Equal(t, "secret", body["client_secret"])

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123"})
	})

	token, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok123", token)
}

func TestAuthenticateHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	})

	_, err := c.Authenticate(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "upstream broken")
}

func TestAuthenticateMissingToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	_, err := c.Authenticate(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}

func TestAuthenticateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := New(Config{ClientID: "cid", ClientSecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Authenticate(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not APIErrors")
}

func TestCreateOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/external/create-order", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cid", body["client_id"])
		assert.Equal(t, "199.99", body["amount"])
		assert.Equal(t, "INV42_AB12CD34", body["order_id"])
		assert.Equal(t, "https://shop.example.com/callback", body["callback_url"])

		details, ok := body["customer_details"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Jane Doe", details["name"])
		assert.Equal(t, "jane@example.com", details["email"])

		json.NewEncoder(w).Encode(map[string]string{"order_slug": "slug-1"})
	})

	slug, err := c.CreateOrder(context.Background(), "tok123", OrderRequest{
		OrderID:     "INV42_AB12CD34",
		Amount:      "199.99",
		CallbackURL: "https://shop.example.com/callback",
		Customer: CustomerDetails{
			Name:      "Jane Doe",
			Email:     "jane@example.com",
			Mobile:    "9876543210",
			FirstName: "Jane",
			LastName:  "Doe",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "slug-1", slug)
}

func TestCreateOrderMissingSlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "rejected"})
	})

	_, err := c.CreateOrder(context.Background(), "tok123", OrderRequest{OrderID: "INV1_A", Amount: "1.00"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Body, "rejected")
}

func TestValidateOrderUnpaidIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/external/validate-order", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "250.00", body["amount"])
		assert.Equal(t, "slug-1", body["slug"])

		json.NewEncoder(w).Encode(map[string]any{"status": false, "payment_status": "pending"})
	})

	v, err := c.ValidateOrder(context.Background(), "tok123", "250.00", "slug-1")
	require.NoError(t, err)
	assert.False(t, v.Status)
	assert.Equal(t, "pending", v.PaymentStatus)
	assert.False(t, v.Paid())
	assert.NotEmpty(t, v.Raw)
}

func TestValidateOrderPaid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": true, "payment_status": "paid", "amount": "250.00"})
	})

	v, err := c.ValidateOrder(context.Background(), "tok123", "250.00", "slug-1")
	require.NoError(t, err)
	assert.True(t, v.Paid())
}

func TestValidateOrderBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	})

	_, err := c.ValidateOrder(context.Background(), "tok123", "250.00", "slug-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}
