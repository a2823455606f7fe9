package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"azzipizza/models"
)

func paypalTestServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var checkoutBodies []map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token"})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		checkoutBodies = append(checkoutBodies, body)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "5O190127TN364715T",
			"links": []map[string]string{
				{"href": "https://api.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T", "rel": "self"},
				{"href": "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", "rel": "approve"},
			},
		})
	})
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "5O190127TN364715T",
			"status": "COMPLETED",
		})
	})

	return httptest.NewServer(mux), &checkoutBodies
}

func TestPaypalCreateCheckout(t *testing.T) {
	server, bodies := paypalTestServer(t)
	defer server.Close()

	paypal := NewPaypal(PaypalConfig{
		BaseURL:   server.URL,
		ClientID:  "client-id",
		Secret:    "client-secret",
		ReturnURL: "https://azzipizza.test/complete-order",
		CancelURL: "https://azzipizza.test/api/payments/cancel",
	})

	order := &models.Order{ID: primitive.NewObjectID(), TotalPrice: 19.5}
	checkout, err := paypal.CreateCheckout(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "5O190127TN364715T", checkout.ProviderID)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", checkout.ApprovalURL)

	require.Len(t, *bodies, 1)
	sent := (*bodies)[0]
	assert.Equal(t, "CAPTURE", sent["intent"])

	units := sent["purchase_units"].([]any)
	require.Len(t, units, 1)
	amount := units[0].(map[string]any)["amount"].(map[string]any)
	assert.Equal(t, "EUR", amount["currency_code"])
	assert.Equal(t, "19.50", amount["value"])

	appCtx := sent["application_context"].(map[string]any)
	assert.Equal(t, "Azzipizza", appCtx["brand_name"])
	assert.Equal(t, "NO_SHIPPING", appCtx["shipping_preference"])
}

func TestPaypalConfirmPayment(t *testing.T) {
	server, _ := paypalTestServer(t)
	defer server.Close()

	paypal := NewPaypal(PaypalConfig{
		BaseURL:  server.URL,
		ClientID: "client-id",
		Secret:   "client-secret",
	})

	// Return-redirect style payload: the checkout id arrives as "token".
	settlement, err := paypal.ConfirmPayment(context.Background(),
		[]byte(`{"token": "5O190127TN364715T"}`))
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", settlement.ProviderID)
	assert.Equal(t, "COMPLETED", settlement.Status)
}

func TestPaypalConfirmPaymentRejectsEmptyPayload(t *testing.T) {
	paypal := NewPaypal(PaypalConfig{BaseURL: "http://unused.test"})

	_, err := paypal.ConfirmPayment(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkout id")
}
