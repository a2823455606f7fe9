// Package payments wraps third-party checkout providers behind a single
// capability interface. One provider is active per order, selected by the
// order's payment method; their divergent APIs never leak into the order
// lifecycle, which only sees a provider payment id and a settlement result.
package payments

import (
	"context"

	"azzipizza/models"
)

// Checkout is the provider-side session created for an order. ApprovalURL
// is where the customer is sent to approve the payment.
type Checkout struct {
	ProviderID  string `json:"providerId"`
	ApprovalURL string `json:"approvalUrl"`
}

// Settlement is the outcome of a confirmed provider payment.
type Settlement struct {
	ProviderID string `json:"providerId"`
	Status     string `json:"status"`
}

type Provider interface {
	// CreateCheckout translates an order's total into a provider checkout
	// session.
	CreateCheckout(ctx context.Context, order *models.Order) (*Checkout, error)

	// ConfirmPayment verifies a provider callback payload and captures or
	// reads the payment state it refers to.
	ConfirmPayment(ctx context.Context, payload []byte) (*Settlement, error)
}
