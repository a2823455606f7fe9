package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"azzipizza/apperr"
	"azzipizza/models"
)

type PaypalConfig struct {
	BaseURL   string
	ClientID  string
	Secret    string
	ReturnURL string
	CancelURL string
	BrandName string
}

// Paypal creates CAPTURE-intent checkout orders and captures them once the
// customer approves. A fresh access token is fetched per call; the sandbox
// and live hosts only differ by BaseURL.
type Paypal struct {
	cfg    PaypalConfig
	client *http.Client
}

func NewPaypal(cfg PaypalConfig) *Paypal {
	if cfg.BrandName == "" {
		cfg.BrandName = "Azzipizza"
	}
	return &Paypal{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Paypal) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.External("paypal", err)
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperr.External("paypal", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperr.External("paypal", fmt.Errorf("token request returned %s", resp.Status))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", apperr.External("paypal", err)
	}
	return body.AccessToken, nil
}

func (p *Paypal) CreateCheckout(ctx context.Context, order *models.Order) (*Checkout, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": order.ID.Hex(),
				"amount": map[string]any{
					"currency_code": "EUR",
					"value":         fmt.Sprintf("%.2f", order.TotalPrice),
				},
			},
		},
		"application_context": map[string]any{
			"return_url":          p.cfg.ReturnURL,
			"cancel_url":          p.cfg.CancelURL,
			"shipping_preference": "NO_SHIPPING",
			"user_action":         "PAY_NOW",
			"brand_name":          p.cfg.BrandName,
		},
	}

	var created struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := p.post(ctx, "/v2/checkout/orders", token, payload, &created); err != nil {
		return nil, err
	}

	for _, link := range created.Links {
		if link.Rel == "approve" {
			return &Checkout{ProviderID: created.ID, ApprovalURL: link.Href}, nil
		}
	}
	return nil, apperr.External("paypal", fmt.Errorf("no approve link on checkout %s", created.ID))
}

// ConfirmPayment captures an approved checkout. The payload is either the
// return-redirect query encoded as JSON ({"token": id}) or a webhook body
// carrying the checkout id.
func (p *Paypal) ConfirmPayment(ctx context.Context, payload []byte) (*Settlement, error) {
	var body struct {
		Token   string `json:"token"`
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, apperr.Validation("payload", "malformed paypal callback payload")
	}
	checkoutID := body.Token
	if checkoutID == "" {
		checkoutID = body.OrderID
	}
	if checkoutID == "" {
		return nil, apperr.Validation("payload", "missing paypal checkout id")
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var captured struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", checkoutID)
	if err := p.post(ctx, path, token, map[string]any{}, &captured); err != nil {
		return nil, err
	}

	return &Settlement{ProviderID: captured.ID, Status: captured.Status}, nil
}

func (p *Paypal) post(ctx context.Context, path, token string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperr.External("paypal", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return apperr.External("paypal", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return apperr.External("paypal", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.External("paypal", fmt.Errorf("%s returned %s: %s", path, resp.Status, detail))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
