package payments

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"azzipizza/apperr"
	"azzipizza/models"
)

const satispayBaseURL = "https://authservices.satispay.com/g_business/v1"

type SatispayConfig struct {
	BaseURL        string
	KeyID          string
	PrivateKeyPath string
	CallbackURL    string
	RedirectURL    string
}

// Satispay signs every request with the RSA HTTP-signature scheme the
// g_business API requires: SHA-256 body digest plus an RSA-SHA256 signature
// over "(request-target) date digest".
type Satispay struct {
	cfg    SatispayConfig
	key    *rsa.PrivateKey
	client *http.Client
}

func NewSatispay(cfg SatispayConfig) (*Satispay, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = satispayBaseURL
	}

	raw, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read satispay private key: %w", err)
	}
	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse satispay private key: %w", err)
	}

	return &Satispay{
		cfg:    cfg,
		key:    key,
		client: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func parsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return key, nil
}

func (s *Satispay) CreateCheckout(ctx context.Context, order *models.Order) (*Checkout, error) {
	payload := map[string]any{
		"flow":          "MATCH_USER",
		"amount_unit":   int64(math.Round(order.TotalPrice * 100)),
		"currency":      "EUR",
		"external_code": order.ID.Hex(),
		"callback_url":  s.cfg.CallbackURL + "?payment_id={uuid}",
		"redirect_url":  s.cfg.RedirectURL,
	}

	var created struct {
		ID          string `json:"id"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := s.request(ctx, http.MethodPost, "/payments", payload, &created); err != nil {
		return nil, err
	}

	approval := created.RedirectURL
	if approval == "" {
		approval = "https://online.satispay.com/pay/" + created.ID
	}
	return &Checkout{ProviderID: created.ID, ApprovalURL: approval}, nil
}

// ConfirmPayment reads the payment the callback refers to back from the API
// rather than trusting the callback itself.
func (s *Satispay) ConfirmPayment(ctx context.Context, payload []byte) (*Settlement, error) {
	var body struct {
		PaymentID string `json:"payment_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.PaymentID == "" {
		return nil, apperr.Validation("payload", "missing satispay payment_id")
	}

	var payment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := s.request(ctx, http.MethodGet, "/payments/"+body.PaymentID, nil, &payment); err != nil {
		return nil, err
	}
	return &Settlement{ProviderID: payment.ID, Status: payment.Status}, nil
}

func (s *Satispay) request(ctx context.Context, method, path string, payload, out any) error {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return apperr.External("satispay", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return apperr.External("satispay", err)
	}
	if err := s.sign(req, path, raw); err != nil {
		return apperr.External("satispay", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.External("satispay", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperr.External("satispay", fmt.Errorf("%s returned %s: %s", path, resp.Status, detail))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// sign builds the Date, Digest and Authorization headers. The signature
// string covers (request-target) and date, plus digest when a body is sent.
func (s *Satispay) sign(req *http.Request, path string, body []byte) error {
	date := time.Now().UTC().Format(http.TimeFormat)
	// The signed path must include the API prefix, not just the route.
	target := fmt.Sprintf("(request-target): %s /g_business/v1%s", strings.ToLower(req.Method), path)

	lines := []string{target, "date: " + date}
	headers := "(request-target) date"

	if len(body) > 0 {
		sum := sha256.Sum256(body)
		digest := "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
		lines = append(lines, "digest: "+digest)
		headers += " digest"
		req.Header.Set("Digest", digest)
	}

	hashed := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	signature, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, hashed[:])
	if err != nil {
		return err
	}

	req.Header.Set("Date", date)
	req.Header.Set("Authorization", fmt.Sprintf(
		`Signature keyId="%s", algorithm="rsa-sha256", headers="%s", signature="%s"`,
		s.cfg.KeyID, headers, base64.StdEncoding.EncodeToString(signature)))
	return nil
}
