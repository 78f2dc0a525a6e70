package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/config"
	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const StripeProvider = "stripe"

// currencies Stripe charges in whole units
var stripeZeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true,
	"MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

type stripeClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
	successURL string
	cancelURL  string
}

type stripeErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewStripeClient(cfg *config.Stripe, serviceBaseURL string) PaymentClient {
	successURL := cfg.SuccessURL
	if successURL == "" {
		successURL = serviceBaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := cfg.CancelURL
	if cancelURL == "" {
		cancelURL = serviceBaseURL // if user cancel during payment, return to our homepage
	}

	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: strings.TrimRight(cfg.BaseApiURL, "/"),
		secretKey:  cfg.SecretKey,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (c *stripeClientImpl) Name() string {
	return StripeProvider
}

// StripeUnitAmount converts a major-unit amount into Stripe's smallest unit.
func StripeUnitAmount(amount decimal.Decimal, currency string) int64 {
	if stripeZeroDecimal[strings.ToUpper(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func (c *stripeClientImpl) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.OrderID)
	form.Set("success_url", c.successURL)
	form.Set("cancel_url", c.cancelURL)
	if req.Customer.Email != "" {
		form.Set("customer_email", req.Customer.Email)
	}
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprint(StripeUnitAmount(req.Amount, req.Currency)))
	form.Set("line_items[0][price_data][product_data][name]", req.ItemName)
	form.Set("metadata[order_id]", req.OrderID)
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", req.OrderID)

	var session model.StripeCheckoutSession
	if err := c.do(httpReq, &session); err != nil {
		return nil, err
	}

	return &TransactionResponse{
		Token:       session.ID,
		RedirectURL: session.URL,
	}, nil
}

func (c *stripeClientImpl) GetStatus(ctx context.Context, orderID, reference string) (*TransactionStatus, error) {
	if reference == "" {
		return nil, fmt.Errorf("stripe status for %s: missing session id", orderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/v1/checkout/sessions/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var session model.StripeCheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, err
	}

	return &TransactionStatus{
		OrderID:  orderID,
		Status:   StripeStatus(&session),
		Metadata: StripeMetadata(&session),
	}, nil
}

func (c *stripeClientImpl) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body stripeErrorBody
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return &APIError{Provider: StripeProvider, StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}

// StripeStatus maps a Checkout Session's status/payment_status pair.
func StripeStatus(s *model.StripeCheckoutSession) model.Status {
	switch s.Status {
	case "complete":
		if s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required" {
			return model.StatusPaid
		}
		// async payment methods complete before funds arrive
		return model.StatusPending
	case "expired":
		return model.StatusExpired
	default:
		return model.StatusPending
	}
}

func StripeMetadata(s *model.StripeCheckoutSession) model.Metadata {
	m := model.Metadata{"session_id": s.ID}
	if s.PaymentIntent != "" {
		m["payment_intent"] = s.PaymentIntent
	}
	if s.PaymentStatus != "" {
		m["payment_status"] = s.PaymentStatus
	}
	return m
}
