package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/piyol1998/stokcer-sub001/internal/config"
	"github.com/piyol1998/stokcer-sub001/internal/model"
)

const MidtransProvider = "midtrans"

type midtransClientImpl struct {
	httpClient    *http.Client
	snapURL       string
	coreURL       string
	serverKey     string
	finishURL     string
	expiryMinutes int
}

type midtransItem struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

type midtransSnapRequest struct {
	TransactionDetails struct {
		OrderID     string `json:"order_id"`
		GrossAmount int64  `json:"gross_amount"`
	} `json:"transaction_details"`
	ItemDetails     []midtransItem    `json:"item_details"`
	CustomerDetails CustomerDetails   `json:"customer_details"`
	Callbacks       map[string]string `json:"callbacks,omitempty"`
	Expiry          *midtransExpiry   `json:"expiry,omitempty"`
	CustomField1    string            `json:"custom_field1,omitempty"`
}

type midtransExpiry struct {
	Unit     string `json:"unit"`
	Duration int    `json:"duration"`
}

type midtransSnapResponse struct {
	Token         string   `json:"token"`
	RedirectURL   string   `json:"redirect_url"`
	ErrorMessages []string `json:"error_messages"`
}

func NewMidtransClient(cfg *config.Midtrans) PaymentClient {
	return &midtransClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		snapURL:       strings.TrimRight(cfg.SnapURL, "/"),
		coreURL:       strings.TrimRight(cfg.CoreURL, "/"),
		serverKey:     cfg.ServerKey,
		finishURL:     cfg.FinishURL,
		expiryMinutes: cfg.ExpiryMinutes,
	}
}

func (c *midtransClientImpl) Name() string {
	return MidtransProvider
}

func (c *midtransClientImpl) authHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.serverKey+":"))
}

func (c *midtransClientImpl) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	// Snap takes whole rupiah
	gross := req.Amount.Round(0).IntPart()

	payload := midtransSnapRequest{
		ItemDetails: []midtransItem{
			{ID: req.OrderID, Price: gross, Quantity: 1, Name: truncate(req.ItemName, 50)},
		},
		CustomerDetails: req.Customer,
		CustomField1:    req.Metadata["reference"],
	}
	payload.TransactionDetails.OrderID = req.OrderID
	payload.TransactionDetails.GrossAmount = gross
	if c.finishURL != "" {
		payload.Callbacks = map[string]string{"finish": c.finishURL}
	}
	if c.expiryMinutes > 0 {
		payload.Expiry = &midtransExpiry{Unit: "minutes", Duration: c.expiryMinutes}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.snapURL+"/snap/v1/transactions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.authHeader())
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans snap request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read midtrans response: %w", err)
	}

	var result midtransSnapResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.Join(result.ErrorMessages, "; ")
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &APIError{Provider: MidtransProvider, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode midtrans response: %w", decodeErr)
	}

	return &TransactionResponse{
		Token:       result.Token,
		RedirectURL: result.RedirectURL,
	}, nil
}

func (c *midtransClientImpl) GetStatus(ctx context.Context, orderID, _ string) (*TransactionStatus, error) {
	url := fmt.Sprintf("%s/v2/%s/status", c.coreURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans status request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Provider: MidtransProvider, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var n model.MidtransNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode midtrans status: %w", err)
	}
	// Midtrans reports unknown orders in the body with HTTP 200
	if n.StatusCode == "404" {
		return nil, &APIError{Provider: MidtransProvider, StatusCode: http.StatusNotFound, Message: n.StatusMessage}
	}

	return &TransactionStatus{
		OrderID:  orderID,
		Status:   MidtransStatus(n.TransactionStatus, n.FraudStatus),
		Metadata: MidtransMetadata(&n),
	}, nil
}

// MidtransStatus maps a Midtrans transaction_status/fraud_status pair.
func MidtransStatus(transactionStatus, fraudStatus string) model.Status {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return model.StatusPending
		}
		if fraudStatus == "deny" {
			return model.StatusFailed
		}
		return model.StatusPaid
	case "settlement":
		return model.StatusPaid
	case "deny", "cancel", "failure":
		return model.StatusFailed
	case "expire":
		return model.StatusExpired
	default:
		return model.StatusPending
	}
}

func MidtransMetadata(n *model.MidtransNotification) model.Metadata {
	m := model.Metadata{}
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("transaction_id", n.TransactionID)
	set("transaction_status", n.TransactionStatus)
	set("payment_type", n.PaymentType)
	set("fraud_status", n.FraudStatus)
	set("gross_amount", n.GrossAmount)
	set("settlement_time", n.SettlementTime)
	return m
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
