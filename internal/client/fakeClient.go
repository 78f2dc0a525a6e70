package client

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/piyol1998/stokcer-sub001/internal/model"
	"github.com/shopspring/decimal"
)

const FakeTokenPrefix = "fake-token-"

// FakeClient is an in-process provider for local development and tests.
// Tokens are derived from the order id and every order starts pending
// until Resolve or ChargeNonce settles it.
type FakeClient struct {
	name    string
	baseURL string

	mu       sync.Mutex
	statuses map[string]model.Status
	requests []TransactionRequest
}

func NewFakeClient(name, baseURL string) *FakeClient {
	return &FakeClient{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		statuses: make(map[string]model.Status),
	}
}

func (c *FakeClient) Name() string {
	return c.name
}

func (c *FakeClient) CreateTransaction(ctx context.Context, req *TransactionRequest) (*TransactionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, *req)
	if _, ok := c.statuses[req.OrderID]; !ok {
		c.statuses[req.OrderID] = model.StatusPending
	}

	return &TransactionResponse{
		Token:       FakeTokenPrefix + req.OrderID,
		RedirectURL: c.baseURL + "/fake-pay/" + url.PathEscape(req.OrderID),
	}, nil
}

func (c *FakeClient) GetStatus(ctx context.Context, orderID, _ string) (*TransactionStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status, ok := c.statuses[orderID]
	if !ok {
		return nil, &APIError{Provider: c.name, StatusCode: 404, Message: "transaction not found"}
	}

	return &TransactionStatus{
		OrderID:  orderID,
		Status:   status,
		Metadata: model.Metadata{"mode": "fake"},
	}, nil
}

func (c *FakeClient) ChargeNonce(ctx context.Context, orderID, nonce string, amount decimal.Decimal) (*TransactionStatus, error) {
	status := model.StatusPaid
	if strings.HasPrefix(nonce, "fake-declined") {
		status = model.StatusFailed
	}
	c.Resolve(orderID, status)

	return &TransactionStatus{
		OrderID:  orderID,
		Status:   status,
		Metadata: model.Metadata{"mode": "fake", "amount": amount.String()},
	}, nil
}

// Resolve sets the status GetStatus will report for orderID.
func (c *FakeClient) Resolve(orderID string, status model.Status) {
	c.mu.Lock()
	c.statuses[orderID] = status
	c.mu.Unlock()
}

// Requests returns every CreateTransaction request seen so far.
func (c *FakeClient) Requests() []TransactionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TransactionRequest, len(c.requests))
	copy(out, c.requests)
	return out
}
