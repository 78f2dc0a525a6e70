package dto

import "time"

type AddItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartLine struct {
	ProductID       string `json:"product_id"`
	VariantID       string `json:"variant_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	Subtotal        string `json:"subtotal"`
	ManageInventory bool   `json:"manage_inventory"`
}

type CartResponse struct {
	Items          []CartLine `json:"items"`
	Count          int        `json:"count"`
	Total          string     `json:"total"`
	TotalFormatted string     `json:"total_formatted"`
	Currency       string     `json:"currency"`
	// Open asks the storefront to show the cart drawer.
	Open bool `json:"open,omitempty"`
}

type VariantResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Price           string `json:"price"`
	PriceFormatted  string `json:"price_formatted"`
	ManageInventory bool   `json:"manage_inventory"`
	Available       int    `json:"available,omitempty"`
}

type ProductResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Variants []VariantResponse `json:"variants"`
}

type PlanResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

type PlanCheckoutRequest struct {
	PlanCode string `json:"plan_code"`
}

type ChargeRequest struct {
	Nonce string `json:"nonce"`
}

type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Provider    string `json:"provider"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
}

type CheckoutSessionResponse struct {
	OrderID   string            `json:"order_id"`
	Reference string            `json:"reference"`
	Provider  string            `json:"provider"`
	Status    string            `json:"status"`
	Amount    string            `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type ErrorResponse struct {
	Message   string `json:"message"`
	Remaining *int   `json:"remaining,omitempty"`
}
