// Package cart holds the storefront cart and the rules for changing it.
//
// A Cart is owned by a single browsing session and is not safe for
// concurrent use. Callers load a copy, mutate it and persist it again.
package cart

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog entry a line item belongs to.
type Product struct {
	ID   string
	Name string
}

// Variant is the purchasable unit of a product. Price is in the store
// currency's major unit.
type Variant struct {
	ID              string
	Title           string
	Price           decimal.Decimal
	ManageInventory bool
}

type LineItem struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	VariantID       string          `json:"variant_id"`
	VariantTitle    string          `json:"variant_title,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ManageInventory bool            `json:"manage_inventory"`
}

// Name is the label shown to the shopper for this line.
func (l LineItem) Name() string {
	if l.VariantTitle == "" || l.VariantTitle == l.ProductName {
		return l.ProductName
	}
	if l.ProductName == "" {
		return l.VariantTitle
	}
	return l.ProductName + " - " + l.VariantTitle
}

// Subtotal is UnitPrice x Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// FromItems rebuilds a cart from persisted lines. Lines without a variant id
// or with a non-positive quantity are dropped and duplicate variants merged.
func FromItems(items []LineItem) *Cart {
	c := New()
	for _, item := range items {
		if item.VariantID == "" || item.Quantity <= 0 {
			continue
		}
		if i := c.index(item.VariantID); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// Add puts quantity units of variant into the cart. For inventory-managed
// variants the resulting quantity may not exceed available. On error the cart
// is left untouched.
func (c *Cart) Add(product Product, variant Variant, quantity, available int) error {
	if variant.ID == "" {
		return ErrMissingVariant
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	i := c.index(variant.ID)
	inCart := 0
	if i >= 0 {
		inCart = c.items[i].Quantity
	}

	if variant.ManageInventory && inCart+quantity > available {
		return &InsufficientStockError{
			VariantID: variant.ID,
			ItemName:  LineItem{ProductName: product.Name, VariantTitle: variant.Title}.Name(),
			Available: available,
			InCart:    inCart,
			Requested: quantity,
		}
	}

	if i >= 0 {
		line := &c.items[i]
		line.Quantity += quantity
		line.UnitPrice = variant.Price
		line.ManageInventory = variant.ManageInventory
		line.ProductName = product.Name
		line.VariantTitle = variant.Title
		return nil
	}

	c.items = append(c.items, LineItem{
		ProductID:       product.ID,
		ProductName:     product.Name,
		VariantID:       variant.ID,
		VariantTitle:    variant.Title,
		Quantity:        quantity,
		UnitPrice:       variant.Price,
		ManageInventory: variant.ManageInventory,
	})
	return nil
}

// Remove drops the line for variantID. Missing lines are ignored.
func (c *Cart) Remove(variantID string) {
	i := c.index(variantID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// UpdateQuantity overwrites the quantity of an existing line without checking
// stock. A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(variantID string, quantity int) {
	i := c.index(variantID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Remove(variantID)
		return
	}
	c.items[i].Quantity = quantity
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total sums the subtotal of every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count sums the quantity of every line.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Line looks up the line for variantID.
func (c *Cart) Line(variantID string) (LineItem, bool) {
	i := c.index(variantID)
	if i < 0 {
		return LineItem{}, false
	}
	return c.items[i], true
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) index(variantID string) int {
	for i := range c.items {
		if c.items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
