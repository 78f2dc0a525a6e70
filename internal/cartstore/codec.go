package cartstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/piyol1998/stokcer-sub001/internal/cart"
)

const recordVersion = 2

var errEmptyRecord = errors.New("empty cart record")

type record struct {
	Version int             `json:"version"`
	Items   []cart.LineItem `json:"items"`
}

// legacyLine is the v1 layout: a bare JSON array of these, with prices in
// minor units.
type legacyLine struct {
	Product struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"product"`
	Variant struct {
		ID              string          `json:"id"`
		Title           string          `json:"title"`
		Price           decimal.Decimal `json:"price"`
		ManageInventory bool            `json:"manage_inventory"`
	} `json:"variant"`
	Quantity int `json:"quantity"`
}

func encode(c *cart.Cart) ([]byte, error) {
	return json.Marshal(record{Version: recordVersion, Items: c.Items()})
}

// decode parses a stored record. migrated reports that the record was in the
// legacy layout and should be written back.
func decode(data []byte) (c *cart.Cart, migrated bool, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false, errEmptyRecord
	}

	if data[0] == '[' {
		var lines []legacyLine
		if err := json.Unmarshal(data, &lines); err != nil {
			return nil, false, fmt.Errorf("unmarshal legacy cart failed: %w", err)
		}
		return migrateLegacy(lines), true, nil
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, false, fmt.Errorf("unsupported cart record version %d", rec.Version)
	}
	return cart.FromItems(rec.Items), false, nil
}

func migrateLegacy(lines []legacyLine) *cart.Cart {
	items := make([]cart.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, cart.LineItem{
			ProductID:       l.Product.ID,
			ProductName:     l.Product.Title,
			VariantID:       l.Variant.ID,
			VariantTitle:    l.Variant.Title,
			Quantity:        l.Quantity,
			UnitPrice:       cart.MinorToMajor(l.Variant.Price),
			ManageInventory: l.Variant.ManageInventory,
		})
	}
	return cart.FromItems(items)
}
