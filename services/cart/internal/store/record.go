package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/utafrali/Storefront/services/cart/internal/domain"
)

// record is the persisted form of one line item.
type record struct {
	ProductID          string                `json:"productId"`
	Name               string                `json:"name"`
	Image              string                `json:"image"`
	UnitPrice          json.Number           `json:"unitPrice"`
	CurrencyLabel      string                `json:"currencyLabel"`
	Quantity           int                   `json:"quantity"`
	SelectedAttributes map[string]string     `json:"selectedAttributes"`
	Attributes         []domain.AttributeSet `json:"attributes,omitempty"`
	LineKey            string                `json:"lineKey"`
}

// encodeLines serializes lines as a JSON array of records.
func encodeLines(lines []domain.LineItem) ([]byte, error) {
	records := make([]record, len(lines))
	for i, li := range lines {
		selected := li.SelectedAttributes
		if selected == nil {
			selected = map[string]string{}
		}
		records[i] = record{
			ProductID:          li.ProductID,
			Name:               li.Name,
			Image:              li.ImageURL,
			UnitPrice:          json.Number(li.UnitPrice.String()),
			CurrencyLabel:      li.CurrencyLabel,
			Quantity:           li.Quantity,
			SelectedAttributes: selected,
			Attributes:         li.Attributes,
			LineKey:            li.Key(),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

// legacyAttributes are the per-attribute fields written by the browser
// cart before selections were stored as a map.
var legacyAttributes = map[string]string{
	"selectedSize":  "Size",
	"selectedColor": "Color",
}

// decodeLines parses a persisted payload. The payload must be a JSON array;
// anything else is an error. Elements that are not objects or have no
// product id are skipped. Prices are repaired rather than rejected, and the
// stored line key is ignored in favour of one derived from the selection.
func decodeLines(data []byte) ([]domain.LineItem, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	lines := make([]domain.LineItem, 0, len(elems))
	for _, raw := range elems {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil || fields == nil {
			continue
		}
		if li, ok := decodeRecord(fields); ok {
			lines = append(lines, li)
		}
	}
	return lines, nil
}

func decodeRecord(fields map[string]any) (domain.LineItem, bool) {
	productID := stringField(fields, "productId", "id")
	if productID == "" {
		return domain.LineItem{}, false
	}

	price, ok := fields["unitPrice"]
	if !ok {
		price = fields["price"]
	}
	quantity, ok := fields["quantity"]
	if !ok {
		quantity = fields["qty"]
	}

	return domain.LineItem{
		ProductID:          productID,
		Name:               stringField(fields, "name"),
		ImageURL:           stringField(fields, "image", "imageUrl"),
		UnitPrice:          domain.RepairPrice(price),
		CurrencyLabel:      currencyField(fields),
		Quantity:           domain.ParseQuantity(quantity),
		SelectedAttributes: selectionField(fields),
		Attributes:         attributesField(fields["attributes"]),
	}, true
}

func stringField(fields map[string]any, names ...string) string {
	for _, name := range names {
		switch v := fields[name].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func currencyField(fields map[string]any) string {
	if label := stringField(fields, "currencyLabel"); label != "" {
		return label
	}
	switch c := fields["currency"].(type) {
	case string:
		return c
	case map[string]any:
		return stringField(c, "symbol", "label")
	}
	return ""
}

func selectionField(fields map[string]any) map[string]string {
	selected := map[string]string{}
	if m, ok := fields["selectedAttributes"].(map[string]any); ok {
		for name, v := range m {
			if s, ok := v.(string); ok && name != "" && s != "" {
				selected[name] = s
			}
		}
	}
	for field, name := range legacyAttributes {
		if _, set := selected[name]; set {
			continue
		}
		if s := stringField(fields, field); s != "" {
			selected[name] = s
		}
	}
	if len(selected) == 0 {
		return nil
	}
	return selected
}

// attributesField converts the decoded attribute catalog back into typed
// sets. A malformed catalog is dropped; it is display data only.
func attributesField(v any) []domain.AttributeSet {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var sets []domain.AttributeSet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil
	}
	return sets
}
