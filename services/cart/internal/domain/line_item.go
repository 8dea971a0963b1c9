package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// AttributeItem is one selectable option of an attribute set.
type AttributeItem struct {
	Value        string `json:"value"`
	DisplayValue string `json:"display_value"`
}

// AttributeSet is a catalog-defined variant axis such as Size or Color.
type AttributeSet struct {
	Name  string          `json:"name"`
	Type  string          `json:"type,omitempty"`
	Items []AttributeItem `json:"items"`
}

// Has reports whether value is one of the set's options.
func (a AttributeSet) Has(value string) bool {
	return slices.ContainsFunc(a.Items, func(it AttributeItem) bool { return it.Value == value })
}

// LineItem is one distinct purchasable configuration in the cart.
// Its identity is Key(), derived from ProductID and SelectedAttributes.
type LineItem struct {
	ProductID          string
	Name               string
	ImageURL           string
	UnitPrice          decimal.Decimal
	CurrencyLabel      string
	Quantity           int
	SelectedAttributes map[string]string
	Attributes         []AttributeSet
}

// Key returns the line key for the item's current product and selection.
func (li LineItem) Key() string {
	return LineKey(li.ProductID, li.SelectedAttributes)
}

// Subtotal is UnitPrice × Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Clone returns a copy that shares no maps or slices with li.
func (li LineItem) Clone() LineItem {
	out := li
	if li.SelectedAttributes != nil {
		out.SelectedAttributes = maps.Clone(li.SelectedAttributes)
	}
	if li.Attributes != nil {
		out.Attributes = make([]AttributeSet, len(li.Attributes))
		for i, a := range li.Attributes {
			a.Items = slices.Clone(a.Items)
			out.Attributes[i] = a
		}
	}
	return out
}

// withAttribute returns a copy of li with one selection changed. An empty
// value clears the selection.
func (li LineItem) withAttribute(name, value string) LineItem {
	out := li
	out.SelectedAttributes = make(map[string]string, len(li.SelectedAttributes)+1)
	maps.Copy(out.SelectedAttributes, li.SelectedAttributes)
	if value == "" {
		delete(out.SelectedAttributes, name)
	} else {
		out.SelectedAttributes[name] = value
	}
	return out
}

// normalize applies the entry policy: negative prices become zero and
// negative quantities are clamped to zero.
func (li LineItem) normalize() LineItem {
	if li.UnitPrice.IsNegative() {
		li.UnitPrice = decimal.Zero
	}
	li.Quantity = ClampQuantity(li.Quantity)
	return li
}
