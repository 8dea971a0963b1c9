package domain

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrencyLabel is shown for the total of an empty cart.
const DefaultCurrencyLabel = "$"

// Cart is an insertion-ordered collection of line items, unique by key,
// every quantity at least one. Values are immutable; Reduce returns a new
// Cart rather than modifying its input.
type Cart struct {
	lines []LineItem
}

// NewCart builds a cart by adding items one at a time, merging equal keys.
func NewCart(items ...LineItem) Cart {
	c, _ := Reduce(Cart{}, AddBatch(items))
	return c
}

// Lines returns a copy of the cart's lines in insertion order.
func (c Cart) Lines() []LineItem {
	out := make([]LineItem, len(c.lines))
	for i, li := range c.lines {
		out[i] = li.Clone()
	}
	return out
}

// Len is the number of distinct lines.
func (c Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

// ItemCount is the sum of all line quantities.
func (c Cart) ItemCount() int {
	n := 0
	for _, li := range c.lines {
		n += li.Quantity
	}
	return n
}

// TotalPrice is the sum of UnitPrice × Quantity over all lines.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.lines {
		total = total.Add(li.Subtotal())
	}
	return total
}

// CurrencyLabel is the label of the first line, or DefaultCurrencyLabel
// when the cart is empty. Carts are assumed to hold a single currency.
func (c Cart) CurrencyLabel() string {
	if len(c.lines) == 0 || c.lines[0].CurrencyLabel == "" {
		return DefaultCurrencyLabel
	}
	return c.lines[0].CurrencyLabel
}

// Find returns the line with the given key.
func (c Cart) Find(key string) (LineItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.lines[i].Clone(), true
	}
	return LineItem{}, false
}

func (c Cart) indexOf(key string) int {
	for i := range c.lines {
		if c.lines[i].Key() == key {
			return i
		}
	}
	return -1
}

func (c Cart) indexOfProduct(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
