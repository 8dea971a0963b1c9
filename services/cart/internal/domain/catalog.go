package domain

import (
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
)

// Currency of a catalog price.
type Currency struct {
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// Product is a catalog listing entry.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Currency     Currency        `json:"currency"`
	Images       []string        `json:"images"`
	CategoryName string          `json:"category_name"`
	InStock      bool            `json:"in_stock"`
}

// ProductDetail is a product with its description and attribute catalog.
type ProductDetail struct {
	Product
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Attributes  []AttributeSet `json:"attributes"`
}

// NewLineItem builds the line for adding qty units of p with the given
// selection. Every attribute set of the product needs a selection that
// is one of its options; unknown attribute names are rejected.
func NewLineItem(p ProductDetail, qty int, selected map[string]string) (LineItem, error) {
	if !p.InStock {
		return LineItem{}, apperrors.InvalidInput(fmt.Sprintf("%s is out of stock", p.Name))
	}
	if qty < 1 {
		return LineItem{}, apperrors.InvalidInput("quantity must be at least 1")
	}
	if qty > MaxQuantity {
		return LineItem{}, apperrors.InvalidInput(fmt.Sprintf("quantity must be at most %d", MaxQuantity))
	}

	known := make(map[string]AttributeSet, len(p.Attributes))
	var missing []string
	for _, set := range p.Attributes {
		known[set.Name] = set
		value, ok := selected[set.Name]
		if !ok || value == "" {
			missing = append(missing, set.Name)
			continue
		}
		if !set.Has(value) {
			return LineItem{}, apperrors.InvalidInput(fmt.Sprintf("%q is not a valid %s", value, set.Name))
		}
	}
	if len(missing) > 0 {
		return LineItem{}, apperrors.InvalidInput("please select " + strings.Join(missing, ", "))
	}
	for name := range selected {
		if _, ok := known[name]; !ok {
			return LineItem{}, apperrors.InvalidInput(fmt.Sprintf("%s has no attribute %q", p.Name, name))
		}
	}

	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	item := LineItem{
		ProductID:          p.ID,
		Name:               p.Name,
		ImageURL:           image,
		UnitPrice:          RepairPrice(p.Price),
		CurrencyLabel:      p.Currency.Symbol,
		Quantity:           qty,
		SelectedAttributes: maps.Clone(selected),
		Attributes:         p.Attributes,
	}
	return item.Clone(), nil
}
