package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownCategory is returned for a category with no product kind.
var ErrUnknownCategory = errors.New("unknown product category")

// ProductKind classifies products by the category they are listed under.
type ProductKind string

// Product kinds.
const (
	KindTech    ProductKind = "tech"
	KindClothes ProductKind = "clothes"
)

// DefaultSizes is the size run offered for clothing.
var DefaultSizes = []string{"S", "M", "L"}

// KindOf maps a category name to a product kind, ignoring case.
func KindOf(category string) (ProductKind, error) {
	switch k := ProductKind(strings.ToLower(strings.TrimSpace(category))); k {
	case KindTech, KindClothes:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

// Sizes lists the sizes a product of this kind comes in, or nil.
func (k ProductKind) Sizes() []string {
	if k == KindClothes {
		return DefaultSizes
	}
	return nil
}

// Currency of a price.
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
	Kind         ProductKind     `json:"kind,omitempty"`
}

// Classify sets Kind from CategoryName.
func (p *Product) Classify() error {
	k, err := KindOf(p.CategoryName)
	if err != nil {
		return err
	}
	p.Kind = k
	return nil
}

// AttributeItem is one option of an attribute set.
type AttributeItem struct {
	DisplayValue string `json:"display_value"`
	Value        string `json:"value"`
}

// AttributeSet is a named choice a shopper makes, such as "Size".
type AttributeSet struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Items []AttributeItem `json:"items"`
}

// ProductDetail is a product with its description, brand and attributes.
type ProductDetail struct {
	Product
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Attributes  []AttributeSet `json:"attributes"`
}
