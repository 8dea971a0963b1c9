package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/Storefront/pkg/slug"
)

// Catalog is the seed data loaded by the import tool.
type Catalog struct {
	Categories []string
	Products   []CatalogProduct
}

// CatalogProduct is one product of a catalog dump.
type CatalogProduct struct {
	ID          string
	Name        string
	InStock     bool
	Gallery     []string
	Description string
	Category    string
	Brand       string
	Attributes  []AttributeSet
	Prices      []CatalogPrice
}

// CatalogPrice is a product price in one currency.
type CatalogPrice struct {
	Amount   decimal.Decimal
	Currency Currency
}

type catalogDump struct {
	Data struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Products []struct {
			ID          string   `json:"id"`
			Name        string   `json:"name"`
			InStock     bool     `json:"inStock"`
			Gallery     []string `json:"gallery"`
			Description string   `json:"description"`
			Category    string   `json:"category"`
			Brand       string   `json:"brand"`
			Attributes  []struct {
				Name  string `json:"name"`
				Type  string `json:"type"`
				Items []struct {
					DisplayValue string `json:"displayValue"`
					Value        string `json:"value"`
				} `json:"items"`
			} `json:"attributes"`
			Prices []struct {
				Amount   decimal.Decimal `json:"amount"`
				Currency Currency        `json:"currency"`
			} `json:"prices"`
		} `json:"products"`
	} `json:"data"`
}

// ParseCatalog decodes a catalog dump of the form
// {"data":{"categories":[...],"products":[...]}}. Products without an id
// are given the slug of their name. A product with neither is rejected.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var dump catalogDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{Categories: make([]string, 0, len(dump.Data.Categories))}
	for _, cat := range dump.Data.Categories {
		if name := strings.TrimSpace(cat.Name); name != "" {
			c.Categories = append(c.Categories, name)
		}
	}

	for i, p := range dump.Data.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = slug.Generate(p.Name)
		}
		if id == "" {
			return nil, fmt.Errorf("catalog product %d has no id or name", i)
		}

		cp := CatalogProduct{
			ID:          id,
			Name:        p.Name,
			InStock:     p.InStock,
			Gallery:     p.Gallery,
			Description: p.Description,
			Category:    p.Category,
			Brand:       p.Brand,
		}
		for _, a := range p.Attributes {
			set := AttributeSet{Name: a.Name, Type: a.Type, Items: make([]AttributeItem, 0, len(a.Items))}
			for _, it := range a.Items {
				set.Items = append(set.Items, AttributeItem{DisplayValue: it.DisplayValue, Value: it.Value})
			}
			cp.Attributes = append(cp.Attributes, set)
		}
		for _, pr := range p.Prices {
			cp.Prices = append(cp.Prices, CatalogPrice{Amount: pr.Amount, Currency: pr.Currency})
		}
		c.Products = append(c.Products, cp)
	}
	return c, nil
}

// Brands returns the distinct non-empty brand names in first-seen order.
func (c *Catalog) Brands() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.Products {
		if p.Brand == "" || seen[p.Brand] {
			continue
		}
		seen[p.Brand] = true
		out = append(out, p.Brand)
	}
	return out
}

// Currencies returns the distinct currencies by label in first-seen order.
func (c *Catalog) Currencies() []Currency {
	seen := make(map[string]bool)
	var out []Currency
	for _, p := range c.Products {
		for _, pr := range p.Prices {
			if pr.Currency.Label == "" || seen[pr.Currency.Label] {
				continue
			}
			seen[pr.Currency.Label] = true
			out = append(out, pr.Currency)
		}
	}
	return out
}
