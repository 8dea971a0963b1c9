package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/Storefront/services/cart/internal/domain"
)

type productView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	InStock  bool   `json:"inStock"`
}

type attributeView struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type productDetailView struct {
	productView
	Brand       string          `json:"brand"`
	Description string          `json:"description"`
	Attributes  []attributeView `json:"attributes"`
}

type lineView struct {
	LineKey            string            `json:"lineKey"`
	ProductID          string            `json:"productId"`
	Name               string            `json:"name"`
	UnitPrice          string            `json:"unitPrice"`
	Quantity           int               `json:"quantity"`
	Subtotal           string            `json:"subtotal"`
	SelectedAttributes map[string]string `json:"selectedAttributes"`
}

type cartView struct {
	Lines         []lineView `json:"lines"`
	ItemCount     int        `json:"itemCount"`
	Total         string     `json:"total"`
	CurrencyLabel string     `json:"currencyLabel"`
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func newProductView(p domain.Product) productView {
	return productView{
		ID:       p.ID,
		Name:     p.Name,
		Price:    money(p.Price),
		Currency: p.Currency.Symbol,
		Category: p.CategoryName,
		InStock:  p.InStock,
	}
}

func newProductDetailView(p domain.ProductDetail) productDetailView {
	attrs := make([]attributeView, len(p.Attributes))
	for i, set := range p.Attributes {
		values := make([]string, len(set.Items))
		for j, it := range set.Items {
			values[j] = it.Value
		}
		attrs[i] = attributeView{Name: set.Name, Values: values}
	}
	return productDetailView{
		productView: newProductView(p.Product),
		Brand:       p.Brand,
		Description: p.Description,
		Attributes:  attrs,
	}
}

func newCartView(c domain.Cart) cartView {
	lines := c.Lines()
	views := make([]lineView, len(lines))
	for i, li := range lines {
		selected := li.SelectedAttributes
		if selected == nil {
			selected = map[string]string{}
		}
		views[i] = lineView{
			LineKey:            li.Key(),
			ProductID:          li.ProductID,
			Name:               li.Name,
			UnitPrice:          money(li.UnitPrice),
			Quantity:           li.Quantity,
			Subtotal:           money(li.Subtotal()),
			SelectedAttributes: selected,
		}
	}
	return cartView{
		Lines:         views,
		ItemCount:     c.ItemCount(),
		Total:         money(c.TotalPrice()),
		CurrencyLabel: c.CurrencyLabel(),
	}
}

// selection renders "(Color: Red, Size: M)", or "" when nothing is selected.
func selection(selected map[string]string) string {
	if len(selected) == 0 {
		return ""
	}
	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + selected[name]
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func stock(inStock bool) string {
	if inStock {
		return "in stock"
	}
	return "out of stock"
}

func writeProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(w, "%s  %s  %s%s  %s\n", p.ID, p.Name, p.Currency.Symbol, money(p.Price), stock(p.InStock))
	}
}

func writeProductDetail(w io.Writer, p domain.ProductDetail) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	if p.Brand != "" {
		fmt.Fprintf(w, "Brand: %s\n", p.Brand)
	}
	fmt.Fprintf(w, "Price: %s%s\n", p.Currency.Symbol, money(p.Price))
	fmt.Fprintf(w, "Availability: %s\n", stock(p.InStock))
	for _, set := range p.Attributes {
		values := make([]string, len(set.Items))
		for i, it := range set.Items {
			values[i] = it.Value
			if it.DisplayValue != "" && it.DisplayValue != it.Value {
				values[i] += " (" + it.DisplayValue + ")"
			}
		}
		fmt.Fprintf(w, "%s: %s\n", set.Name, strings.Join(values, ", "))
	}
}

func writeCart(w io.Writer, c domain.Cart) {
	if c.IsEmpty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	label := c.CurrencyLabel()
	fmt.Fprintf(w, "Cart: %d lines, %d items\n", c.Len(), c.ItemCount())
	for _, li := range c.Lines() {
		fmt.Fprintf(w, "- %s  %s%s  %d x %s%s = %s%s\n",
			li.Key(), li.Name, selection(li.SelectedAttributes),
			li.Quantity, label, money(li.UnitPrice), label, money(li.Subtotal()))
	}
	fmt.Fprintf(w, "Total: %s%s\n", label, money(c.TotalPrice()))
}
