package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	apperrors "github.com/utafrali/Storefront/pkg/errors"
	"github.com/utafrali/Storefront/services/cart/internal/domain"
)

func newCartCommand(opts *RootOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(formatter(opts, cmd), deps.Store.State())
		},
	})
	cmd.AddCommand(newCartAddCommand(opts, deps))
	cmd.AddCommand(&cobra.Command{
		Use:   "qty <lineKey> <quantity>",
		Short: "Set the quantity of a line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return out.Error(apperrors.InvalidInput(fmt.Sprintf("quantity %q is not a whole number", args[1])))
			}
			if err := requireLine(deps, args[0]); err != nil {
				return out.Error(err)
			}
			deps.Store.Dispatch(domain.UpdateQuantity{LineKey: args[0], Quantity: qty})
			return showCart(out, deps.Store.State())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "attr <lineKey> <name> <value>",
		Short: "Change one selected attribute of a line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			key, name, value := args[0], args[1], args[2]
			line, ok := deps.Store.State().Find(key)
			if !ok {
				return out.Error(apperrors.NotFound("cart line", key))
			}
			if err := checkOption(line, name, value); err != nil {
				return out.Error(err)
			}
			deps.Store.Dispatch(domain.UpdateAttribute{LineKey: key, Name: name, Value: value})
			return showCart(out, deps.Store.State())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps.Store.Dispatch(domain.ClearCart{})
			return showCart(formatter(opts, cmd), deps.Store.State())
		},
	})

	return cmd
}

func newCartAddCommand(opts *RootOptions, deps *Deps) *cobra.Command {
	var (
		qty   int
		attrs map[string]string
	)

	cmd := &cobra.Command{
		Use:   "add <productId>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. Every attribute of the product needs a
value, given as --attr Name=Value (repeat for each attribute).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			p, err := deps.Catalog.Product(cmd.Context(), args[0])
			if err != nil {
				return out.Error(err)
			}
			item, err := domain.NewLineItem(p, qty, attrs)
			if err != nil {
				return out.Error(err)
			}

			unsubscribe := deps.Store.OnAdded(func(items []domain.LineItem) {
				if out.Format == "json" {
					return
				}
				for _, it := range items {
					fmt.Fprintf(out.errWriter(), "Added %d x %s%s\n", it.Quantity, it.Name, selection(it.SelectedAttributes))
				}
			})
			defer unsubscribe()

			deps.Store.Dispatch(domain.AddOne(item))
			return showCart(out, deps.Store.State())
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	cmd.Flags().StringToStringVar(&attrs, "attr", nil, "attribute selection as Name=Value")

	return cmd
}

func showCart(out *OutputFormatter, c domain.Cart) error {
	return out.Success(newCartView(c), func(w io.Writer) { writeCart(w, c) })
}

func requireLine(deps *Deps, key string) error {
	if _, ok := deps.Store.State().Find(key); !ok {
		return apperrors.NotFound("cart line", key)
	}
	return nil
}

// checkOption rejects values that are not in the line's attribute catalog.
// Lines saved without a catalog accept any value.
func checkOption(line domain.LineItem, name, value string) error {
	if len(line.Attributes) == 0 {
		return nil
	}
	for _, set := range line.Attributes {
		if set.Name != name {
			continue
		}
		if !set.Has(value) {
			return apperrors.InvalidInput(fmt.Sprintf("%q is not a valid %s", value, name))
		}
		return nil
	}
	return apperrors.InvalidInput(fmt.Sprintf("%s has no attribute %q", line.Name, name))
}
