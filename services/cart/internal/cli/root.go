package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/utafrali/Storefront/services/cart/internal/checkout"
	"github.com/utafrali/Storefront/services/cart/internal/domain"
	"github.com/utafrali/Storefront/services/cart/internal/store"
)

// Catalog reads products from the storefront.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) (domain.ProductDetail, error)
}

// Checkout submits the cart as an order.
type Checkout interface {
	Checkout(ctx context.Context, customer checkout.Customer) (checkout.OrderResult, error)
}

// Deps are the collaborators every command works with. They are built
// once by the caller and shared by all commands.
type Deps struct {
	Catalog  Catalog
	Store    *store.Store
	Checkout Checkout
	Logger   *slog.Logger
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand(deps *Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Browse the storefront catalog and manage your cart",
		Long: `Browse the storefront catalog, keep a cart that survives restarts
and check it out as an order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				err := fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return &ExitError{Code: ExitCommandError, Err: err}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newProductsCommand(opts, deps))
	cmd.AddCommand(newProductCommand(opts, deps))
	cmd.AddCommand(newCartCommand(opts, deps))
	cmd.AddCommand(newCheckoutCommand(opts, deps))

	return cmd
}

func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func newProductsCommand(opts *RootOptions, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			products, err := deps.Catalog.Products(cmd.Context())
			if err != nil {
				return out.Error(err)
			}
			out.VerboseLog("Fetched %d product(s)", len(products))

			views := make([]productView, len(products))
			for i, p := range products {
				views[i] = newProductView(p)
			}
			return out.Success(views, func(w io.Writer) { writeProducts(w, products) })
		},
	}
}

func newProductCommand(opts *RootOptions, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product with its attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			p, err := deps.Catalog.Product(cmd.Context(), args[0])
			if err != nil {
				return out.Error(err)
			}
			return out.Success(newProductDetailView(p), func(w io.Writer) { writeProductDetail(w, p) })
		},
	}
}

func newCheckoutCommand(opts *RootOptions, deps *Deps) *cobra.Command {
	var customer checkout.Customer

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for everything in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(opts, cmd)
			result, err := deps.Checkout.Checkout(cmd.Context(), customer)
			if err != nil {
				return out.Error(err)
			}
			return out.Success(result, func(w io.Writer) {
				fmt.Fprintf(w, "Order %s placed. %s\n", result.OrderID, result.Message)
			})
		},
	}

	cmd.Flags().StringVar(&customer.Email, "email", "", "customer email address")
	cmd.Flags().StringVar(&customer.ShippingAddress, "address", "", "shipping address")

	return cmd
}
