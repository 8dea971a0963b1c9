package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/Storefront/pkg/pagination"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/repository"
)

// CatalogService serves product listings and details.
type CatalogService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// Products returns one page of the catalog. Products whose category has no
// product kind are left out of the listing and logged. The returned total
// counts every stored product.
func (s *CatalogService) Products(ctx context.Context, page pagination.Params) ([]domain.Product, int, error) {
	products, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	out := products[:0]
	for _, p := range products {
		if err := p.Classify(); err != nil {
			if !errors.Is(err, domain.ErrUnknownCategory) {
				return nil, 0, err
			}
			s.logger.WarnContext(ctx, "skipping product with unknown category",
				slog.String("product_id", p.ID),
				slog.String("category", p.CategoryName),
			)
			continue
		}
		out = append(out, p)
	}
	return out, total, nil
}

// Product returns the detail of one product. An unknown category leaves
// Kind empty.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.ProductDetail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	_ = d.Classify()
	return d, nil
}
