package postgres

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/Storefront/services/storefront/internal/domain"
)

func sampleCatalog() *domain.Catalog {
	return &domain.Catalog{
		Categories: []string{"all", "clothes"},
		Products: []domain.CatalogProduct{
			{
				ID:          "huarache",
				Name:        "Nike Air Huarache Le",
				InStock:     true,
				Gallery:     []string{"h1.jpg"},
				Description: "sneakers",
				Category:    "clothes",
				Brand:       "Nike",
				Attributes: []domain.AttributeSet{{
					Name:  "Size",
					Type:  "text",
					Items: []domain.AttributeItem{{DisplayValue: "40", Value: "40"}},
				}},
				Prices: []domain.CatalogPrice{{
					Amount:   decimal.RequireFromString("144.69"),
					Currency: domain.Currency{Label: "USD", Symbol: "$"},
				}},
			},
		},
	}
}

func expectLookups(mock pgxmock.PgxPoolIface, inserted int64) {
	mock.ExpectExec("INSERT INTO categories").WithArgs("all").WillReturnResult(pgxmock.NewResult("INSERT", inserted))
	mock.ExpectExec("INSERT INTO categories").WithArgs("clothes").WillReturnResult(pgxmock.NewResult("INSERT", inserted))
	mock.ExpectExec("INSERT INTO brands").WithArgs("Nike").WillReturnResult(pgxmock.NewResult("INSERT", inserted))
	mock.ExpectExec("INSERT INTO currencies").WithArgs("USD", "$").WillReturnResult(pgxmock.NewResult("INSERT", inserted))
}

func TestCatalogImporter_Import(t *testing.T) {
	mock := newMock(t)
	imp := NewCatalogImporter(mock, quietLogger())

	mock.ExpectBegin()
	expectLookups(mock, 1)
	mock.ExpectExec("INSERT INTO products").
		WithArgs("huarache", "Nike Air Huarache Le", true, "sneakers", "clothes", "Nike").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs("huarache", "h1.jpg").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO prices").
		WithArgs("huarache", "144.69", "USD").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("INSERT INTO attribute_sets").
		WithArgs("huarache", "Size", "text").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("INSERT INTO attribute_items").
		WithArgs(int64(7), "40", "40").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	stats, err := imp.Import(context.Background(), sampleCatalog())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 1, stats.Brands)
	assert.Equal(t, 1, stats.Currencies)
	assert.Equal(t, 1, stats.Products)
	assert.Zero(t, stats.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogImporter_Import_ExistingProductIsSkipped(t *testing.T) {
	mock := newMock(t)
	imp := NewCatalogImporter(mock, quietLogger())

	mock.ExpectBegin()
	expectLookups(mock, 0)
	mock.ExpectExec("INSERT INTO products").
		WithArgs("huarache", "Nike Air Huarache Le", true, "sneakers", "clothes", "Nike").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	stats, err := imp.Import(context.Background(), sampleCatalog())

	require.NoError(t, err)
	assert.Zero(t, stats.Products)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Categories)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogImporter_Import_ProductCategoryNotListed(t *testing.T) {
	mock := newMock(t)
	imp := NewCatalogImporter(mock, quietLogger())
	c := &domain.Catalog{Products: []domain.CatalogProduct{{ID: "ps-5", Name: "PS5", Category: "tech"}}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").WithArgs("tech").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO products").
		WithArgs("ps-5", "PS5", false, "", "tech", nil).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	stats, err := imp.Import(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Categories)
	assert.Equal(t, 1, stats.Products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogImporter_Import_FailureRollsBack(t *testing.T) {
	mock := newMock(t)
	imp := NewCatalogImporter(mock, quietLogger())

	mock.ExpectBegin()
	expectLookups(mock, 1)
	mock.ExpectExec("INSERT INTO products").
		WithArgs("huarache", "Nike Air Huarache Le", true, "sneakers", "clothes", "Nike").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO product_images").
		WithArgs("huarache", "h1.jpg").
		WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	_, err := imp.Import(context.Background(), sampleCatalog())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "import product huarache")
	assert.Contains(t, err.Error(), "insert image")
	assert.NoError(t, mock.ExpectationsWereMet())
}
