package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AppliesEmbeddedFilesInOrder(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	steps := []struct{ file, marker string }{
		{"001_catalog.up.sql", "CREATE TABLE IF NOT EXISTS categories"},
		{"002_orders.up.sql", "CREATE TABLE IF NOT EXISTS orders"},
	}
	for _, s := range steps {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(s.file).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectBegin()
		mock.ExpectExec(s.marker).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(s.file).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
	}

	require.NoError(t, Migrate(context.Background(), mock, quietLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_SkipsApplied(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for _, f := range []string{"001_catalog.up.sql", "002_orders.up.sql"} {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(f).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	}

	require.NoError(t, Migrate(context.Background(), mock, quietLogger()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
