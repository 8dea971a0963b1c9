package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
)

const schema = `CREATE TABLE IF NOT EXISTS cart_slots (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Slot implements repository.Slot as one row of a local SQLite file, the
// command line equivalent of a browser storage key.
type Slot struct {
	db   *sql.DB
	name string
	now  func() time.Time
}

// NewSlot creates the cart_slots table if needed and returns the slot
// stored in the row called name.
func NewSlot(ctx context.Context, db *sql.DB, name string) (*Slot, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create cart_slots table: %w", err)
	}
	return &Slot{db: db, name: name, now: time.Now}, nil
}

// Load returns the saved bytes or repository.ErrSlotEmpty.
func (s *Slot) Load(ctx context.Context) (data []byte, err error) {
	const query = `SELECT data FROM cart_slots WHERE name = ?`
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "LoadCartSlot", query)
	defer func() {
		if errors.Is(err, repository.ErrSlotEmpty) {
			end(nil)
			return
		}
		end(err)
	}()

	err = s.db.QueryRowContext(ctx, query, s.name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSlotEmpty
		}
		return nil, fmt.Errorf("sqlite load cart slot: %w", err)
	}
	return data, nil
}

// Save overwrites the slot.
func (s *Slot) Save(ctx context.Context, data []byte) (err error) {
	const query = `INSERT INTO cart_slots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	ctx, end := database.TraceQuery(ctx, database.SystemSQLite, "SaveCartSlot", query)
	defer func() { end(err) }()

	if _, err = s.db.ExecContext(ctx, query, s.name, data, s.now().UTC()); err != nil {
		return fmt.Errorf("sqlite save cart slot: %w", err)
	}
	return nil
}
