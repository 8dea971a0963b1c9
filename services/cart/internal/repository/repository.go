package repository

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Load when nothing has been saved yet.
var ErrSlotEmpty = errors.New("cart slot is empty")

// Slot is one named durable value holding the serialized cart. Save
// overwrites the previous value.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
