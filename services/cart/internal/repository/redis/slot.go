package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
)

const keyPrefix = "cart:"

// Slot implements repository.Slot as a single Redis string key.
type Slot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSlot returns a slot stored under "cart:<name>". A zero ttl keeps the
// value forever; otherwise every save refreshes the expiry.
func NewSlot(client *redis.Client, name string, ttl time.Duration) *Slot {
	return &Slot{
		client: client,
		key:    keyPrefix + name,
		ttl:    ttl,
	}
}

// Load returns the saved bytes or repository.ErrSlotEmpty.
func (s *Slot) Load(ctx context.Context) (data []byte, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "LoadCartSlot", "GET "+s.key)
	defer func() {
		if errors.Is(err, repository.ErrSlotEmpty) {
			end(nil)
			return
		}
		end(err)
	}()

	data, err = s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis get cart slot: %w", err)
	}
	return data, nil
}

// Save overwrites the slot.
func (s *Slot) Save(ctx context.Context, data []byte) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "SaveCartSlot", "SET "+s.key)
	defer func() { end(err) }()

	if err = s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart slot: %w", err)
	}
	return nil
}
