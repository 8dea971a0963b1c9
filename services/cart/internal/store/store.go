package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/Storefront/services/cart/internal/domain"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
)

// Change describes one applied transition. Seq increases by one per
// change, so listeners can discard stale notifications.
type Change struct {
	Seq    uint64
	Prev   domain.Cart
	Next   domain.Cart
	Action domain.Action
}

// Listener is called after every change, outside the store lock.
type Listener func(Change)

// AddedObserver is told about items a user added to the cart. Hydration
// does not trigger it.
type AddedObserver func(items []domain.LineItem)

// Store owns the cart of one client. It is built once at startup and
// handed to everything that reads or changes the cart.
type Store struct {
	logger *slog.Logger

	mu        sync.Mutex
	cart      domain.Cart
	seq       uint64
	nextID    int
	listeners map[int]Listener
	observers map[int]AddedObserver

	persister *Persister
}

// New returns a store holding an empty cart.
func New(logger *slog.Logger) *Store {
	return &Store{
		logger:    logger,
		listeners: make(map[int]Listener),
		observers: make(map[int]AddedObserver),
	}
}

// Open builds a store hydrated from slot and keeps slot updated after
// every change. A missing or unreadable slot gives an empty cart.
func Open(ctx context.Context, slot repository.Slot, logger *slog.Logger) *Store {
	s := New(logger)
	s.hydrate(ctx, slot)

	s.persister = NewPersister(slot, logger)
	s.Subscribe(s.persister.Enqueue)
	return s
}

func (s *Store) hydrate(ctx context.Context, slot repository.Slot) {
	data, err := slot.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSlotEmpty) {
			s.logger.DebugContext(ctx, "no saved cart")
			return
		}
		s.logger.WarnContext(ctx, "failed to load saved cart, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}

	lines, err := decodeLines(data)
	if err != nil {
		s.logger.WarnContext(ctx, "saved cart is malformed, starting empty",
			slog.String("error", err.Error()),
		)
		return
	}

	s.Dispatch(domain.AddBatch(lines))
	s.logger.DebugContext(ctx, "cart hydrated",
		slog.Int("records", len(lines)),
		slog.Int("lines", s.State().Len()),
	)
}

// State returns the current cart.
func (s *Store) State() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Dispatch applies a to the cart and reports whether it changed.
// Listeners run after the new state is visible to State.
func (s *Store) Dispatch(a domain.Action) bool {
	s.mu.Lock()
	next, changed := domain.Reduce(s.cart, a)
	if !changed {
		s.mu.Unlock()
		return false
	}
	s.seq++
	change := Change{Seq: s.seq, Prev: s.cart, Next: next, Action: a}
	s.cart = next
	listeners := collect(s.listeners)
	var observers []AddedObserver
	if add, ok := a.(domain.AddItem); ok && !add.Batch {
		observers = collect(s.observers)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
	if len(observers) > 0 {
		items := a.(domain.AddItem).Items
		for _, o := range observers {
			o(items)
		}
	}
	return true
}

// Subscribe registers l for every future change. The returned function
// removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// OnAdded registers o for user adds. The returned function removes it.
func (s *Store) OnAdded(o AddedObserver) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Close flushes the last change to the slot. It is a no-op for stores
// built with New.
func (s *Store) Close(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Close(ctx)
}

// collect returns the map's values ordered by registration id.
func collect[T any](m map[int]T) []T {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}
