package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/Storefront/pkg/logger"
	"github.com/utafrali/Storefront/services/cart/internal/domain"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
)

// memSlot is an in-memory repository.Slot.
type memSlot struct {
	mu      sync.Mutex
	data    []byte
	loadErr error
	saves   int
	block   chan struct{}
}

func (m *memSlot) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, repository.ErrSlotEmpty
	}
	return m.data, nil
}

func (m *memSlot) Save(ctx context.Context, data []byte) error {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memSlot) snapshot() ([]byte, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data, m.saves
}

func testLogger() *slog.Logger {
	return logger.NewWithWriter("cart-test", "debug", io.Discard)
}

func shirt(size string, qty int) domain.LineItem {
	return domain.LineItem{
		ProductID:          "P1",
		Name:               "Shirt",
		UnitPrice:          decimal.RequireFromString("10.50"),
		CurrencyLabel:      "$",
		Quantity:           qty,
		SelectedAttributes: map[string]string{"Size": size},
	}
}

func closeStore(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

// ============================================================================
// Hydration
// ============================================================================

func TestOpen_EmptySlot(t *testing.T) {
	s := Open(context.Background(), &memSlot{}, testLogger())
	defer closeStore(t, s)

	assert.True(t, s.State().IsEmpty())
}

func TestOpen_MalformedSlotStartsEmpty(t *testing.T) {
	for _, payload := range []string{`{broken`, `{"productId":"P1"}`, `42`} {
		slot := &memSlot{data: []byte(payload)}
		s := Open(context.Background(), slot, testLogger())
		assert.True(t, s.State().IsEmpty(), "payload %q", payload)
		closeStore(t, s)

		data, _ := slot.snapshot()
		assert.Equal(t, payload, string(data), "nothing changed so nothing is written")
	}
}

func TestOpen_LoadErrorStartsEmpty(t *testing.T) {
	s := Open(context.Background(), &memSlot{loadErr: errors.New("disk on fire")}, testLogger())
	defer closeStore(t, s)

	assert.True(t, s.State().IsEmpty())
}

func TestOpen_HydratesAndMergesDuplicates(t *testing.T) {
	slot := &memSlot{data: []byte(`[
		{"productId":"P1","name":"Shirt","unitPrice":"12.99 USD","currencyLabel":"$","quantity":1,"selectedAttributes":{"Size":"M"}},
		{"productId":"P2","name":"Mug","unitPrice":"free","currencyLabel":"$","quantity":2},
		{"productId":"P1","name":"Shirt","unitPrice":12.99,"currencyLabel":"$","quantity":2,"selectedAttributes":{"Size":"M"}},
		{"productId":"P3","quantity":0}
	]`)}

	s := Open(context.Background(), slot, testLogger())
	defer closeStore(t, s)

	c := s.State()
	require.Equal(t, 2, c.Len())
	lines := c.Lines()
	assert.Equal(t, "P1_Size:M", lines[0].Key())
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, "12.99", lines[0].UnitPrice.String())
	assert.Equal(t, "P2", lines[1].ProductID)
	assert.True(t, lines[1].UnitPrice.IsZero())
	assert.Equal(t, "38.97", c.TotalPrice().StringFixed(2))
}

// ============================================================================
// Dispatch and observers
// ============================================================================

func TestDispatch_NotifiesListenersInOrder(t *testing.T) {
	s := New(testLogger())

	var seen []Change
	unsubscribe := s.Subscribe(func(c Change) { seen = append(seen, c) })

	assert.True(t, s.Dispatch(domain.AddOne(shirt("M", 1))))
	assert.False(t, s.Dispatch(domain.UpdateQuantity{LineKey: "missing_", Quantity: 3}))
	assert.True(t, s.Dispatch(domain.UpdateQuantity{LineKey: "P1_Size:M", Quantity: 4}))

	require.Len(t, seen, 2)
	assert.Equal(t, uint64(1), seen[0].Seq)
	assert.True(t, seen[0].Prev.IsEmpty())
	assert.Equal(t, 1, seen[0].Next.ItemCount())
	assert.Equal(t, uint64(2), seen[1].Seq)
	assert.Equal(t, 4, seen[1].Next.ItemCount())
	assert.IsType(t, domain.UpdateQuantity{}, seen[1].Action)

	unsubscribe()
	s.Dispatch(domain.ClearCart{})
	assert.Len(t, seen, 2)
	assert.True(t, s.State().IsEmpty())
}

func TestDispatch_ListenerMayReadState(t *testing.T) {
	s := New(testLogger())
	var count int
	s.Subscribe(func(Change) { count = s.State().ItemCount() })

	s.Dispatch(domain.AddOne(shirt("S", 2)))
	assert.Equal(t, 2, count)
}

func TestOnAdded_UserAddsOnly(t *testing.T) {
	slot := &memSlot{data: []byte(`[{"productId":"P9","quantity":1}]`)}
	s := New(testLogger())

	var added [][]domain.LineItem
	remove := s.OnAdded(func(items []domain.LineItem) { added = append(added, items) })

	s.hydrate(context.Background(), slot)
	assert.Empty(t, added, "hydration is not a user add")

	s.Dispatch(domain.AddOne(shirt("L", 1)))
	require.Len(t, added, 1)
	assert.Equal(t, "P1_Size:L", added[0][0].Key())

	s.Dispatch(domain.AddOne(shirt("L", 0)))
	assert.Len(t, added, 1, "an add that changes nothing is not reported")

	remove()
	s.Dispatch(domain.AddOne(shirt("XL", 1)))
	assert.Len(t, added, 1)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := New(testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(domain.AddOne(shirt("M", 1)))
		}()
	}
	wg.Wait()

	c := s.State()
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 50, c.ItemCount())
}

// ============================================================================
// Persistence
// ============================================================================

func TestOpen_PersistsEveryChange(t *testing.T) {
	slot := &memSlot{}
	s := Open(context.Background(), slot, testLogger())

	s.Dispatch(domain.AddOne(shirt("M", 2)))
	s.Dispatch(domain.UpdateAttribute{LineKey: "P1_Size:M", Name: "Size", Value: "L"})
	closeStore(t, s)

	data, _ := slot.snapshot()
	lines, err := decodeLines(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "P1_Size:L", lines[0].Key())
	assert.Equal(t, 2, lines[0].Quantity)

	reopened := Open(context.Background(), slot, testLogger())
	defer closeStore(t, reopened)
	assert.Equal(t, 2, reopened.State().ItemCount())
}

func TestOpen_ClearIsPersisted(t *testing.T) {
	slot := &memSlot{}
	s := Open(context.Background(), slot, testLogger())
	s.Dispatch(domain.AddOne(shirt("M", 1)))
	s.Dispatch(domain.ClearCart{})
	closeStore(t, s)

	data, _ := slot.snapshot()
	assert.JSONEq(t, `[]`, string(data))
}

func TestPersister_DispatchDoesNotWaitForSlot(t *testing.T) {
	slot := &memSlot{block: make(chan struct{})}
	s := Open(context.Background(), slot, testLogger())

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 20; i++ {
			s.Dispatch(domain.UpdateQuantity{LineKey: "P1_Size:M", Quantity: i})
			s.Dispatch(domain.AddOne(shirt("M", 1)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on a slow slot")
	}

	close(slot.block)
	closeStore(t, s)

	data, saves := slot.snapshot()
	assert.Less(t, saves, 40, "pending writes are coalesced")
	lines, err := decodeLines(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, s.State().ItemCount(), lines[0].Quantity, "the newest state is written last")
}

func TestPersister_DropsStaleChanges(t *testing.T) {
	slot := &memSlot{}
	p := NewPersister(slot, testLogger())

	newer := domain.NewCart(shirt("M", 5))
	older := domain.NewCart(shirt("M", 1))

	p.Enqueue(Change{Seq: 2, Next: newer})
	p.Enqueue(Change{Seq: 1, Next: older})
	require.NoError(t, p.Close(context.Background()))

	data, _ := slot.snapshot()
	lines, err := decodeLines(data)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestPersister_CloseHonoursContext(t *testing.T) {
	slot := &memSlot{block: make(chan struct{})}
	defer close(slot.block)
	p := NewPersister(slot, testLogger())
	p.Enqueue(Change{Seq: 1, Next: domain.NewCart(shirt("M", 1))})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Close(ctx), context.DeadlineExceeded)
}

func TestStore_CloseWithoutPersister(t *testing.T) {
	assert.NoError(t, New(testLogger()).Close(context.Background()))
}
