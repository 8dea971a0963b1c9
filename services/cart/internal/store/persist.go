package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/Storefront/services/cart/internal/domain"
	"github.com/utafrali/Storefront/services/cart/internal/repository"
)

const saveTimeout = 5 * time.Second

// Persister mirrors cart changes into a Slot from one background
// goroutine. Only the newest pending state is kept, so a slow slot never
// blocks Dispatch and never writes an older cart over a newer one.
type Persister struct {
	slot   repository.Slot
	logger *slog.Logger

	mu      sync.Mutex
	pending *Change
	saved   uint64

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// NewPersister starts the writer goroutine. Stop it with Close.
func NewPersister(slot repository.Slot, logger *slog.Logger) *Persister {
	p := &Persister{
		slot:   slot,
		logger: logger,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Enqueue schedules c to be written. It is a Listener and returns
// immediately.
func (p *Persister) Enqueue(c Change) {
	p.mu.Lock()
	if c.Seq <= p.saved || (p.pending != nil && c.Seq <= p.pending.Seq) {
		p.mu.Unlock()
		return
	}
	p.pending = &c
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending state and stops the writer. It returns
// ctx.Err() if the final write does not finish in time.
func (p *Persister) Close(ctx context.Context) error {
	p.once.Do(func() { close(p.quit) })
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Persister) run() {
	defer close(p.done)
	for {
		select {
		case <-p.wake:
			p.flush()
		case <-p.quit:
			p.flush()
			return
		}
	}
}

func (p *Persister) flush() {
	p.mu.Lock()
	c := p.pending
	p.pending = nil
	p.mu.Unlock()
	if c == nil {
		return
	}

	if err := p.save(c.Next.Lines()); err != nil {
		p.logger.Warn("failed to persist cart",
			slog.Uint64("seq", c.Seq),
			slog.String("error", err.Error()),
		)
		return
	}

	p.mu.Lock()
	if c.Seq > p.saved {
		p.saved = c.Seq
	}
	p.mu.Unlock()

	p.logger.Debug("cart persisted",
		slog.Uint64("seq", c.Seq),
		slog.Int("lines", c.Next.Len()),
	)
}

func (p *Persister) save(lines []domain.LineItem) error {
	data, err := encodeLines(lines)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return p.slot.Save(ctx, data)
}
