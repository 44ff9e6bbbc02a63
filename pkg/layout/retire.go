package layout

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// RetireState is the lifecycle state of a Retirer.
type RetireState int

const (
	// RetireIdle means the retirer is waiting for models.
	RetireIdle RetireState = iota
	// RetireDraining means the retirer is releasing a model.
	RetireDraining
	// RetireStopped means the retirer has been stopped.
	RetireStopped
)

func (s RetireState) String() string {
	switch s {
	case RetireIdle:
		return "idle"
	case RetireDraining:
		return "draining"
	case RetireStopped:
		return "stopped"
	}
	return fmt.Sprintf("RetireState(%d)", int(s))
}

// RetireError records a panic raised by an OnRetire hook.
type RetireError struct {
	Cause error
	Time  time.Time
	Items int // Item count of the model being released
}

func (e RetireError) Error() string {
	return fmt.Sprintf("retire failed (%d items): %v", e.Items, e.Cause)
}

func (e RetireError) Unwrap() error {
	return e.Cause
}

// RetireStats summarizes what a Retirer has released.
type RetireStats struct {
	Models  int // Models released by the background goroutine
	Items   int // Total items across released models
	Dropped int // Models released inline because the queue was full
}

// RetireConfig configures a Retirer.
type RetireConfig struct {
	// QueueSize bounds the number of models waiting for release (default: 16).
	QueueSize int
	// OnRetire runs on the background goroutine for every released model.
	// The model must be treated as read-only.
	OnRetire func(*Model)
}

// Retirer releases replaced models off the interactive goroutine. Retire is
// fire-and-forget and never blocks; nothing is promised about when, or
// whether, a model is released before the process exits.
type Retirer struct {
	queue    chan *Model
	onRetire func(*Model)

	mu        sync.RWMutex
	state     RetireState
	started   bool
	stats     RetireStats
	lastError *RetireError

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRetirer creates a retirer. Call Start to begin draining.
func NewRetirer(cfg RetireConfig) *Retirer {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Retirer{
		queue:    make(chan *Model, cfg.QueueSize),
		onRetire: cfg.OnRetire,
		state:    RetireIdle,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start launches the draining goroutine. Start is idempotent.
func (r *Retirer) Start() {
	r.mu.Lock()
	if r.started || r.state == RetireStopped {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go r.drainLoop()
}

// Stop halts draining after releasing whatever is already queued. Stop is
// idempotent.
func (r *Retirer) Stop() {
	r.mu.Lock()
	if r.state == RetireStopped {
		r.mu.Unlock()
		return
	}
	r.state = RetireStopped
	wasStarted := r.started
	r.mu.Unlock()

	r.cancel()

	if wasStarted {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			// Best effort; the remaining models are left to the collector
		}
	}
}

// Retire hands m over for release. The caller must not use m for layout work
// afterwards. A nil model is ignored.
func (r *Retirer) Retire(m *Model) {
	if r == nil || m == nil {
		return
	}
	r.mu.RLock()
	stopped := r.state == RetireStopped
	r.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case r.queue <- m:
	default:
		r.mu.Lock()
		r.stats.Dropped++
		r.mu.Unlock()
	}
}

// State returns the current state.
func (r *Retirer) State() RetireState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Stats returns a snapshot of the release counters.
func (r *Retirer) Stats() RetireStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// LastError returns the most recent hook failure, or nil.
func (r *Retirer) LastError() *RetireError {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

func (r *Retirer) drainLoop() {
	defer close(r.done)
	for {
		select {
		case <-r.ctx.Done():
			r.drainPending()
			return
		case m := <-r.queue:
			r.release(m)
		}
	}
}

// drainPending releases queued models without waiting for new ones.
func (r *Retirer) drainPending() {
	for {
		select {
		case m := <-r.queue:
			r.release(m)
		default:
			return
		}
	}
}

func (r *Retirer) release(m *Model) {
	r.mu.Lock()
	if r.state != RetireStopped {
		r.state = RetireDraining
	}
	r.mu.Unlock()

	items := m.Len()
	err := r.safeRelease(m, items)

	r.mu.Lock()
	r.stats.Models++
	r.stats.Items += items
	if err != nil {
		r.lastError = err
	}
	if r.state != RetireStopped {
		r.state = RetireIdle
	}
	r.mu.Unlock()

	if err != nil {
		log.Printf("retire: %v", err)
	}
}

// safeRelease runs the hook and recovers from any panic it raises.
func (r *Retirer) safeRelease(m *Model, items int) (result *RetireError) {
	if r.onRetire == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			result = &RetireError{
				Cause: fmt.Errorf("panic: %v\n%s", p, debug.Stack()),
				Time:  time.Now(),
				Items: items,
			}
		}
	}()
	r.onRetire(m)
	return nil
}
