// Package autosave persists the latest session state in the background.
//
// A Saver owns one writer goroutine. Submitted states coalesce so only the
// newest pending state is written, and writes never overlap, so an older
// state can never land after a newer one.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/session"
	"github.com/mmynk/tally/internal/storage"
)

// Saver writes session states to a storage.Store.
type Saver struct {
	store    storage.Store
	debounce time.Duration
	timeout  time.Duration
	onError  func(error)

	mu        sync.Mutex
	cond      *sync.Cond
	pending   *models.SessionState
	submitted uint64 // sequence of the newest submitted state
	written   uint64 // sequence of the newest state whose write finished
	closed    bool
	waiters   int // Flush calls blocked on cond

	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// Option configures a Saver.
type Option func(*Saver)

// WithDebounce delays each write by d so bursts of changes produce one write.
func WithDebounce(d time.Duration) Option {
	return func(s *Saver) { s.debounce = d }
}

// WithErrorHandler is called after a failed write, in addition to logging.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Saver) { s.onError = fn }
}

// New starts a Saver. Call Close to flush and stop it.
func New(store storage.Store, opts ...Option) *Saver {
	s := &Saver{
		store:   store,
		timeout: 5 * time.Second,
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

// Submit queues state for writing, replacing any state still pending.
// It never blocks on I/O.
func (s *Saver) Submit(state models.SessionState) {
	state = state.Clone()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		slog.Warn("Autosave submit after close ignored")
		return
	}
	s.pending = &state
	s.submitted++
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Flush blocks until every state submitted before the call has been written
// (or its write has failed), or ctx is done. A canceled Flush leaves no
// goroutine behind.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.submitted
	s.waiters++
	s.mu.Unlock()

	var err error
	waitDone := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.written < target && !s.stopped() && ctx.Err() == nil {
			s.cond.Wait()
		}
		if s.written < target && !s.stopped() {
			err = ctx.Err()
		}
		s.waiters--
		s.mu.Unlock()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-ctx.Done():
		// Holding mu orders the broadcast after the waiter's ctx check.
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
		<-waitDone
	}
	return err
}

// pendingFlushes reports how many Flush calls are still waiting.
func (s *Saver) pendingFlushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters
}

// Close writes any pending state and stops the writer goroutine.
func (s *Saver) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

// stopped reports whether the writer has exited. Callers hold s.mu.
func (s *Saver) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Saver) run() {
	defer func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
		s.cond.Broadcast()
	}()

	for {
		select {
		case <-s.kick:
			if s.debounce > 0 {
				select {
				case <-time.After(s.debounce):
				case <-s.stop:
				}
			}
			s.writePending()
		case <-s.stop:
			s.writePending()
			return
		}
	}
}

func (s *Saver) writePending() {
	s.mu.Lock()
	state := s.pending
	seq := s.submitted
	s.pending = nil
	s.mu.Unlock()

	if state != nil {
		s.write(*state)
	}

	s.mu.Lock()
	if seq > s.written {
		s.written = seq
	}
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *Saver) write(state models.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	values, err := session.Encode(state)
	if err == nil {
		err = s.store.SetValues(ctx, values)
	}
	if err != nil {
		err = storage.Wrap("autosave failed", err)
		slog.Error("Autosave failed", "error", err, "items", len(state.Items))
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	slog.Debug("Session saved",
		"items", len(state.Items),
		"total_due", state.TotalDue,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
