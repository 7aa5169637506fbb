package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/session"
	"github.com/mmynk/tally/internal/storage"
)

// recordingStore keeps every write and can be slowed down or made to fail.
type recordingStore struct {
	mu     sync.Mutex
	delay  time.Duration
	fail   bool
	writes []map[string]string
	active int
	maxPar int
}

func (r *recordingStore) GetValues(_ context.Context, keys ...string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]string{}
	if len(r.writes) == 0 {
		return out, nil
	}
	last := r.writes[len(r.writes)-1]
	for _, k := range keys {
		if v, ok := last[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *recordingStore) SetValues(_ context.Context, values map[string]string) error {
	r.mu.Lock()
	r.active++
	if r.active > r.maxPar {
		r.maxPar = r.active
	}
	r.mu.Unlock()

	time.Sleep(r.delay)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	if r.fail {
		return errors.New("disk full")
	}
	r.writes = append(r.writes, values)
	return nil
}

func (r *recordingStore) Close() error { return nil }

func (r *recordingStore) snapshot() ([]map[string]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]string(nil), r.writes...), r.maxPar
}

func stateWithCash(cash float64) models.SessionState {
	return models.SessionState{Items: []models.LineItem{}, CashReceived: cash, Remaining: cash}
}

func TestSaverWritesLatestState(t *testing.T) {
	store := &recordingStore{delay: 2 * time.Millisecond}
	saver := New(store)
	defer saver.Close()

	for i := 1; i <= 50; i++ {
		saver.Submit(stateWithCash(float64(i)))
	}
	require.NoError(t, saver.Flush(context.Background()))

	writes, maxPar := store.snapshot()
	require.NotEmpty(t, writes)
	assert.LessOrEqual(t, len(writes), 50)
	assert.Equal(t, "50", writes[len(writes)-1][session.KeyCashReceived])
	assert.Equal(t, 1, maxPar, "writes must never overlap")

	got, err := store.GetValues(context.Background(), session.Keys...)
	require.NoError(t, err)
	assert.Equal(t, 50.0, session.Decode(got).CashReceived)
}

func TestSaverDebounceCoalesces(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDebounce(50*time.Millisecond))
	defer saver.Close()

	saver.Submit(stateWithCash(1))
	saver.Submit(stateWithCash(2))
	saver.Submit(stateWithCash(3))
	require.NoError(t, saver.Flush(context.Background()))

	writes, _ := store.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "3", writes[0][session.KeyCashReceived])
}

func TestSaverCloseFlushesPending(t *testing.T) {
	store := &recordingStore{}
	saver := New(store, WithDebounce(time.Hour))

	saver.Submit(stateWithCash(7))
	require.NoError(t, saver.Close())

	writes, _ := store.snapshot()
	require.Len(t, writes, 1)
	assert.Equal(t, "7", writes[0][session.KeyCashReceived])

	// Submitting after close is ignored, and Flush does not hang.
	saver.Submit(stateWithCash(8))
	require.NoError(t, saver.Flush(context.Background()))
	require.NoError(t, saver.Close())
}

func TestSaverErrorsAreReported(t *testing.T) {
	store := &recordingStore{fail: true}

	var mu sync.Mutex
	var got []error
	saver := New(store, WithErrorHandler(func(err error) {
		mu.Lock()
		got = append(got, err)
		mu.Unlock()
	}))
	defer saver.Close()

	saver.Submit(stateWithCash(1))
	require.NoError(t, saver.Flush(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0], storage.ErrPersistence)
}

func TestSaverFlushHonorsContext(t *testing.T) {
	store := &recordingStore{delay: 200 * time.Millisecond}
	saver := New(store)
	defer saver.Close()

	saver.Submit(stateWithCash(1))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, saver.Flush(ctx), context.DeadlineExceeded)
	assert.Zero(t, saver.pendingFlushes(), "canceled Flush must not leave a waiter behind")
}
