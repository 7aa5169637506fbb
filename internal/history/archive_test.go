package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/session"
	"github.com/mmynk/tally/internal/storage"
	"github.com/mmynk/tally/internal/storage/sqlite"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// setupArchive creates an Archive over a temp SQLite database with a
// deterministic clock and id sequence.
func setupArchive(t *testing.T) (*Archive, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	a := New(store)
	a.now = func() time.Time { return fixedTime }
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("snap-%d", n)
	}
	return a, store
}

func liveWith(t *testing.T, items ...models.LineItem) *session.Store {
	t.Helper()
	live := session.NewStore(models.SessionState{}, session.AllowNegative)
	for _, it := range items {
		require.NoError(t, live.AddItem(it.Name, it.Quantity, it.UnitPrice))
	}
	return live
}

func TestSnapshotCreatesAndUpdates(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 3, UnitPrice: 2})

	id, created, err := a.Snapshot(ctx, live.State(), "", "monday")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "snap-1", id)

	require.NoError(t, live.Increment(0))
	a.now = func() time.Time { return fixedTime.Add(time.Hour) }

	id2, created, err := a.Snapshot(ctx, live.State(), id, "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, id2)

	snaps, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "monday", snaps[0].Label, "label is preserved on update")
	assert.True(t, snaps[0].CreatedAt.Equal(fixedTime), "timestamp is preserved on update")
	assert.Equal(t, 4.0, snaps[0].Items[0].Quantity)
	assert.Equal(t, 8.0, snaps[0].TotalDue)
}

func TestSnapshotUnknownBoundIDCreates(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	id, created, err := a.Snapshot(ctx, models.SessionState{}, "gone", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, "gone", id)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 1, UnitPrice: 1})
	id, _, err := a.Snapshot(ctx, live.State(), "", "")
	require.NoError(t, err)

	require.NoError(t, live.UpdateItem(0, session.FieldName, "changed"))

	snap, err := a.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pen", snap.Items[0].Name)
}

func TestListOrder(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	snaps, err := a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	for _, label := range []string{"first", "second", "third"} {
		_, _, err := a.Snapshot(ctx, models.SessionState{}, "", label)
		require.NoError(t, err)
	}

	snaps, err = a.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "first", snaps[0].Label)
	assert.Equal(t, "third", snaps[2].Label)
}

func TestArchiveKeepsEverySnapshot(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()
	live := liveWith(t,
		models.LineItem{Name: "pen", Quantity: 1, UnitPrice: 5},
		models.LineItem{Name: "ink", Quantity: 1, UnitPrice: 2},
	)

	firstID, created, err := a.Archive(ctx, live, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, live.BoundID(), "archiving does not bind")

	require.NoError(t, live.RemoveItem(0))
	secondID, created, err := a.Archive(ctx, live, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, firstID, secondID)

	snaps, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.Len(t, snaps[0].Items, 2)
	assert.Equal(t, "pen", snaps[0].Items[0].Name, "the earlier snapshot is untouched")
	require.Len(t, snaps[1].Items, 1)
	assert.Equal(t, "ink", snaps[1].Items[0].Name)
}

func TestRestore(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	// An old session, archived and then cleared.
	old := liveWith(t, models.LineItem{Name: "bread", Quantity: 2, UnitPrice: 1.5})
	old.SetCashReceived("10")
	oldID, _, err := a.Archive(ctx, old, "bakery")
	require.NoError(t, err)

	// A new, unbound session in progress.
	live := liveWith(t, models.LineItem{Name: "milk", Quantity: 1, UnitPrice: 2})
	live.ToggleLanguage()

	created, err := a.Restore(ctx, live, oldID, "in progress")
	require.NoError(t, err)
	assert.True(t, created)

	state := live.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "bread", state.Items[0].Name)
	assert.Equal(t, 10.0, state.CashReceived)
	assert.Equal(t, 3.0, state.TotalDue)
	assert.Equal(t, 7.0, state.Remaining)
	assert.True(t, state.Arabic, "language is not part of a snapshot")
	assert.Equal(t, oldID, live.BoundID())

	snaps, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2, "the in-progress session was archived")
	assert.Equal(t, "in progress", snaps[1].Label)
	assert.Equal(t, "milk", snaps[1].Items[0].Name)

	// Archiving the restored session updates the restored snapshot.
	require.NoError(t, live.Increment(0))
	_, created, err = a.Archive(ctx, live, "")
	require.NoError(t, err)
	assert.False(t, created)

	snaps, err = a.List(ctx)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
	assert.Equal(t, 3.0, snaps[0].Items[0].Quantity)
	assert.Equal(t, "bakery", snaps[0].Label)
}

func TestRestoreNotFound(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()
	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 1, UnitPrice: 1})

	_, err := a.Restore(ctx, live, "missing", "")
	require.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, live.State().Items, 1)
	assert.Empty(t, live.BoundID())
	snaps, err := a.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, snaps, "nothing is archived on a failed restore")
}

func TestRestoreWithMissingBoundSnapshotCreates(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	targetID, _, err := a.Snapshot(ctx, models.SessionState{}, "", "target")
	require.NoError(t, err)

	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 1, UnitPrice: 1})
	live.Bind("gone")

	created, err := a.Restore(ctx, live, targetID, "rescued")
	require.NoError(t, err)
	assert.True(t, created, "a bound id missing from storage archives as a new snapshot")
	assert.Equal(t, targetID, live.BoundID())

	snaps, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "rescued", snaps[1].Label)
}

func TestRename(t *testing.T) {
	a, _ := setupArchive(t)
	ctx := context.Background()

	id, _, err := a.Snapshot(ctx, models.SessionState{}, "", "old")
	require.NoError(t, err)

	require.NoError(t, a.Rename(ctx, id, "new"))
	snap, err := a.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", snap.Label)

	assert.ErrorIs(t, a.Rename(ctx, "missing", "x"), ErrNotFound)
}

func TestCorruptHistoryIsNotOverwritten(t *testing.T) {
	a, store := setupArchive(t)
	ctx := context.Background()

	require.NoError(t, store.SetValues(ctx, map[string]string{Key: "{not json"}))

	_, _, err := a.Snapshot(ctx, models.SessionState{}, "", "")
	require.ErrorIs(t, err, storage.ErrPersistence)

	values, err := store.GetValues(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, "{not json", values[Key])
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) GetValues(context.Context, ...string) (map[string]string, error) {
	return nil, errors.New("disk gone")
}
func (failingStore) SetValues(context.Context, map[string]string) error {
	return errors.New("disk gone")
}
func (failingStore) Close() error { return nil }

func TestPersistenceErrors(t *testing.T) {
	a := New(failingStore{})
	ctx := context.Background()
	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 1, UnitPrice: 1})

	_, err := a.List(ctx)
	assert.ErrorIs(t, err, storage.ErrPersistence)

	_, _, err = a.Archive(ctx, live, "")
	assert.ErrorIs(t, err, storage.ErrPersistence)
	assert.Empty(t, live.BoundID())
}

func TestStoredLayout(t *testing.T) {
	a, store := setupArchive(t)
	ctx := context.Background()

	live := liveWith(t, models.LineItem{Name: "pen", Quantity: 3, UnitPrice: 2})
	live.SetDraftName("ink")
	_, _, err := a.Archive(ctx, live, "desk")
	require.NoError(t, err)

	values, err := store.GetValues(ctx, Key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"id": "snap-1",
		"label": "desk",
		"items": [{"name":"pen","quantity":3,"unitPrice":2,"lineTotal":6}],
		"cashReceived": 0,
		"totalDue": 6,
		"draftProductName": "ink",
		"draftQuantity": 0,
		"draftPrice": 0,
		"date": "2024-03-01T09:30:00Z"
	}]`, values[Key])
}
