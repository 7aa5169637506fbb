// Package history keeps labeled copies of past sessions.
//
// All snapshots live in a single JSON array stored under Key. The archive
// reads and rewrites that array on demand; nothing is cached between calls,
// so the stored list is the source of truth.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/session"
	"github.com/mmynk/tally/internal/storage"
)

// Key is the storage key holding the snapshot list. The suffix versions the
// record layout.
const Key = "history_v3"

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Archive manages the persisted snapshot list.
type Archive struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

// New creates an Archive on top of store.
func New(store storage.Store) *Archive {
	return &Archive{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// List returns every snapshot, oldest first.
func (a *Archive) List(ctx context.Context) ([]models.HistorySnapshot, error) {
	records, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	snaps := make([]models.HistorySnapshot, len(records))
	for i, r := range records {
		snaps[i] = r.toModel()
	}
	return snaps, nil
}

// Get returns the snapshot with the given id.
func (a *Archive) Get(ctx context.Context, id string) (models.HistorySnapshot, error) {
	records, err := a.load(ctx)
	if err != nil {
		return models.HistorySnapshot{}, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return models.HistorySnapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return records[i].toModel(), nil
}

// Snapshot stores state in the archive and returns the snapshot id.
//
// When boundID names an existing snapshot, that snapshot's data is replaced in
// place and its label and creation time are kept. Otherwise a new snapshot
// with a fresh id, the given label and the current time is appended. created
// reports which of the two happened.
func (a *Archive) Snapshot(ctx context.Context, state models.SessionState, boundID, label string) (id string, created bool, err error) {
	records, err := a.load(ctx)
	if err != nil {
		return "", false, err
	}

	if i := indexOf(records, boundID); boundID != "" && i >= 0 {
		existing := records[i]
		records[i] = newRecord(existing.ID, existing.Label, existing.Date, state)
		if err := a.save(ctx, records); err != nil {
			return "", false, err
		}
		slog.Debug("Updated history snapshot", "id", existing.ID, "items", len(state.Items))
		return existing.ID, false, nil
	} else if boundID != "" {
		slog.Warn("Bound snapshot missing, creating a new one", "bound_id", boundID)
	}

	r := newRecord(a.newID(), label, a.now(), state)
	records = append(records, r)
	if err := a.save(ctx, records); err != nil {
		return "", false, err
	}
	slog.Debug("Created history snapshot", "id", r.ID, "label", label, "items", len(state.Items))
	return r.ID, true, nil
}

// Archive snapshots the live session. A session restored from a snapshot
// updates that snapshot; any other session gets a new one. Archiving never
// binds the session, so every archive of an unrestored session is kept.
func (a *Archive) Archive(ctx context.Context, live *session.Store, label string) (id string, created bool, err error) {
	return a.Snapshot(ctx, live.State(), live.BoundID(), label)
}

// Restore replaces the live session with a copy of snapshot id.
//
// The current session is archived first (under label when it is not yet
// bound) so in-progress work is kept. If the id is unknown nothing changes
// and ErrNotFound is returned. If archiving fails the live session is left
// untouched and the error is returned. created reports whether archiving the
// current session appended a new snapshot.
//
// Restore is the only operation that binds the live session.
func (a *Archive) Restore(ctx context.Context, live *session.Store, id, label string) (created bool, err error) {
	if _, err := a.Get(ctx, id); err != nil {
		return false, err
	}

	_, created, err = a.Archive(ctx, live, label)
	if err != nil {
		return false, fmt.Errorf("failed to archive current session: %w", err)
	}

	// Re-read: when the live session was bound to id, archiving just refreshed it.
	snap, err := a.Get(ctx, id)
	if err != nil {
		return created, err
	}

	current := live.State()
	live.Clear()
	live.Replace(session.FromSnapshot(current, snap))
	live.Bind(id)
	return created, nil
}

// Rename changes the label of snapshot id.
func (a *Archive) Rename(ctx context.Context, id, label string) error {
	records, err := a.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	records[i].Label = label
	return a.save(ctx, records)
}

func (a *Archive) load(ctx context.Context) ([]record, error) {
	values, err := a.store.GetValues(ctx, Key)
	if err != nil {
		return nil, storage.Wrap("failed to read history", err)
	}

	raw, ok := values[Key]
	if !ok || raw == "" {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		// Refuse to continue: saving over an unreadable list would drop it.
		return nil, storage.Wrap("failed to parse history", err)
	}
	return records, nil
}

func (a *Archive) save(ctx context.Context, records []record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := a.store.SetValues(ctx, map[string]string{Key: string(data)}); err != nil {
		return storage.Wrap("failed to write history", err)
	}
	return nil
}

func indexOf(records []record, id string) int {
	if id == "" {
		return -1
	}
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
