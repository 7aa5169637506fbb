// Package service exposes the session and history operations the UI calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/tally/internal/history"
	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/middleware"
	"github.com/mmynk/tally/internal/models"
	"github.com/mmynk/tally/internal/session"
	"github.com/mmynk/tally/internal/storage"
	"github.com/mmynk/tally/internal/storage/autosave"
)

// Options controls the behavior choices left to configuration.
type Options struct {
	// ArchiveOnDelete snapshots the session before a single item is removed.
	ArchiveOnDelete bool

	// QuantityPolicy decides whether decrement may go below zero.
	QuantityPolicy session.QuantityPolicy

	// AutosaveDebounce delays session writes.
	AutosaveDebounce time.Duration
}

// TallyService is the single entry point for UI intents.
//
// Each mutation runs to completion, including derived total recomputation,
// before the method returns; the post-mutation state is then handed to the
// autosaver. TallyService is not safe for concurrent use.
type TallyService struct {
	store    storage.Store
	live     *session.Store
	archive  *history.Archive
	saver    *autosave.Saver
	observer *middleware.Observer
	metrics  *metrics.Metrics
	opts     Options

	// label names the next snapshot created from an unbound session.
	label string
}

// NewTallyService loads the saved session from store and starts autosaving.
// A failed load is logged and the service starts with an empty session.
func NewTallyService(ctx context.Context, store storage.Store, opts Options, m *metrics.Metrics) *TallyService {
	if m == nil {
		m = metrics.New()
	}

	initial := models.SessionState{}
	values, err := store.GetValues(ctx, session.Keys...)
	if err != nil {
		m.RecordPersistenceFailure("load")
		slog.Error("Failed to load saved session, starting empty", "error", err)
	} else {
		initial = session.Decode(values)
		slog.Debug("Session loaded", "items", len(initial.Items), "cash_received", initial.CashReceived)
	}

	s := &TallyService{
		store:   store,
		live:    session.NewStore(initial, opts.QuantityPolicy),
		archive: history.New(store),
		saver: autosave.New(store,
			autosave.WithDebounce(opts.AutosaveDebounce),
			autosave.WithErrorHandler(func(error) { m.RecordPersistenceFailure("autosave") }),
		),
		observer: middleware.NewObserver(m,
			middleware.Outcome{Err: session.ErrValidation, Label: "validation_error"},
			middleware.Outcome{Err: session.ErrIndex, Label: "index_error"},
			middleware.Outcome{Err: history.ErrNotFound, Label: "not_found"},
			middleware.Outcome{Err: ErrCanceled, Label: "canceled"},
			middleware.Outcome{Err: storage.ErrPersistence, Label: "persistence_error"},
		),
		metrics: m,
		opts:    opts,
	}

	s.live.OnChange(func(state models.SessionState) {
		s.saver.Submit(state)
		m.SetSession(len(state.Items), state.TotalDue)
	})
	m.SetSession(len(initial.Items), s.live.State().TotalDue)

	return s
}

// State returns a copy of the live session.
func (s *TallyService) State() models.SessionState {
	return s.live.State()
}

// BoundID returns the snapshot the live session is bound to, or "".
func (s *TallyService) BoundID() string {
	return s.live.BoundID()
}

// Label returns the label that the next new snapshot will get.
func (s *TallyService) Label() string {
	return s.label
}

// SetLabel sets the label for the next snapshot created from an unbound session.
func (s *TallyService) SetLabel(label string) {
	s.label = label
}

// AddItem appends a line item.
func (s *TallyService) AddItem(ctx context.Context, name string, quantity, unitPrice float64) error {
	return s.observer.Observe(ctx, "add_item", func(context.Context) error {
		return s.live.AddItem(name, quantity, unitPrice)
	})
}

// CommitDraft adds the staged draft fields as a line item.
func (s *TallyService) CommitDraft(ctx context.Context) error {
	return s.observer.Observe(ctx, "commit_draft", func(context.Context) error {
		return s.live.CommitDraft()
	})
}

// SetDraft stages the add-item form. Quantity and price are free text.
func (s *TallyService) SetDraft(ctx context.Context, name, quantity, price string) {
	_ = s.observer.Observe(ctx, "set_draft", func(context.Context) error {
		s.live.SetDraftName(name)
		s.live.SetDraftQuantity(quantity)
		s.live.SetDraftPrice(price)
		return nil
	})
}

// UpdateItem changes one field of a line item.
func (s *TallyService) UpdateItem(ctx context.Context, index int, field session.Field, value string) error {
	return s.observer.Observe(ctx, "update_item", func(context.Context) error {
		return s.live.UpdateItem(index, field, value)
	})
}

// IncrementQuantity adds one unit to a line item.
func (s *TallyService) IncrementQuantity(ctx context.Context, index int) error {
	return s.observer.Observe(ctx, "increment_quantity", func(context.Context) error {
		return s.live.Increment(index)
	})
}

// DecrementQuantity removes one unit from a line item.
func (s *TallyService) DecrementQuantity(ctx context.Context, index int) error {
	return s.observer.Observe(ctx, "decrement_quantity", func(context.Context) error {
		return s.live.Decrement(index)
	})
}

// SetCashReceived parses free text into the cash amount.
func (s *TallyService) SetCashReceived(ctx context.Context, text string) {
	_ = s.observer.Observe(ctx, "set_cash_received", func(context.Context) error {
		s.live.SetCashReceived(text)
		return nil
	})
}

// ToggleLanguage switches between English and Arabic.
func (s *TallyService) ToggleLanguage(ctx context.Context) {
	_ = s.observer.Observe(ctx, "toggle_language", func(context.Context) error {
		s.live.ToggleLanguage()
		return nil
	})
}

// RemoveItem deletes a line item after confirmation. With ArchiveOnDelete the
// pre-removal session is archived first; an archive failure is logged and the
// removal still happens.
func (s *TallyService) RemoveItem(ctx context.Context, index int, c Confirmer) error {
	return s.observer.Observe(ctx, "remove_item", func(ctx context.Context) error {
		if n := len(s.live.State().Items); index < 0 || index >= n {
			return fmt.Errorf("%w: index %d, %d items", session.ErrIndex, index, n)
		}
		if !c.Confirm(ctx, PromptRemoveItem) {
			return ErrCanceled
		}
		if s.opts.ArchiveOnDelete {
			s.archiveQuietly(ctx)
		}
		return s.live.RemoveItem(index)
	})
}

// ClearAll archives the session and starts an empty one, after confirmation.
// An archive failure is logged and the session is still cleared.
func (s *TallyService) ClearAll(ctx context.Context, c Confirmer) error {
	return s.observer.Observe(ctx, "clear_all", func(ctx context.Context) error {
		if !c.Confirm(ctx, PromptClearAll) {
			return ErrCanceled
		}
		s.archiveQuietly(ctx)
		s.live.Clear()
		return nil
	})
}

// SaveToHistory archives the live session on demand and returns the snapshot.
func (s *TallyService) SaveToHistory(ctx context.Context) (models.HistorySnapshot, error) {
	var snap models.HistorySnapshot
	err := s.observer.Observe(ctx, "save_to_history", func(ctx context.Context) error {
		id, err := s.archiveSession(ctx)
		if err != nil {
			return err
		}
		snap, err = s.archive.Get(ctx, id)
		return err
	})
	return snap, err
}

// History lists the snapshots, oldest first.
func (s *TallyService) History(ctx context.Context) ([]models.HistorySnapshot, error) {
	var snaps []models.HistorySnapshot
	err := s.observer.Observe(ctx, "list_history", func(ctx context.Context) error {
		var err error
		snaps, err = s.archive.List(ctx)
		return err
	})
	return snaps, err
}

// Restore archives the live session and replaces it with snapshot id.
func (s *TallyService) Restore(ctx context.Context, id string) error {
	return s.observer.Observe(ctx, "restore", func(ctx context.Context) error {
		created, err := s.archive.Restore(ctx, s.live, id, s.label)
		if err != nil {
			return err
		}
		s.metrics.RecordSnapshot(created)
		if created {
			s.label = ""
		}
		s.metrics.Restores.Inc()
		slog.Info("Session restored from history", "snapshot_id", id)
		return nil
	})
}

// RenameSnapshot changes a snapshot's label.
func (s *TallyService) RenameSnapshot(ctx context.Context, id, label string) error {
	return s.observer.Observe(ctx, "rename_snapshot", func(ctx context.Context) error {
		return s.archive.Rename(ctx, id, label)
	})
}

// Flush waits until the latest session state is written.
func (s *TallyService) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes pending writes and stops autosaving. It does not close the store.
func (s *TallyService) Close() error {
	return s.saver.Close()
}

func (s *TallyService) archiveSession(ctx context.Context) (string, error) {
	id, created, err := s.archive.Archive(ctx, s.live, s.label)
	if err != nil {
		return "", err
	}
	s.metrics.RecordSnapshot(created)
	if created {
		s.label = ""
	}
	return id, nil
}

// archiveQuietly archives before a destructive edit. Persistence failures
// are logged and counted; the in-memory session stays authoritative.
func (s *TallyService) archiveQuietly(ctx context.Context) {
	if _, err := s.archiveSession(ctx); err != nil {
		if errors.Is(err, storage.ErrPersistence) {
			s.metrics.RecordPersistenceFailure("history")
		}
		slog.Error("Failed to archive session before edit", "error", err)
	}
}
