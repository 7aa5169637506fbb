package session

import (
	"github.com/mmynk/tally/internal/calculator"
	"github.com/mmynk/tally/internal/models"
)

// Listener is called with a copy of the post-mutation state.
type Listener func(models.SessionState)

// Store owns the live session state.
//
// Store is not safe for concurrent use; the UI drives it from a single
// goroutine, one user action at a time.
type Store struct {
	state     models.SessionState
	policy    QuantityPolicy
	listeners []Listener
}

// NewStore creates a Store seeded with initial, which is recomputed first.
func NewStore(initial models.SessionState, policy QuantityPolicy) *Store {
	return &Store{
		state:  calculator.Recompute(initial),
		policy: policy,
	}
}

// OnChange registers fn to run after every successful mutation.
func (s *Store) OnChange(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

// State returns a copy of the live state.
func (s *Store) State() models.SessionState {
	return s.state.Clone()
}

// BoundID returns the id of the history snapshot this session is bound to,
// or "" while unbound.
func (s *Store) BoundID() string {
	return s.state.SnapshotID
}

// Bind ties the session to a history snapshot; later archives update it in place.
func (s *Store) Bind(id string) {
	s.applyPure(func(st models.SessionState) models.SessionState {
		st.SnapshotID = id
		return st
	})
}

// Policy returns the decrement policy.
func (s *Store) Policy() QuantityPolicy {
	return s.policy
}

func (s *Store) AddItem(name string, quantity, unitPrice float64) error {
	return s.apply(func(st models.SessionState) (models.SessionState, error) {
		return AddItem(st, name, quantity, unitPrice)
	})
}

func (s *Store) CommitDraft() error {
	return s.apply(CommitDraft)
}

func (s *Store) UpdateItem(index int, field Field, value string) error {
	return s.apply(func(st models.SessionState) (models.SessionState, error) {
		return UpdateItem(st, index, field, value)
	})
}

func (s *Store) Increment(index int) error {
	return s.apply(func(st models.SessionState) (models.SessionState, error) {
		return Increment(st, index)
	})
}

func (s *Store) Decrement(index int) error {
	return s.apply(func(st models.SessionState) (models.SessionState, error) {
		return Decrement(st, index, s.policy)
	})
}

func (s *Store) RemoveItem(index int) error {
	return s.apply(func(st models.SessionState) (models.SessionState, error) {
		return RemoveItem(st, index)
	})
}

func (s *Store) SetCashReceived(text string) {
	s.applyPure(func(st models.SessionState) models.SessionState {
		return SetCashReceived(st, text)
	})
}

func (s *Store) SetDraftName(name string) {
	s.applyPure(func(st models.SessionState) models.SessionState {
		return SetDraftName(st, name)
	})
}

func (s *Store) SetDraftQuantity(text string) {
	s.applyPure(func(st models.SessionState) models.SessionState {
		return SetDraftQuantity(st, text)
	})
}

func (s *Store) SetDraftPrice(text string) {
	s.applyPure(func(st models.SessionState) models.SessionState {
		return SetDraftPrice(st, text)
	})
}

func (s *Store) ToggleLanguage() {
	s.applyPure(ToggleLanguage)
}

// Clear empties the session, which also unbinds it.
func (s *Store) Clear() {
	s.applyPure(Clear)
}

// Replace swaps in a whole new state, as done by restore.
func (s *Store) Replace(state models.SessionState) {
	s.applyPure(func(models.SessionState) models.SessionState {
		return state
	})
}

func (s *Store) apply(fn func(models.SessionState) (models.SessionState, error)) error {
	next, err := fn(s.state.Clone())
	if err != nil {
		return err
	}
	s.commit(next)
	return nil
}

func (s *Store) applyPure(fn func(models.SessionState) models.SessionState) {
	s.commit(fn(s.state.Clone()))
}

func (s *Store) commit(next models.SessionState) {
	s.state = calculator.Recompute(next)
	for _, fn := range s.listeners {
		fn(s.state.Clone())
	}
}
