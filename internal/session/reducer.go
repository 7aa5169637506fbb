// Package session holds the live shopping session and the pure operations that
// transform it.
//
// Every operation takes a models.SessionState and returns the next state with
// derived totals already recomputed; the input is never modified. Store wraps
// these functions around a single live value and notifies listeners after
// each successful change.
package session

import (
	"fmt"
	"strings"

	"github.com/mmynk/tally/internal/calculator"
	"github.com/mmynk/tally/internal/models"
)

// Field names a line item attribute that UpdateItem can change.
type Field string

const (
	FieldName     Field = "name"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
)

// ParseField maps user input to a Field.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldName:
		return FieldName, nil
	case FieldQuantity, "qty":
		return FieldQuantity, nil
	case FieldPrice, "unitprice":
		return FieldPrice, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrValidation, s)
}

// QuantityPolicy decides what Decrement does at zero.
type QuantityPolicy int

const (
	// AllowNegative lets quantities go below zero.
	AllowNegative QuantityPolicy = iota
	// ClampAtZero stops decrement at zero.
	ClampAtZero
)

// ParseQuantityPolicy accepts "allow" or "clamp".
func ParseQuantityPolicy(s string) (QuantityPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return AllowNegative, nil
	case "clamp":
		return ClampAtZero, nil
	}
	return AllowNegative, fmt.Errorf("unknown quantity policy %q (want allow or clamp)", s)
}

func (p QuantityPolicy) String() string {
	if p == ClampAtZero {
		return "clamp"
	}
	return "allow"
}

// AddItem appends a new line item and clears the draft.
func AddItem(s models.SessionState, name string, quantity, unitPrice float64) (models.SessionState, error) {
	if name == "" {
		return s, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}

	quantity = calculator.Normalize(quantity)
	unitPrice = calculator.Normalize(unitPrice)

	next := s.Clone()
	next.Items = append(next.Items, models.LineItem{
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: calculator.LineTotal(quantity, unitPrice),
	})
	next.Draft = models.Draft{}
	return calculator.Recompute(next), nil
}

// CommitDraft adds the staged draft as a line item.
func CommitDraft(s models.SessionState) (models.SessionState, error) {
	return AddItem(s, s.Draft.ProductName, s.Draft.Quantity, s.Draft.Price)
}

// UpdateItem sets one field of the item at index. Numeric values are coerced
// with calculator.SanitizeNumeric.
func UpdateItem(s models.SessionState, index int, field Field, value string) (models.SessionState, error) {
	if err := checkIndex(s, index); err != nil {
		return s, err
	}

	next := s.Clone()
	item := &next.Items[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldQuantity:
		item.Quantity = calculator.SanitizeNumeric(value)
	case FieldPrice:
		item.UnitPrice = calculator.SanitizeNumeric(value)
	default:
		return s, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}
	return calculator.Recompute(next), nil
}

// Increment adds one to the item's quantity.
func Increment(s models.SessionState, index int) (models.SessionState, error) {
	return adjustQuantity(s, index, 1, AllowNegative)
}

// Decrement subtracts one from the item's quantity, honoring policy.
func Decrement(s models.SessionState, index int, policy QuantityPolicy) (models.SessionState, error) {
	return adjustQuantity(s, index, -1, policy)
}

func adjustQuantity(s models.SessionState, index int, delta float64, policy QuantityPolicy) (models.SessionState, error) {
	if err := checkIndex(s, index); err != nil {
		return s, err
	}

	next := s.Clone()
	q := next.Items[index].Quantity + delta
	if policy == ClampAtZero && q < 0 {
		q = 0
	}
	next.Items[index].Quantity = q
	return calculator.Recompute(next), nil
}

// RemoveItem deletes the item at index, keeping the others in order.
func RemoveItem(s models.SessionState, index int) (models.SessionState, error) {
	if err := checkIndex(s, index); err != nil {
		return s, err
	}

	next := s.Clone()
	next.Items = append(next.Items[:index], next.Items[index+1:]...)
	return calculator.Recompute(next), nil
}

// SetCashReceived parses free text into the cash amount.
func SetCashReceived(s models.SessionState, text string) models.SessionState {
	next := s.Clone()
	next.CashReceived = calculator.SanitizeNumeric(text)
	return calculator.Recompute(next)
}

// SetDraftName stages the product name.
func SetDraftName(s models.SessionState, name string) models.SessionState {
	next := s.Clone()
	next.Draft.ProductName = name
	return next
}

// SetDraftQuantity stages the quantity from free text.
func SetDraftQuantity(s models.SessionState, text string) models.SessionState {
	next := s.Clone()
	next.Draft.Quantity = calculator.SanitizeNumeric(text)
	return next
}

// SetDraftPrice stages the unit price from free text.
func SetDraftPrice(s models.SessionState, text string) models.SessionState {
	next := s.Clone()
	next.Draft.Price = calculator.SanitizeNumeric(text)
	return next
}

// ToggleLanguage flips between English and Arabic.
func ToggleLanguage(s models.SessionState) models.SessionState {
	next := s.Clone()
	next.Arabic = !next.Arabic
	return next
}

// Clear empties the session and unbinds it from any snapshot. The language
// choice survives.
func Clear(s models.SessionState) models.SessionState {
	return calculator.Recompute(models.SessionState{
		Items:  []models.LineItem{},
		Arabic: s.Arabic,
	})
}

// FromSnapshot builds a live session from a history snapshot, keeping the
// current language. The result is unbound; callers bind it once restored.
func FromSnapshot(current models.SessionState, snap models.HistorySnapshot) models.SessionState {
	return calculator.Recompute(models.SessionState{
		Items:        models.CloneItems(snap.Items),
		CashReceived: snap.CashReceived,
		Draft:        snap.Draft,
		Arabic:       current.Arabic,
	})
}

func checkIndex(s models.SessionState, index int) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("%w: index %d, %d items", ErrIndex, index, len(s.Items))
	}
	return nil
}
