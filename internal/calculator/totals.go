// Package calculator derives the numeric fields of a session.
// All functions are pure.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tally/internal/models"
)

// LineTotal computes quantity × unitPrice.
// The product is taken in decimal so that prices like 0.1 × 3 come out as 0.3.
func LineTotal(quantity, unitPrice float64) float64 {
	q := decimal.NewFromFloat(Normalize(quantity))
	p := decimal.NewFromFloat(Normalize(unitPrice))
	return q.Mul(p).InexactFloat64()
}

// TotalDue sums the LineTotal of every item.
func TotalDue(items []models.LineItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(Normalize(item.LineTotal)))
	}
	return sum.InexactFloat64()
}

// Remaining computes cashReceived − totalDue.
func Remaining(cashReceived, totalDue float64) float64 {
	cash := decimal.NewFromFloat(Normalize(cashReceived))
	due := decimal.NewFromFloat(Normalize(totalDue))
	return cash.Sub(due).InexactFloat64()
}

// Recompute returns state with TotalDue and Remaining brought in line with its
// items and cash. Each item's LineTotal is recomputed as well, so a state loaded
// from storage with stale totals comes back consistent.
//
// Algorithm:
// - LineTotal = Quantity × UnitPrice, per item
// - TotalDue  = Σ LineTotal
// - Remaining = CashReceived − TotalDue
func Recompute(state models.SessionState) models.SessionState {
	items := models.CloneItems(state.Items)
	for i := range items {
		items[i].Quantity = Normalize(items[i].Quantity)
		items[i].UnitPrice = Normalize(items[i].UnitPrice)
		items[i].LineTotal = LineTotal(items[i].Quantity, items[i].UnitPrice)
	}
	state.Items = items
	state.CashReceived = Normalize(state.CashReceived)
	state.TotalDue = TotalDue(items)
	state.Remaining = Remaining(state.CashReceived, state.TotalDue)
	return state
}
