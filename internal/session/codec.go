package session

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/mmynk/tally/internal/calculator"
	"github.com/mmynk/tally/internal/models"
)

// Storage keys for the live session. Every key is written on each save.
const (
	KeyCashReceived     = "cashReceived"
	KeyItems            = "items"
	KeyDraftProductName = "draftProductName"
	KeyDraftQuantity    = "draftQuantity"
	KeyRemaining        = "remaining"
	KeyLanguage         = "language"
	KeyTotalDue         = "totalDue"
	KeyDraftPrice       = "draftPrice"
	KeySnapshotID       = "snapshotId"
)

// Keys lists every key Encode produces.
var Keys = []string{
	KeyCashReceived,
	KeyItems,
	KeyDraftProductName,
	KeyDraftQuantity,
	KeyRemaining,
	KeyLanguage,
	KeyTotalDue,
	KeyDraftPrice,
	KeySnapshotID,
}

// Encode converts a session into its string-valued storage representation.
func Encode(s models.SessionState) (map[string]string, error) {
	items, err := json.Marshal(models.CloneItems(s.Items))
	if err != nil {
		return nil, err
	}

	return map[string]string{
		KeyCashReceived:     formatNumber(s.CashReceived),
		KeyItems:            string(items),
		KeyDraftProductName: s.Draft.ProductName,
		KeyDraftQuantity:    formatNumber(s.Draft.Quantity),
		KeyRemaining:        formatNumber(s.Remaining),
		KeyLanguage:         strconv.FormatBool(s.Arabic),
		KeyTotalDue:         formatNumber(s.TotalDue),
		KeyDraftPrice:       formatNumber(s.Draft.Price),
		KeySnapshotID:       s.SnapshotID,
	}, nil
}

// Decode rebuilds a session from stored values. Missing keys keep their zero
// defaults; values that fail to parse are logged and skipped. Derived totals
// are recomputed rather than trusted.
func Decode(values map[string]string) models.SessionState {
	var s models.SessionState

	if v, ok := values[KeyItems]; ok && v != "" {
		var items []models.LineItem
		if err := json.Unmarshal([]byte(v), &items); err != nil {
			slog.Warn("Ignoring unreadable stored items", "key", KeyItems, "error", err)
		} else {
			s.Items = items
		}
	}
	if v, ok := values[KeyDraftProductName]; ok {
		s.Draft.ProductName = v
	}
	if v, ok := values[KeySnapshotID]; ok {
		s.SnapshotID = v
	}
	if v, ok := values[KeyLanguage]; ok && v != "" {
		arabic, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("Ignoring unreadable stored value", "key", KeyLanguage, "value", v)
		} else {
			s.Arabic = arabic
		}
	}

	parseNumber(values, KeyCashReceived, &s.CashReceived)
	parseNumber(values, KeyDraftQuantity, &s.Draft.Quantity)
	parseNumber(values, KeyDraftPrice, &s.Draft.Price)

	return calculator.Recompute(s)
}

func parseNumber(values map[string]string, key string, dst *float64) {
	v, ok := values[key]
	if !ok || v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("Ignoring unreadable stored value", "key", key, "value", v)
		return
	}
	*dst = calculator.Normalize(f)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
