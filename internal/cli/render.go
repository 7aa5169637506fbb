package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/mmynk/tally/internal/models"
)

const (
	nameWidth   = 20
	numberWidth = 10
)

// formatNumber prints v the plain way, without locale grouping.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// renderSession prints the line items and totals. Indexes are 1-based.
func renderSession(w io.Writer, state models.SessionState, boundID string) {
	l := newLocalizer(state.Arabic)

	if boundID != "" {
		fmt.Fprintln(w, l.line(l.T(msgBound, boundID)))
	}

	if len(state.Items) == 0 {
		fmt.Fprintln(w, l.line(l.T(msgNoItems)))
	} else {
		fmt.Fprintln(w, l.line(fmt.Sprintf("  %3s  %s %s %s %s", "#",
			pad(l.T(msgProduct), nameWidth),
			padLeft(l.T(msgQuantity), numberWidth),
			padLeft(l.T(msgPrice), numberWidth),
			padLeft(l.T(msgLineTotal), numberWidth))))
		for i, item := range state.Items {
			fmt.Fprintln(w, l.line(fmt.Sprintf("  %3d  %s %s %s %s", i+1,
				pad(item.Name, nameWidth),
				padLeft(formatNumber(item.Quantity), numberWidth),
				padLeft(formatNumber(item.UnitPrice), numberWidth),
				padLeft(formatNumber(item.LineTotal), numberWidth))))
		}
	}

	if !state.Draft.IsZero() {
		fmt.Fprintln(w, l.line(fmt.Sprintf("%s: %s × %s @ %s", l.T(msgDraft),
			state.Draft.ProductName,
			formatNumber(state.Draft.Quantity),
			formatNumber(state.Draft.Price))))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, l.line(fmt.Sprintf("%s: %s", l.T(msgTotalDue), formatNumber(state.TotalDue))))
	fmt.Fprintln(w, l.line(fmt.Sprintf("%s: %s", l.T(msgCashReceived), formatNumber(state.CashReceived))))
	fmt.Fprintln(w, l.line(fmt.Sprintf("%s: %s", l.T(msgRemaining), formatNumber(state.Remaining))))
}

// renderHistory prints the snapshots oldest first with a 1-based position.
func renderHistory(w io.Writer, snaps []models.HistorySnapshot, arabic bool, now time.Time) {
	l := newLocalizer(arabic)
	if len(snaps) == 0 {
		fmt.Fprintln(w, l.line(l.T(msgHistoryEmpty)))
		return
	}
	for i, snap := range snaps {
		label := snap.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintln(w, l.line(fmt.Sprintf("%3d  %s", i+1, snap.ID)))
		fmt.Fprintln(w, l.line(fmt.Sprintf("     %s: %s", l.T(msgHistoryName), label)))
		fmt.Fprintln(w, l.line(fmt.Sprintf("     %s: %s", l.T(msgAmount), formatNumber(snap.CashReceived))))
		fmt.Fprintln(w, l.line(fmt.Sprintf("     %s: %s (%s)", l.T(msgDate),
			humanize.RelTime(snap.CreatedAt, now, "ago", "from now"),
			snap.CreatedAt.Local().Format(time.DateTime))))
	}
}
