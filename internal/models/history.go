package models

import "time"

// HistorySnapshot is a labeled copy of a past session.
//
// A snapshot is created when the user archives or discards a session. It is
// updated in place only while the live session is bound to it (that is, the
// live session was restored from it or was archived into it).
type HistorySnapshot struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Label is the user-supplied name. May be empty.
	Label string

	// Items is a copy of the session's line items at archive time.
	Items []LineItem

	// CashReceived and TotalDue are duplicated for display and restore.
	CashReceived float64
	TotalDue     float64

	// Draft carries the add-item form fields that were staged when archived.
	Draft Draft

	// CreatedAt is set once when the snapshot is first written.
	CreatedAt time.Time
}
