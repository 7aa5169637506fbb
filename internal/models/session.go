package models

// LineItem represents one product entry in a session.
type LineItem struct {
	// Name is the product name. Never empty when created through the session store.
	Name string `json:"name"`

	// Quantity is the number of units. Increment and decrement move it by one;
	// typed values may be fractional. It can go negative unless clamping is enabled.
	Quantity float64 `json:"quantity"`

	// UnitPrice is the price of a single unit.
	UnitPrice float64 `json:"unitPrice"`

	// LineTotal is Quantity × UnitPrice.
	LineTotal float64 `json:"lineTotal"`
}

// Draft holds the add-item form fields before the item is committed.
type Draft struct {
	ProductName string
	Quantity    float64
	Price       float64
}

// IsZero reports whether the draft holds no input.
func (d Draft) IsZero() bool {
	return d.ProductName == "" && d.Quantity == 0 && d.Price == 0
}

// SessionState is the currently active, editable session.
type SessionState struct {
	// Items are in insertion order, which is also display order.
	Items []LineItem

	// CashReceived is the amount the user handed over.
	CashReceived float64

	// TotalDue is the sum of every item's LineTotal.
	TotalDue float64

	// Remaining is CashReceived − TotalDue. Negative when the cash does not cover the total.
	Remaining float64

	// Draft is the add-item form staging area.
	Draft Draft

	// Arabic selects the Arabic UI variant (and right-to-left layout) when true.
	Arabic bool

	// SnapshotID is the history snapshot this session is bound to, or "" while
	// unbound. Archiving a bound session updates that snapshot in place.
	SnapshotID string
}

// Clone returns a deep copy of the state.
func (s SessionState) Clone() SessionState {
	out := s
	out.Items = CloneItems(s.Items)
	return out
}

// IsEmpty reports whether the session carries no user data worth archiving.
func (s SessionState) IsEmpty() bool {
	return len(s.Items) == 0 && s.CashReceived == 0 && s.Draft.IsZero()
}

// CloneItems copies a line item slice. A nil slice yields an empty, non-nil slice
// so that it serializes as [] rather than null.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
