// Package models defines the core domain models for tally.
//
// # Models
//
//   - LineItem: one purchased product with quantity, unit price and derived total
//   - Draft: the add-item form staging fields
//   - SessionState: the live, editable set of line items plus cash received
//   - HistorySnapshot: a labeled, timestamped copy of a past session
//
// # Design Principles
//
// 1. **Values, not references**: a SessionState is copied with Clone before it
// leaves the owner, so history snapshots never alias live slices
// 2. **Derived fields are stored**: TotalDue, Remaining and LineTotal are kept on
// the structs because they are persisted, but they are always recomputed by the
// calculator package after a mutation
// 3. **JSON names match storage keys**: the persisted representation uses the
// same field names as the key-value keys
package models
