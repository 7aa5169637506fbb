package session

import "errors"

var (
	// ErrValidation is returned when user input is rejected, such as an empty product name.
	ErrValidation = errors.New("validation error")

	// ErrIndex is returned when an operation references a line item that does not exist.
	// The UI only offers indexes it rendered, so this signals a caller bug.
	ErrIndex = errors.New("line item index out of range")
)
