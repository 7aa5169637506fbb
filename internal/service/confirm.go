package service

import (
	"context"
	"errors"
)

// ErrCanceled is returned when the user declines a destructive action.
var ErrCanceled = errors.New("canceled by user")

// Prompt identifies which confirmation the UI must show.
type Prompt int

const (
	// PromptRemoveItem asks before deleting one line item.
	PromptRemoveItem Prompt = iota
	// PromptClearAll asks before archiving and clearing the whole session.
	PromptClearAll
)

func (p Prompt) String() string {
	switch p {
	case PromptRemoveItem:
		return "remove_item"
	case PromptClearAll:
		return "clear_all"
	}
	return "unknown"
}

// Confirmer shows a two-choice confirm/cancel prompt.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) bool

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) bool {
	return f(ctx, p)
}

// AlwaysConfirm accepts every prompt, for non-interactive callers.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) bool { return true })
