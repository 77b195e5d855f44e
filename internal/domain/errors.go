// Package domain holds the error taxonomy shared by every layer of the prediction core.
package domain

import "errors"

// Error message constants. The HTTP layer renders these directly, so they are
// phrased for end users.
const (
	ErrMsgNotFound         = "not found"
	ErrMsgUnauthorized     = "unauthorized"
	ErrMsgWindowClosed     = "prediction window is closed"
	ErrMsgAlreadyPredicted = "already predicted"
	ErrMsgValidation       = "validation failed"
	ErrMsgConflict         = "conflict"
)

// Sentinel errors. Wrap with fmt.Errorf("%w: %s", domain.ErrXxx, details) for context
// and test with errors.Is.
var (
	ErrNotFound         = errors.New(ErrMsgNotFound)
	ErrUnauthorized     = errors.New(ErrMsgUnauthorized)
	ErrWindowClosed     = errors.New(ErrMsgWindowClosed)
	ErrAlreadyPredicted = errors.New(ErrMsgAlreadyPredicted)
	ErrValidation       = errors.New(ErrMsgValidation)
	ErrConflict         = errors.New(ErrMsgConflict)
)
