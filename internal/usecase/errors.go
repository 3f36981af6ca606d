package usecase

import (
	"errors"
)

// Errors returned by services. Handlers classify them with errors.Is; the wrapped message
// carries the detail shown to the caller.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrStateChanged       = errors.New("state changed, reload")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrRefundWindowClosed = errors.New("refunds are only allowed 24 hours before the booking starts")
	ErrNotesRequired      = errors.New("a reason is required to reject a session")
	ErrAlreadyReleased    = errors.New("payment already released")
)
