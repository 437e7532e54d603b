package pool

import "errors"

// Set of error variables returned by the pool. Callers should match on
// these using errors.Is since the pool wraps them with more context.
var (
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoDepositors        = errors.New("no depositors")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrOverflow            = errors.New("arithmetic overflow")
)
