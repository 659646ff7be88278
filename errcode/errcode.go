package errcode

import "errors"

// ErrNilGormDB is returned by every DAO method that receives a nil
// transaction handle.
var ErrNilGormDB = errors.New("nil gorm db")

// Domain errors surfaced to callers. The RPC layer maps these to stable
// error codes, so callers can branch on cause.
var (
	ErrAdminOnly           = errors.New("admin only")
	ErrNotAGauge           = errors.New("gauge is not added")
	ErrUnknownType         = errors.New("gauge type is not added")
	ErrAlreadyExists       = errors.New("gauge already added")
	ErrInsufficientBalance = errors.New("insufficient staked balance")
	ErrRateTooHigh         = errors.New("preventing fatfinger")
	ErrTransferFailed      = errors.New("token transfer failed")
	ErrNotFutureAdmin      = errors.New("no pending admin transfer for caller")
	ErrProtectedToken      = errors.New("token is protected from recovery")
	ErrInvalidAmount       = errors.New("invalid amount")
)
