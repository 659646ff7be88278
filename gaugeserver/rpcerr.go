package gaugeserver

import (
	"errors"

	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/gaugejson"
)

// rpcError converts a service error into the RPC error carrying the matching
// application code, so automated callers can branch on cause. Unknown errors
// become an internal error; the detail goes to the log, not the caller.
func rpcError(err error) *gaugejson.RPCError {
	if jErr, ok := err.(*gaugejson.RPCError); ok {
		return jErr
	}

	switch {
	case errors.Is(err, errcode.ErrAdminOnly):
		return gaugejson.ErrAdminOnly
	case errors.Is(err, errcode.ErrNotFutureAdmin):
		return gaugejson.ErrNotFutureAdmin
	case errors.Is(err, errcode.ErrNotAGauge):
		return gaugejson.ErrNotAGauge
	case errors.Is(err, errcode.ErrUnknownType):
		return gaugejson.ErrUnknownType
	case errors.Is(err, errcode.ErrAlreadyExists):
		return gaugejson.ErrAlreadyExists
	case errors.Is(err, errcode.ErrInsufficientBalance):
		return gaugejson.ErrInsufficientBalance
	case errors.Is(err, errcode.ErrRateTooHigh):
		return gaugejson.ErrRateTooHigh
	case errors.Is(err, errcode.ErrTransferFailed):
		return gaugejson.ErrTransferFailed
	case errors.Is(err, errcode.ErrProtectedToken):
		return gaugejson.ErrProtectedToken
	case errors.Is(err, errcode.ErrInvalidAmount):
		return gaugejson.ErrInvalidAmount
	}

	log.Errorf("Internal RPC error: %v", err)
	return gaugejson.ErrRPCInternal
}
