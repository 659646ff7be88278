package gaugejson

// Standard JSON-RPC 2.0 errors.
var (
	ErrRPCInvalidRequest = &RPCError{
		Code:    -32600,
		Message: "Invalid request",
	}
	ErrRPCMethodNotFound = &RPCError{
		Code:    -32601,
		Message: "Method not found",
	}
	ErrRPCInvalidParams = &RPCError{
		Code:    -32602,
		Message: "Invalid parameters",
	}
	ErrRPCInternal = &RPCError{
		Code:    -32603,
		Message: "Internal error",
	}
	ErrRPCParse = &RPCError{
		Code:    -32700,
		Message: "Parse error",
	}
)

// Application errors. Codes mirror the error kinds of the emission core so
// automated callers can branch on cause.
var (
	ErrAdminOnly = &RPCError{
		Code:    200,
		Message: "admin only",
	}
	ErrNotFutureAdmin = &RPCError{
		Code:    201,
		Message: "admin transfer not proposed to caller",
	}
	ErrNotAGauge = &RPCError{
		Code:    300,
		Message: "gauge is not added",
	}
	ErrUnknownType = &RPCError{
		Code:    301,
		Message: "gauge type does not exist",
	}
	ErrAlreadyExists = &RPCError{
		Code:    302,
		Message: "cannot add the same gauge twice",
	}
	ErrInsufficientBalance = &RPCError{
		Code:    400,
		Message: "insufficient balance",
	}
	ErrRateTooHigh = &RPCError{
		Code:    401,
		Message: "preventing fatfinger",
	}
	ErrTransferFailed = &RPCError{
		Code:    402,
		Message: "token transfer failed",
	}
	ErrProtectedToken = &RPCError{
		Code:    403,
		Message: "cannot recover protected token",
	}
	ErrInvalidAmount = &RPCError{
		Code:    404,
		Message: "invalid amount",
	}
	ErrUnauthorized = &RPCError{
		Code:    500,
		Message: "Unauthorized",
	}
	ErrInternal = &RPCError{
		Code:    501,
		Message: "Internal error",
	}
)
