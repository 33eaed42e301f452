package store

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a key–value store.
// Every method is a single atomic step: no operation can observe a partially
// applied mutation of another one. There are no multi-key operations.
//
// The local implementation never returns an error. Implementations that talk
// to a remote server (see rpc/client) use the error to report transport or
// server failures.
type IStore interface {
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value string, loaded bool, err error)
	// Set inserts or overwrites a key–value pair.
	Set(key string, value string) (err error)
	// Delete removes a key–value pair and returns the value it held.
	// The boolean return value indicates whether the key was present.
	Delete(key string) (value string, loaded bool, err error)
	// Exists returns whether a key is present in the store.
	Exists(key string) (loaded bool, err error)
	// Keys returns a snapshot of all keys present at the time of the call.
	// The order is unspecified and may differ between calls.
	Keys() (keys []string, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCTransportError                  // 2: The store could not be reached.
	RetCInvalidOperation                // 3: Invalid operation.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCTransportError:
		return "TransportError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
