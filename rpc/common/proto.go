package common

// --------------------------------------------------------------------------
// Protocol Limits
// --------------------------------------------------------------------------

const (
	// DefaultMaxFrameSize is the default upper bound for a request frame in bytes,
	// opcode included. A request is delimited by a single read, so key and value
	// (plus the opcode byte and the separating space for SET) must fit in one frame.
	DefaultMaxFrameSize = 4096

	// KeySeparator separates key and value in the payload of a SET frame.
	// Only the first occurrence splits, the value may contain further spaces.
	KeySeparator = ' '
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// OpCode is the single byte at the start of a request frame identifying the command.
// The opcodes are the ASCII digits '0' to '4', not the raw integers.
type OpCode byte

const (
	OpGet    OpCode = '0' // Get a value by key
	OpSet    OpCode = '1' // Set a key-value pair
	OpDelete OpCode = '2' // Delete a key-value pair
	OpExists OpCode = '3' // Check if a key exists
	OpKeys   OpCode = '4' // List all keys
)

// String returns the string representation of an OpCode.
func (o OpCode) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	case OpExists:
		return "exists"
	case OpKeys:
		return "keys"
	default:
		return "unknown"
	}
}

// Command is a single decoded request. Which fields are used depends on the opcode:
//
//	OpGet, OpDelete, OpExists: Key
//	OpSet:                     Key, Value
//	OpKeys:                    none
//
// A Command is only produced by the codec after validation and is passed by value.
type Command struct {
	Op    OpCode
	Key   string
	Value string
}

// --------------------------------------------------------------------------
// Command Factory Functions
// --------------------------------------------------------------------------

// NewGetCommand creates a new Get command
func NewGetCommand(key string) Command {
	return Command{Op: OpGet, Key: key}
}

// NewSetCommand creates a new Set command
func NewSetCommand(key, value string) Command {
	return Command{Op: OpSet, Key: key, Value: value}
}

// NewDeleteCommand creates a new Delete command
func NewDeleteCommand(key string) Command {
	return Command{Op: OpDelete, Key: key}
}

// NewExistsCommand creates a new Exists command
func NewExistsCommand(key string) Command {
	return Command{Op: OpExists, Key: key}
}

// NewKeysCommand creates a new Keys command
func NewKeysCommand() Command {
	return Command{Op: OpKeys}
}

// --------------------------------------------------------------------------
// Response Structure
// --------------------------------------------------------------------------

// StatusCode is the single byte at the start of a response frame.
// Like the opcodes, the status codes are ASCII digits.
type StatusCode byte

const (
	StatusSuccess       StatusCode = '0'
	StatusInternalError StatusCode = '1'
	StatusNotFound      StatusCode = '2'
)

// String returns the string representation of a StatusCode.
func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInternalError:
		return "internal_error"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Response is the result of dispatching a Command (or of a failed decode).
// Payload holds the result bytes for StatusSuccess, the error message for
// StatusInternalError and is always empty for StatusNotFound.
type Response struct {
	Status  StatusCode
	Payload []byte
}

// Success payloads of the EXISTS command
var (
	ExistsTrue  = []byte("1")
	ExistsFalse = []byte("0")
)

// --------------------------------------------------------------------------
// Response Factory Functions
// --------------------------------------------------------------------------

// NewSuccessResponse creates a new Success response
func NewSuccessResponse(payload []byte) Response {
	return Response{Status: StatusSuccess, Payload: payload}
}

// NewNotFoundResponse creates a new NotFound response
func NewNotFoundResponse() Response {
	return Response{Status: StatusNotFound}
}

// NewInternalErrorResponse creates a new InternalError response carrying a human-readable message
func NewInternalErrorResponse(msg string) Response {
	return Response{Status: StatusInternalError, Payload: []byte(msg)}
}
