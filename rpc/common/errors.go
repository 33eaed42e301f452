package common

import "errors"

// Protocol errors. Codec implementations wrap these with details,
// callers match them with errors.Is.
var (
	// ErrInvalidCommand is returned for an opcode outside the recognized set.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrMalformedFrame is returned when a frame is empty or too large, its payload
	// is not valid UTF-8, a required key is missing, a SET payload lacks the
	// separator or one of its parts, or a KEYS frame carries a payload.
	ErrMalformedFrame = errors.New("malformed frame")
)
