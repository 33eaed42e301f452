// Package serializer implements the wire codec of sKV. It translates between
// raw frames and the typed common.Command / common.Response values and performs
// no I/O.
//
// Frame format:
//
//	request:  [opcode:1 byte][payload: rest of the frame]
//	response: [status:1 byte][payload: rest of the frame]
//
// Opcodes and status codes are ASCII digits:
//
//	'0' GET     key                 -> '0' value | '2'
//	'1' SET     key ' ' value       -> '0'
//	'2' DELETE  key                 -> '0' previous value | '2'
//	'3' EXISTS  key                 -> '0' "1" | '0' "0"
//	'4' KEYS    (no payload)        -> '0' keys joined by ' '
//
// Any request that cannot be decoded is answered with status '1' followed by
// a human-readable message.
//
// The SET payload is split on the first space only, so values may contain
// spaces while keys written by SET never do. Keys and values must be valid
// UTF-8 and non-empty.
//
// Frames are not length-prefixed: one read is one frame. The maximum frame
// size (common.DefaultMaxFrameSize unless configured) therefore is part of the
// protocol: a request including its opcode byte must not exceed it. Frames
// above the limit are rejected with common.ErrMalformedFrame.
//
// Key Components:
//
//   - IRPCSerializer: The codec interface used by the server (DecodeCommand,
//     EncodeResponse) and by clients (EncodeCommand, DecodeResponse).
//
//   - binarySerializerImpl: The implementation of the format above.
//
// Thread Safety:
//
//	Serializers are immutable after creation and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
