package serializer

import "github.com/ValentinKolb/sKV/rpc/common"

// IRPCSerializer is the interface of the wire codec. It translates between raw
// frames and the typed Command / Response values. Implementations perform no
// I/O and hold no shared mutable state.
type IRPCSerializer interface {
	// DecodeCommand decodes a request frame into a Command.
	// It either returns a well-formed Command or an error wrapping
	// common.ErrInvalidCommand or common.ErrMalformedFrame, never both.
	DecodeCommand(frame []byte) (common.Command, error)
	// EncodeResponse encodes a Response into a response frame.
	EncodeResponse(resp common.Response) []byte
	// EncodeCommand encodes a Command into a request frame. It is the inverse of
	// DecodeCommand and rejects every Command that DecodeCommand would not produce.
	EncodeCommand(cmd common.Command) ([]byte, error)
	// DecodeResponse decodes a response frame into a Response.
	DecodeResponse(frame []byte) (common.Response, error)
}
