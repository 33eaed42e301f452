package serializer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ValentinKolb/sKV/rpc/common"
)

// NewBinarySerializer creates a new serializer for the single-byte opcode wire format.
// maxFrameSize bounds request frames (opcode included), values < 2 fall back to
// common.DefaultMaxFrameSize.
func NewBinarySerializer(maxFrameSize int) IRPCSerializer {
	if maxFrameSize < 2 {
		maxFrameSize = common.DefaultMaxFrameSize
	}
	return &binarySerializerImpl{maxFrameSize: maxFrameSize}
}

// binarySerializerImpl implements IRPCSerializer for the format
//
//	request:  [opcode:1][payload]
//	response: [status:1][payload]
type binarySerializerImpl struct {
	maxFrameSize int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) DecodeCommand(frame []byte) (common.Command, error) {
	// A zero-length read is peer shutdown, never a frame
	if len(frame) == 0 {
		return common.Command{}, fmt.Errorf("%w: empty frame", common.ErrMalformedFrame)
	}
	if len(frame) > b.maxFrameSize {
		return common.Command{}, fmt.Errorf("%w: frame exceeds the maximum size of %d bytes", common.ErrMalformedFrame, b.maxFrameSize)
	}

	op := common.OpCode(frame[0])
	payload := frame[1:]

	switch op {
	case common.OpGet, common.OpDelete, common.OpExists:
		key, err := decodeKey(op, payload)
		if err != nil {
			return common.Command{}, err
		}
		return common.Command{Op: op, Key: key}, nil

	case common.OpSet:
		if !utf8.Valid(payload) {
			return common.Command{}, fmt.Errorf("%w: set payload is not valid UTF-8", common.ErrMalformedFrame)
		}
		// split on the first space only, the value keeps its spaces
		key, value, found := strings.Cut(string(payload), string(common.KeySeparator))
		if !found {
			return common.Command{}, fmt.Errorf("%w: set requires a key and a value separated by a space", common.ErrMalformedFrame)
		}
		if key == "" {
			return common.Command{}, fmt.Errorf("%w: set requires a non-empty key", common.ErrMalformedFrame)
		}
		if value == "" {
			return common.Command{}, fmt.Errorf("%w: set requires a non-empty value", common.ErrMalformedFrame)
		}
		return common.Command{Op: op, Key: key, Value: value}, nil

	case common.OpKeys:
		if len(payload) != 0 {
			return common.Command{}, fmt.Errorf("%w: keys does not take a payload", common.ErrMalformedFrame)
		}
		return common.Command{Op: op}, nil

	default:
		return common.Command{}, fmt.Errorf("%w: unknown opcode 0x%02x", common.ErrInvalidCommand, frame[0])
	}
}

func (b binarySerializerImpl) EncodeResponse(resp common.Response) []byte {
	// NotFound never carries a payload
	if resp.Status == common.StatusNotFound {
		return []byte{byte(common.StatusNotFound)}
	}

	result := make([]byte, 1+len(resp.Payload))
	result[0] = byte(resp.Status)
	copy(result[1:], resp.Payload)
	return result
}

func (b binarySerializerImpl) EncodeCommand(cmd common.Command) ([]byte, error) {
	var payload string

	switch cmd.Op {
	case common.OpGet, common.OpDelete, common.OpExists:
		if cmd.Key == "" {
			return nil, fmt.Errorf("%w: %s requires a key", common.ErrMalformedFrame, cmd.Op)
		}
		payload = cmd.Key

	case common.OpSet:
		if cmd.Key == "" || cmd.Value == "" {
			return nil, fmt.Errorf("%w: set requires a non-empty key and value", common.ErrMalformedFrame)
		}
		// the key ends at the first space, so it cannot contain one
		if strings.IndexByte(cmd.Key, common.KeySeparator) >= 0 {
			return nil, fmt.Errorf("%w: set key must not contain a space", common.ErrMalformedFrame)
		}
		payload = cmd.Key + string(common.KeySeparator) + cmd.Value

	case common.OpKeys:
		if cmd.Key != "" || cmd.Value != "" {
			return nil, fmt.Errorf("%w: keys does not take a key or value", common.ErrMalformedFrame)
		}

	default:
		return nil, fmt.Errorf("%w: unknown opcode 0x%02x", common.ErrInvalidCommand, byte(cmd.Op))
	}

	if !utf8.ValidString(payload) {
		return nil, fmt.Errorf("%w: %s payload is not valid UTF-8", common.ErrMalformedFrame, cmd.Op)
	}

	// Calculate total size needed (1 byte for the opcode)
	totalSize := 1 + len(payload)
	if totalSize > b.maxFrameSize {
		return nil, fmt.Errorf("%w: frame of %d bytes exceeds the maximum size of %d bytes", common.ErrMalformedFrame, totalSize, b.maxFrameSize)
	}

	result := make([]byte, totalSize)
	result[0] = byte(cmd.Op)
	copy(result[1:], payload)
	return result, nil
}

func (b binarySerializerImpl) DecodeResponse(frame []byte) (common.Response, error) {
	if len(frame) == 0 {
		return common.Response{}, fmt.Errorf("%w: empty response", common.ErrMalformedFrame)
	}

	status := common.StatusCode(frame[0])
	switch status {
	case common.StatusSuccess, common.StatusInternalError:
		return common.Response{Status: status, Payload: bytes.Clone(frame[1:])}, nil
	case common.StatusNotFound:
		if len(frame) != 1 {
			return common.Response{}, fmt.Errorf("%w: not found response carries a payload", common.ErrMalformedFrame)
		}
		return common.NewNotFoundResponse(), nil
	default:
		return common.Response{}, fmt.Errorf("%w: unknown status 0x%02x", common.ErrMalformedFrame, frame[0])
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// decodeKey validates the payload of a single key command
func decodeKey(op common.OpCode, payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: %s requires a key", common.ErrMalformedFrame, op)
	}
	if !utf8.Valid(payload) {
		return "", fmt.Errorf("%w: %s key is not valid UTF-8", common.ErrMalformedFrame, op)
	}
	return string(payload), nil
}
