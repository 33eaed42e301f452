package client

import (
	"fmt"

	"github.com/ValentinKolb/sKV/lib/store"
	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/ValentinKolb/sKV/rpc/serializer"
	"github.com/ValentinKolb/sKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter stores all data needed for an implementation of an RPC client
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used by the RPC client to send commands
// It encodes the command, sends it with the transport and decodes the response.
// Transport failures are returned as a store.Error with RetCTransportError, an
// InternalError response as a store.Error with RetCInternalError.
// A NotFound response is returned as is, it is not an error.
func invokeRPCRequest(cmd common.Command, transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) (common.Response, error) {
	// Encode the request
	reqBytes, err := serializer.EncodeCommand(cmd)
	if err != nil {
		return common.Response{}, store.NewError(store.RetCInvalidOperation, err.Error())
	}

	// Send the request
	respBytes, err := transport.Send(reqBytes)
	if err != nil {
		return common.Response{}, store.NewError(store.RetCTransportError, err.Error())
	}

	// Decode the response
	resp, err := serializer.DecodeResponse(respBytes)
	if err != nil {
		return common.Response{}, fmt.Errorf("RPC client - invalid response to %s: %w", cmd.Op, err)
	}

	// Check if the response is an error response
	if resp.Status == common.StatusInternalError {
		return common.Response{}, store.NewError(store.RetCInternalError, string(resp.Payload))
	}

	return resp, nil
}
