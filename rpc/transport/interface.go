package transport

import (
	"context"
	"net"

	"github.com/ValentinKolb/sKV/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests.
// It is called by a server transport with exactly one frame (the bytes of one
// read) and returns the complete response frame to write back.
// The frame is only valid for the duration of the call.
type ServerHandleFunc func(frame []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler must be set before Listen is called
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks in the accept loop until the
	// context is cancelled or Close is called
	Listen(ctx context.Context, config common.ServerConfig) error
	// Addr returns the bound address of the listener or nil if not listening
	Addr() net.Addr
	// Close stops accepting, closes all open connections and waits for their goroutines
	Close() error
	// Metrics returns the metrics set of the transport
	Metrics() *metrics.Set
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request frame to the server and returns the response frame
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
