// Package transport defines the interfaces and abstractions for moving frames
// between sKV clients and the server. It provides a common contract that all
// transport implementations must fulfill, independent of the socket type.
//
// A frame is the result of exactly one read on a stream connection. There is
// no length prefix and no request id, so every connection carries at most one
// outstanding request at a time.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     accept connections and pass every frame to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
package transport
