// Package base provides the foundation for the stream transports of sKV,
// implementing the connection handling independent of the specific socket type
// (TCP, Unix sockets). Protocol-specific connectors plug into it.
//
// The package focuses on:
//   - One goroutine per accepted connection, the accept loop never waits on a connection
//   - Single-read framing: one read on a connection is one request frame
//   - Admission control (connection limit, accept rate) and socket deadlines
//   - Client connection pooling with retries and reconnection
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different socket types.
//
//   - serverTransport: Accepts connections and runs the request loop of every
//     connection: read one frame, call the handler, write the response. A read of
//     zero bytes (io.EOF) ends the loop, so does any other I/O error. Only the
//     affected connection is closed, the server keeps running.
//
//   - clientTransport: Manages multiple connections with round-robin selection.
//     Since frames carry no request id, every connection serves one request at
//     a time, concurrency comes from ConnectionsPerEndpoint.
//
// Framing:
//
//	The server reads into a pooled buffer of MaxFrameSize+1 bytes. A read that
//	returns more than MaxFrameSize bytes is an oversized request: the handler
//	answers it with an error response, then the connection is closed because the
//	remainder of the request is still in the socket. Requests that the network
//	delivers in pieces are not reassembled.
//
//	Responses (KEYS in particular) can be much larger than a request. The client
//	joins a response that arrives in pieces: it keeps reading until the server is
//	silent for ResponseQuietMs or the buffer of MaxResponseSize bytes overflows.
//	A response still arriving at the request deadline fails the request and the
//	connection is dropped.
//
// Thread Safety:
//
//	All public methods are thread-safe. Connections are tracked in an
//	xsync.MapOf so that Close can terminate them from any goroutine.
package base
