// Package rpc provides the network layer of sKV. It connects clients to the
// server's store over a raw stream socket using a single-byte opcode protocol.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures used across the RPC system, including the
//     Command/Response model, protocol errors, configuration and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets).
//
//   - serializer: The wire codec converting between frames and commands/responses.
//
//   - client: The RPC client implementing the store interface, allowing
//     applications to interact with a remote server transparently.
//
//   - server: The RPC server that decodes requests, applies them to the store
//     and encodes responses.
package rpc
