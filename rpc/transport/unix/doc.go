// Package unix implements the Unix domain socket transport of sKV for clients
// running on the same machine as the server.
//
// This package extends the base transport layer with Unix socket-specific connectors
// while inheriting the connection handling, framing and error handling from the
// base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners. A stale socket file left
//     behind by a previous process is removed before listening.
package unix
