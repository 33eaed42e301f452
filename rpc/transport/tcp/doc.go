// Package tcp implements the TCP socket transport of sKV. It provides concrete
// implementations of the base package's connector interfaces.
//
// This package builds on the base package's transport functionality, see its
// documentation for the framing and connection handling.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector
//
// Both connectors tune accepted and dialed connections with the TCPConf and
// SocketConf settings (TCP_NODELAY, keep-alive, linger, kernel buffer sizes).
package tcp
