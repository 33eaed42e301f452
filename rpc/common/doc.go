// Package common provides core data structures and utilities shared across
// sKV. It defines the protocol model, the protocol errors, configuration
// structures and the logging setup used by the other packages.
//
// The package focuses on:
//   - Protocol model: the Command and Response variants, opcodes and status codes
//   - Protocol errors (ErrInvalidCommand, ErrMalformedFrame)
//   - Configuration structures for client and server components
//   - Custom logging implementation integrated with Dragonboat's logger registry
//
// Key Components:
//
//   - Command: A decoded request. The opcode selects which of Key and Value are used.
//     Opcodes are the ASCII digits '0' (GET) to '4' (KEYS).
//
//   - Response: The result of a request, tagged with an ASCII digit status
//     ('0' success, '1' internal error, '2' not found) and carrying a payload.
//
//   - ServerConfig: Configuration for the server: endpoint, frame size limit,
//     admission policy, timeouts, socket tuning, logging and metrics.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts, retries and buffer sizes.
//
//   - Logger: Package loggers are obtained with logger.GetLogger(name) from
//     github.com/lni/dragonboat/v4/logger. InitLoggers installs a factory whose
//     loggers write through zap, to stdout or to a rotated log file.
package common
