// Package store provides the high-level interface for the key-value store
// used by sKV. It serves as the contract between the protocol layer, which
// dispatches decoded commands, and the concrete storage implementations.
//
// The package focuses on:
//   - A unified interface (IStore) for key-value operations across implementations
//   - A structured error type for implementations that can fail (remote stores)
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining the five store operations
//     (Get, Set, Delete, Exists, Keys). Each operation is atomic on its own;
//     there are no transactions spanning several operations or keys.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages.
//
// Implementations:
//
//	The package includes two implementations of the IStore interface:
//
//	- Local Store (lstore): A single map guarded by a single mutex. This is the
//	  store the server shares between all connections.
//	  Available in the "github.com/ValentinKolb/sKV/lib/store/lstore" package.
//
//	- RPC Store: A client that forwards every operation to a running server over
//	  the wire protocol. Available in the "github.com/ValentinKolb/sKV/rpc/client" package.
package store
