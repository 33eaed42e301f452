// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. Data is stored entirely in memory and is not persisted
// between process restarts.
//
// Implementation Details:
//
//   - Single Lock: All entries live in one Go map guarded by one sync.Mutex. Every
//     interface method acquires the lock for exactly one map operation and releases
//     it before returning, so the lock is never held while the caller performs
//     network I/O.
//
//   - Values: Keys and values are Go strings, which are immutable. Handing a value
//     out of the map is therefore always a copy from the caller's point of view.
//
//   - Ordering: Concurrent writes to the same key are serialized by the lock, the
//     last writer wins. Keys() returns a snapshot in map iteration order, which is
//     unspecified.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	_ = s.Set("session:123", "alice")
//	value, found, _ := s.Get("session:123")
//
// Thread Safety:
//
//	All operations are safe for concurrent use by any number of goroutines.
package lstore
