// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the engine's core logic. Implementations live in platform/postgres and
// store/memstore.
package store
