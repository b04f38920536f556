// Package memstore is an in-process implementation of the store interfaces.
// It backs the "memory" database driver and the service tests. Units of work
// run against a private copy of the data that replaces the shared copy on
// commit, so a failed unit of work leaves no trace.
package memstore
