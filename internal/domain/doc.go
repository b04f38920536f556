// Package domain contains the core learning entities of the engine: documents,
// their two-level topic hierarchy, cards, per-user memory state and the
// immutable review log. It is independent of any storage or transport.
package domain
