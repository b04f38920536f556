// Package events provides a small in-process event bus.
//
// Services emit events after their unit of work commits; handlers react to
// them (for example by recomputing derived aggregates) without the emitter
// knowing who listens.
//
// The primary components are:
// - Event: a typed envelope with a JSON payload
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - Bus: the synchronous EventEmitter that routes events by type
package events
