// Package events provides types and interfaces for an event-driven architecture.
//
// Services emit events without knowing which handlers will process them.
// The primary components are:
// - Event: a named JSON payload, e.g. "new-notification"
// - EventHandler: interface for components that consume events
// - EventEmitter: interface for components that publish events
// - InMemoryEventEmitter: synchronous fan-out to registered handlers
// - Dispatcher: bounded asynchronous queue drained by worker goroutines
package events
