// Package memory provides in-process implementations of the store interfaces.
// It backs the "memory" database driver and the service and API tests.
// All stores are safe for concurrent use; data is lost on restart.
package memory
