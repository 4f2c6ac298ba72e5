// Package chat provides the core chat domain logic: the hub of connected
// clients and the contracts the server needs from its message broker.
package chat

import "context"

// Conn abstracts one client connection so the hub and its tests do not
// depend on a concrete WebSocket implementation.
type Conn interface {
	// Read reads a single text frame.
	// Returns an error once the connection is closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single text frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
