package chat

import "context"

// Broker carries published chat frames between server instances. Every
// instance subscribed to the channel receives every published payload,
// including its own.
type Broker interface {
	// Publish sends one encoded event to the chat channel.
	Publish(ctx context.Context, payload []byte) error

	// Subscribe returns a channel of published payloads. The channel is
	// closed when ctx is cancelled or the broker shuts down.
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

// Presence maintains the shared roster of online usernames.
type Presence interface {
	// Join adds a username to the roster.
	Join(ctx context.Context, username string) error

	// Leave removes a username from the roster.
	Leave(ctx context.Context, username string) error

	// Online returns the current roster. Order is unspecified.
	Online(ctx context.Context) ([]string, error)
}
