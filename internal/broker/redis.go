// Package broker provides the chat.Broker and chat.Presence
// implementations: Redis for multi-instance deployments and an in-memory
// equivalent for single-instance runs and tests.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures the Redis broker.
type Config struct {
	Addr        string
	Password    string
	DB          int
	Channel     string
	PresenceKey string
}

// Redis carries chat frames over a Redis pub/sub channel and keeps the
// roster in a Redis set, shared by every server instance pointed at the
// same keys.
type Redis struct {
	client      *redis.Client
	channel     string
	presenceKey string
}

// NewRedis returns a connected Redis broker or an error when the server
// cannot be reached.
func NewRedis(cfg Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{
		client:      client,
		channel:     cfg.Channel,
		presenceKey: cfg.PresenceKey,
	}, nil
}

// Publish sends one encoded event to the chat channel.
func (r *Redis) Publish(ctx context.Context, payload []byte) error {
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", r.channel, err)
	}
	return nil
}

// Subscribe returns a channel of payloads published to the chat channel.
func (r *Redis) Subscribe(ctx context.Context) (<-chan []byte, error) {
	sub := r.client.Subscribe(ctx, r.channel)

	// Receive forces the SUBSCRIBE handshake so a broken connection
	// surfaces here instead of as a silently empty channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Join adds a username to the roster set.
func (r *Redis) Join(ctx context.Context, username string) error {
	if err := r.client.SAdd(ctx, r.presenceKey, username).Err(); err != nil {
		return fmt.Errorf("failed to add %s to roster: %w", username, err)
	}
	return nil
}

// Leave removes a username from the roster set.
func (r *Redis) Leave(ctx context.Context, username string) error {
	if err := r.client.SRem(ctx, r.presenceKey, username).Err(); err != nil {
		return fmt.Errorf("failed to remove %s from roster: %w", username, err)
	}
	return nil
}

// Online returns the current roster.
func (r *Redis) Online(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, r.presenceKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return members, nil
}

// Close releases the underlying Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
