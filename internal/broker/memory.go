package broker

import (
	"context"
	"sort"
	"sync"
)

// subscriber pairs a delivery channel with its cancellation signal so
// publishers never block on, or write to, a dead subscription.
type subscriber struct {
	ch   chan []byte
	done <-chan struct{}
}

// Memory is an in-process broker with the same semantics as the Redis
// one: every subscriber receives every published payload, and the roster
// is a set. It backs single-instance runs without Redis and the tests.
type Memory struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	online      map[string]struct{}
}

// NewMemory creates an in-memory broker.
func NewMemory() *Memory {
	return &Memory{
		subscribers: make(map[*subscriber]struct{}),
		online:      make(map[string]struct{}),
	}
}

// Publish delivers the payload to every active subscriber. A cancelled
// subscriber is skipped rather than blocked on.
func (m *Memory) Publish(ctx context.Context, payload []byte) error {
	copied := make([]byte, len(payload))
	copy(copied, payload)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for sub := range m.subscribers {
		select {
		case sub.ch <- copied:
		case <-sub.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a new subscriber. The returned channel is closed
// when ctx is cancelled.
func (m *Memory) Subscribe(ctx context.Context) (<-chan []byte, error) {
	sub := &subscriber{
		ch:   make(chan []byte, 16),
		done: ctx.Done(),
	}

	m.mu.Lock()
	m.subscribers[sub] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Publish holds the read lock while sending, so once we hold
		// the write lock no send can be in flight and the close is safe.
		m.mu.Lock()
		delete(m.subscribers, sub)
		close(sub.ch)
		m.mu.Unlock()
	}()

	return sub.ch, nil
}

// Join adds a username to the roster.
func (m *Memory) Join(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online[username] = struct{}{}
	return nil
}

// Leave removes a username from the roster.
func (m *Memory) Leave(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.online, username)
	return nil
}

// Online returns the roster. Sorted for determinism; Redis set order is
// unspecified anyway.
func (m *Memory) Online(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.online))
	for name := range m.online {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
