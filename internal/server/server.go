// Package server implements the WebSocket chat server. It upgrades
// connections at /websocket, serves the embedded browser client at /
// and Prometheus metrics at /metrics. Chat messages travel through the
// broker so every instance sharing it delivers them; the roster lives
// in the shared presence set.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/chat"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/metrics"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/pkg/protocol"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/static"
)

// Server accepts WebSocket chat clients on one HTTP listener.
type Server struct {
	address  string
	hub      *chat.Hub
	broker   chat.Broker
	presence chat.Presence
	logger   *slog.Logger

	listener net.Listener
	server   *http.Server
	cancel   context.CancelFunc
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a server. A nil logger falls back to slog.Default().
func New(address string, broker chat.Broker, presence chat.Presence, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		address:  address,
		hub:      chat.NewHub(),
		broker:   broker,
		presence: presence,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start listens and serves until Stop is called or the listener fails.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	sub, err := s.broker.Subscribe(ctx)
	if err != nil {
		cancel()
		listener.Close()
		return fmt.Errorf("failed to subscribe to broker: %w", err)
	}

	s.wg.Add(1)
	go s.fanOut(sub)

	mux := http.NewServeMux()
	mux.HandleFunc("/websocket", s.handleWebSocket)
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", static.Handler())

	s.server = &http.Server{Handler: mux}

	s.logger.Info("chat server started", "addr", listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-s.quit:
		return nil
	}
}

// Stop shuts the server down and waits for client goroutines to finish.
// Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)

		if s.cancel != nil {
			s.cancel()
		}
		if s.server != nil {
			s.server.Close()
		}

		for _, client := range s.hub.Clients() {
			client.Conn.Close()
		}

		s.wg.Wait()
	})
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of clients connected to this instance.
func (s *Server) ClientCount() int {
	return s.hub.ClientCount()
}

// fanOut delivers every payload published to the broker to every
// locally connected client, the sender's instance included.
func (s *Server) fanOut(sub <-chan []byte) {
	defer s.wg.Done()
	for payload := range sub {
		delivered := s.hub.Broadcast(payload)
		metrics.ObserveBroadcast(delivered)
	}
}

// broadcastRoster reads the shared roster and pushes a clients event to
// every local client. The full list is sent each time; clients replace,
// they never diff.
func (s *Server) broadcastRoster(ctx context.Context) {
	online, err := s.presence.Online(ctx)
	if err != nil {
		s.logger.Error("failed to read roster", "error", err)
		return
	}
	sort.Strings(online)

	payload, err := protocol.NewClientList(online).Encode()
	if err != nil {
		s.logger.Error("failed to encode roster", "error", err)
		return
	}
	s.hub.Broadcast(payload)
}
