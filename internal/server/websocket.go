package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/chat"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/metrics"
	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/pkg/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect cross-origin; lock down in production.
	},
}

// handleWebSocket upgrades the connection and runs the client until it
// disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "User-" + uuid.NewString()[:8]
	}

	client := &chat.Client{
		Conn:     newWSConn(conn, r.RemoteAddr),
		Username: username,
		Outgoing: make(chan []byte, 16),
	}

	ctx := context.Background()

	s.hub.Register(client)
	metrics.ClientConnected()
	if err := s.presence.Join(ctx, username); err != nil {
		s.logger.Error("failed to join roster", "error", err, "username", username)
	}

	// Roster first, then the personal greeting; both queue on the same
	// outgoing channel so the new client sees them in this order.
	s.broadcastRoster(ctx)
	s.greet(client)

	s.logger.Info("client connected", "username", username, "remote", client.Conn.RemoteAddr())

	s.wg.Add(1)
	go s.handleClient(client)
}

// greet queues the welcome event for one client only.
func (s *Server) greet(client *chat.Client) {
	payload, err := protocol.NewWelcome(client.Username).Encode()
	if err != nil {
		s.logger.Error("failed to encode welcome", "error", err)
		return
	}
	select {
	case client.Outgoing <- payload:
	default:
	}
}

// handleClient pumps the outgoing channel to the socket and reads
// inbound frames until the connection drops.
func (s *Server) handleClient(client *chat.Client) {
	defer s.wg.Done()

	ctx := context.Background()

	defer func() {
		// Unregister before closing the channel: Unregister's write lock
		// waits out any Broadcast holding the read lock, so nothing can
		// send into Outgoing once it is closed.
		s.hub.Unregister(client)
		close(client.Outgoing)
		metrics.ClientDisconnected()
		client.Conn.Close()

		if err := s.presence.Leave(ctx, client.Username); err != nil {
			s.logger.Error("failed to leave roster", "error", err, "username", client.Username)
		}
		s.broadcastRoster(ctx)
		s.logger.Info("client disconnected", "username", client.Username)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for data := range client.Outgoing {
			if err := client.Conn.Write(ctx, data); err != nil {
				s.logger.Error("failed to write to client", "error", err, "username", client.Username)
				return
			}
		}
	}()

	for {
		data, err := client.Conn.Read(ctx)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error("websocket read failed", "error", err, "username", client.Username)
			}
			return
		}

		// Inbound frames are raw text; wrap with the sender and publish
		// so every instance delivers it.
		payload, err := protocol.NewChatMessage(client.Username, string(data)).Encode()
		if err != nil {
			s.logger.Error("failed to encode message", "error", err)
			continue
		}

		err = s.broker.Publish(ctx, payload)
		metrics.ObservePublish(err)
		if err != nil {
			s.logger.Error("failed to publish message", "error", err, "username", client.Username)
		}
	}
}
