// Package client implements the chat client: one WebSocket connection,
// inbound events rendered into a Display, outbound sends as raw text
// frames.
package client

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/pkg/protocol"
)

// Sender labels for lines the client generates itself rather than
// receives.
const (
	systemSender = "System"
	localSender  = "You"
)

// Client owns a single WebSocket connection to the chat server. There
// is no reconnection: once the connection drops, the display simply
// stops receiving updates.
type Client struct {
	address    string
	display    Display
	logger     *slog.Logger
	conn       *websocket.Conn
	mu         sync.RWMutex
	done       chan struct{}
	doneOnce   sync.Once
	wg         sync.WaitGroup
	isShutdown bool
}

// New creates a client that will render into display. A nil logger
// falls back to slog.Default().
func New(address string, display Display, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		address: address,
		display: display,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts rendering
// inbound events.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.address, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receive()

	return nil
}

// Disconnect closes the connection and waits for the receive loop to
// stop.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.isShutdown {
		c.mu.Unlock()
		return
	}
	c.isShutdown = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.doneOnce.Do(func() {
		close(c.done)
	})
	c.wg.Wait()
}

// IsConnected returns whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Send trims text and sends it as one raw text frame. Whitespace-only
// input is a no-op: no frame, no echo, nil error. A successful send is
// immediately echoed to the display with the local sender label,
// independent of whether the server echoes it back.
func (c *Client) Send(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected to server")
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(trimmed)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.display.AppendMessage(localSender, trimmed)
	return nil
}

// receive continuously reads frames from the server and renders them.
func (c *Client) receive() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		default:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				return
			}

			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
					c.logger.Error("websocket read failed", "error", err)
				}
				return
			}

			if messageType == websocket.TextMessage {
				c.handleFrame(data)
			}
		}
	}
}

// handleFrame decodes one inbound frame and applies its display effect.
// The type field is a strict discriminant: exactly one case fires per
// frame, unknown types are ignored.
func (c *Client) handleFrame(data []byte) {
	event, err := protocol.Decode(data)
	if err != nil {
		// Malformed payloads are diagnostic-only: nothing is rendered
		// and the connection stays open.
		c.logger.Error("failed to decode inbound frame", "error", err, "payload", string(data))
		return
	}

	switch event.Type {
	case protocol.EventWelcome:
		c.display.AppendMessage(systemSender, event.Message)
	case protocol.EventMessage:
		var sender, body string
		if event.Data != nil {
			sender = event.Data.Sender
			body = event.Data.Message
		}
		c.display.AppendMessage(sender, body)
	case protocol.EventClients:
		c.display.SetRoster(event.Clients)
	default:
		c.logger.Debug("ignoring event with unknown type", "type", string(event.Type))
	}
}
