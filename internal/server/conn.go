package server

import (
	"context"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla connection to chat.Conn. The wire is text
// frames only; other frame types are skipped.
type wsConn struct {
	conn       *websocket.Conn
	remoteAddr string
}

func newWSConn(conn *websocket.Conn, addr string) *wsConn {
	return &wsConn{conn: conn, remoteAddr: addr}
}

// Read implements chat.Conn.
func (c *wsConn) Read(ctx context.Context) ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage {
			return data, nil
		}
	}
}

// Write implements chat.Conn.
func (c *wsConn) Write(ctx context.Context, data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements chat.Conn.
func (c *wsConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *wsConn) RemoteAddr() string {
	return c.remoteAddr
}
