package client_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RuslanLebj/Pubsub-messenger-websocket-redis/internal/client"
)

// fakeDisplay records every render call and signals tests on each one.
type fakeDisplay struct {
	mu      sync.Mutex
	lines   []string
	rosters [][]string
	updates chan struct{}
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{updates: make(chan struct{}, 32)}
}

func (d *fakeDisplay) AppendMessage(sender, body string) {
	d.mu.Lock()
	d.lines = append(d.lines, sender+": "+body)
	d.mu.Unlock()
	d.updates <- struct{}{}
}

func (d *fakeDisplay) SetRoster(clients []string) {
	d.mu.Lock()
	snapshot := make([]string, len(clients))
	copy(snapshot, clients)
	d.rosters = append(d.rosters, snapshot)
	d.mu.Unlock()
	d.updates <- struct{}{}
}

func (d *fakeDisplay) waitUpdate(t *testing.T) {
	t.Helper()
	select {
	case <-d.updates:
	case <-time.After(time.Second):
		t.Fatal("display received no update in time")
	}
}

func (d *fakeDisplay) logLines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *fakeDisplay) lastRoster() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.rosters) == 0 {
		return nil
	}
	return d.rosters[len(d.rosters)-1]
}

// fakeServer accepts a single WebSocket client, records inbound frames
// and lets tests push frames to the client.
type fakeServer struct {
	srv    *httptest.Server
	frames chan string
	ready  chan struct{}
	mu     sync.Mutex
	conn   *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{
		frames: make(chan string, 32),
		ready:  make(chan struct{}),
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		f.mu.Lock()
		f.conn = conn
		f.mu.Unlock()
		close(f.ready)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			f.frames <- string(data)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeServer) push(t *testing.T, payload string) {
	t.Helper()
	select {
	case <-f.ready:
	case <-time.After(time.Second):
		t.Fatal("no client connected to fake server")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("failed to push frame: %v", err)
	}
}

func connectedClient(t *testing.T) (*client.Client, *fakeServer, *fakeDisplay) {
	t.Helper()
	srv := newFakeServer(t)
	display := newFakeDisplay()
	c := client.New(srv.url(), display, slog.New(slog.NewTextHandler(testWriter{t}, nil)))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c, srv, display
}

// testWriter routes client logging through the test log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

func TestClient_Connect_Failure(t *testing.T) {
	c := client.New("ws://127.0.0.1:1/websocket", newFakeDisplay(), nil)

	if err := c.Connect(); err == nil {
		t.Error("expected connection error, got nil")
	}
	if c.IsConnected() {
		t.Error("client should not report connected after failed dial")
	}
}

func TestClient_Welcome_RendersSystemLine(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"welcome","message":"Welcome to the chat, alice!"}`)
	display.waitUpdate(t)

	lines := display.logLines()
	if len(lines) != 1 {
		t.Fatalf("log has %d lines, want 1: %v", len(lines), lines)
	}
	if lines[0] != "System: Welcome to the chat, alice!" {
		t.Errorf("line = %q, want system welcome", lines[0])
	}
}

func TestClient_Message_RendersSenderLine(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"message","data":{"sender":"bob","message":"hi there"}}`)
	display.waitUpdate(t)

	lines := display.logLines()
	if len(lines) != 1 || lines[0] != "bob: hi there" {
		t.Errorf("log = %v, want [bob: hi there]", lines)
	}
}

func TestClient_Message_MissingData(t *testing.T) {
	_, srv, display := connectedClient(t)

	// Parses fine but has no data body; rendered as zero values rather
	// than crashing.
	srv.push(t, `{"type":"message"}`)
	display.waitUpdate(t)

	lines := display.logLines()
	if len(lines) != 1 || lines[0] != ": " {
		t.Errorf("log = %v, want a single empty line", lines)
	}
}

func TestClient_Clients_ReplacesRoster(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"clients","clients":["a","b","c"]}`)
	display.waitUpdate(t)

	roster := display.lastRoster()
	if len(roster) != 3 || roster[0] != "a" || roster[1] != "b" || roster[2] != "c" {
		t.Errorf("roster = %v, want [a b c]", roster)
	}
	if len(display.logLines()) != 0 {
		t.Errorf("log = %v, want no message lines from a clients event", display.logLines())
	}
}

func TestClient_Clients_RepeatIsIdempotent(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"clients","clients":["a","b"]}`)
	display.waitUpdate(t)
	srv.push(t, `{"type":"clients","clients":["a","b"]}`)
	display.waitUpdate(t)

	roster := display.lastRoster()
	if len(roster) != 2 || roster[0] != "a" || roster[1] != "b" {
		t.Errorf("roster = %v, want [a b] (replace, not accumulate)", roster)
	}
}

func TestClient_MalformedFrame_LoggedAndSkipped(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, "this is not json")
	// A later valid frame proves the connection survived.
	srv.push(t, `{"type":"message","data":{"sender":"bob","message":"still here"}}`)
	display.waitUpdate(t)

	lines := display.logLines()
	if len(lines) != 1 || lines[0] != "bob: still here" {
		t.Errorf("log = %v, want only the valid frame rendered", lines)
	}
}

func TestClient_UnknownType_Ignored(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"typing","message":"bob is typing"}`)
	srv.push(t, `{"type":"welcome","message":"hello"}`)
	display.waitUpdate(t)

	lines := display.logLines()
	if len(lines) != 1 || lines[0] != "System: hello" {
		t.Errorf("log = %v, want unknown type skipped", lines)
	}
}

func TestClient_Send_TrimsAndEchoes(t *testing.T) {
	c, srv, display := connectedClient(t)

	if err := c.Send(" hi "); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	select {
	case frame := <-srv.frames:
		if frame != "hi" {
			t.Errorf("server received %q, want %q", frame, "hi")
		}
	case <-time.After(time.Second):
		t.Fatal("server received no frame")
	}

	display.waitUpdate(t)
	lines := display.logLines()
	if len(lines) != 1 || lines[0] != "You: hi" {
		t.Errorf("log = %v, want [You: hi]", lines)
	}
}

func TestClient_Send_WhitespaceOnlyIsNoop(t *testing.T) {
	c, srv, display := connectedClient(t)

	if err := c.Send("  "); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	select {
	case frame := <-srv.frames:
		t.Errorf("server received %q, want no frame", frame)
	case <-time.After(200 * time.Millisecond):
	}

	if lines := display.logLines(); len(lines) != 0 {
		t.Errorf("log = %v, want no local echo", lines)
	}
}

func TestClient_Send_NotConnected(t *testing.T) {
	c := client.New("ws://localhost:8888/websocket", newFakeDisplay(), nil)

	err := c.Send("hello")
	if err == nil {
		t.Fatal("expected error when sending without connection")
	}
	if !strings.Contains(err.Error(), "not connected") {
		t.Errorf("error = %v, want 'not connected'", err)
	}
}

func TestClient_Disconnect_Twice(t *testing.T) {
	c, _, _ := connectedClient(t)

	// Should not panic or deadlock when called repeatedly.
	c.Disconnect()
	c.Disconnect()

	if c.IsConnected() {
		t.Error("client still reports connected after disconnect")
	}
}

func TestClient_LogOrder_FollowsArrival(t *testing.T) {
	_, srv, display := connectedClient(t)

	srv.push(t, `{"type":"message","data":{"sender":"a","message":"first"}}`)
	srv.push(t, `{"type":"message","data":{"sender":"b","message":"second"}}`)
	srv.push(t, `{"type":"message","data":{"sender":"c","message":"third"}}`)
	for i := 0; i < 3; i++ {
		display.waitUpdate(t)
	}

	lines := display.logLines()
	want := []string{"a: first", "b: second", "c: third"}
	if len(lines) != len(want) {
		t.Fatalf("log = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
