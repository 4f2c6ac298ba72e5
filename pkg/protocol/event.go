// Package protocol defines the JSON events exchanged between the chat
// server and its clients.
//
// Server-to-client frames are JSON objects with a required "type"
// discriminator. Client-to-server frames are raw trimmed text, not
// JSON-wrapped, so only the server-to-client direction lives here.
package protocol

import (
	"encoding/json"
	"fmt"
)

// EventType discriminates server-to-client events.
type EventType string

const (
	// EventWelcome greets a freshly connected client.
	EventWelcome EventType = "welcome"
	// EventMessage carries one chat message to every client.
	EventMessage EventType = "message"
	// EventClients carries the full roster of online usernames.
	EventClients EventType = "clients"
)

// ChatPayload is the nested body of a "message" event.
type ChatPayload struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Event is one server-to-client frame. Exactly one of Message, Data or
// Clients is populated, selected by Type.
type Event struct {
	Type    EventType    `json:"type"`
	Message string       `json:"message,omitempty"`
	Data    *ChatPayload `json:"data,omitempty"`
	Clients []string     `json:"clients,omitempty"`
}

// NewWelcome builds the greeting event sent to a client right after it
// connects.
func NewWelcome(username string) Event {
	return Event{
		Type:    EventWelcome,
		Message: fmt.Sprintf("Welcome to the chat, %s!", username),
	}
}

// NewChatMessage builds a "message" event for one chat line.
func NewChatMessage(sender, message string) Event {
	return Event{
		Type: EventMessage,
		Data: &ChatPayload{Sender: sender, Message: message},
	}
}

// NewClientList builds a "clients" event carrying the current roster.
func NewClientList(clients []string) Event {
	return Event{
		Type:    EventClients,
		Clients: clients,
	}
}

// Encode encodes the event as a JSON text frame.
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %w", err)
	}
	return data, nil
}

// Decode decodes a JSON text frame into an event. Fields that do not
// match the declared Type are left as received; callers dispatch on Type
// and ignore the rest.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return e, nil
}
