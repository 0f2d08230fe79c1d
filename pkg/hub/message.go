// Package hub provides a websocket broadcast hub using the channel-based
// fan-out pattern. The viewer uses it to push every new drawing to all open
// browser tabs.
package hub

// Message is a JSON text frame to be broadcast to clients.
type Message struct {
	Data []byte
}

// NewJSONMessage creates a message from pre-encoded JSON bytes.
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}
