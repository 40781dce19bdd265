package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadWait outlasts the exam's ping interval several times over.
	ReadWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(ReadWait))
	return conn.ReadJSON(v)
}

// ReadRaw reads one message and peeks at its action. A message that is not
// an object yields an empty action.
func ReadRaw(conn *websocket.Conn) (Action, json.RawMessage, error) {
	var raw json.RawMessage
	if err := ReadJSON(conn, &raw); err != nil {
		return "", nil, err
	}
	var env RequestEnvelope
	_ = json.Unmarshal(raw, &env)
	return env.Action, raw, nil
}
