package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing    Action = "ping"
	ActionWarning Action = "warning"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// WarningRequest reports a counted suspicion signal.
type WarningRequest struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// PingRequest keeps an idle exam connection open.
type PingRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventAck   Event = "ack"
	EventPong  Event = "pong"
)

type AckResponse struct {
	Event        Event `json:"event"`
	WarningCount int   `json:"warning_count"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// MaxReasonLength bounds a reported warning description.
const MaxReasonLength = 500
