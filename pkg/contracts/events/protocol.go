package events

// ProtocolVersion identifies the wire contract. Bump on any breaking
// change to the Message envelope or payload shapes.
const ProtocolVersion = "1.0"

// HeartbeatMessage is the exact frame browser clients send to keep the
// connection alive; the server treats it as a no-op. Protocol-level
// liveness is handled by ping/pong control frames, this one exists for
// clients that cannot observe them.
const HeartbeatMessage = `{"type":"heartbeat"}`

// Error codes carried by ErrorPayload.Code.
const (
	ErrCodeMessageTooLarge = "MESSAGE_TOO_LARGE"
	ErrCodeServerError     = "SERVER_ERROR"
)
