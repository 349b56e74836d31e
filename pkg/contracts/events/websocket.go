// Package events defines the WebSocket message contracts the ledger
// server pushes to review clients.
package events

import "time"

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	// MessageTypeOperationSnapshot carries the full state of an ingest
	// run. It is the only message type emitted for pipeline progress;
	// clients render the snapshot rather than diffing incremental events.
	MessageTypeOperationSnapshot MessageType = "operation:snapshot"

	// MessageTypeConnect is sent to a client once its registration with
	// the hub completes.
	MessageTypeConnect MessageType = "connect"

	// MessageTypeError reports a server-side failure the client should
	// surface.
	MessageTypeError MessageType = "error"
)

// Message is the envelope for every frame the hub broadcasts.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// ConnectPayload is the data of a MessageTypeConnect frame.
type ConnectPayload struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
	Message  string `json:"message,omitempty"`
}

// ErrorPayload is the data of a MessageTypeError frame.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// OperationPayload is the data of a MessageTypeOperationSnapshot frame.
// The shape mirrors the operations run state: overall status plus one
// entry per pipeline step, so a client reconnecting mid-run still sees
// the whole picture.
type OperationPayload struct {
	OperationID string      `json:"operation_id"`
	Status      string      `json:"status"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	Error       string      `json:"error,omitempty"`
	Steps       []StepState `json:"steps"`
}

// StepState is one pipeline step inside an OperationPayload.
type StepState struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration,omitempty"`
}
