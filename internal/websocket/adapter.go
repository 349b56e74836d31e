package websocket

import (
	"time"

	"github.com/zazu-22/ff-data-analytics-sub000/internal/operations"
	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/events"
)

// ProgressBroadcaster adapts the hub to the operations manager's progress
// callback: every run and step transition becomes one operation:snapshot
// frame.
func ProgressBroadcaster(hub *Hub) operations.ProgressFunc {
	return func(operationID string, snapshot operations.OperationSnapshot) {
		hub.Broadcast(events.Message{
			Type:      events.MessageTypeOperationSnapshot,
			Timestamp: time.Now(),
			TraceID:   operationID,
			Data:      toOperationPayload(snapshot),
		})
	}
}

func toOperationPayload(snap operations.OperationSnapshot) events.OperationPayload {
	payload := events.OperationPayload{
		OperationID: snap.ID,
		Status:      string(snap.Status),
		StartedAt:   snap.StartTime,
		CompletedAt: snap.EndTime,
		Error:       snap.Error,
		Steps:       make([]events.StepState, 0, len(snap.Steps)),
	}
	for _, step := range snap.Steps {
		state := events.StepState{
			ID:      step.ID,
			Name:    step.Name,
			Status:  string(step.Status),
			Message: step.Message,
			Error:   step.Error,
		}
		if step.StartTime != nil && step.EndTime != nil {
			state.Duration = step.EndTime.Sub(*step.StartTime).String()
		}
		payload.Steps = append(payload.Steps, state)
	}
	return payload
}
