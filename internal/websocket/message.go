package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

const (
	ActionRoadmapReady    = "roadmap_ready"
	ActionSynthesisFailed = "synthesis_failed"
	ActionProgressUpdated = "progress_updated"
	ActionPong            = "pong"
	ActionError           = "error"
)

// NewRoadmapReady announces a freshly persisted roadmap.
func NewRoadmapReady(roadmapID, goal string) Message {
	return Message{Action: ActionRoadmapReady, Payload: map[string]string{
		"roadmapId": roadmapID,
		"goal":      goal,
	}}
}

// NewSynthesisFailed reports a failed synthesis. Every failure is retryable.
func NewSynthesisFailed(op, reason string) Message {
	return Message{Action: ActionSynthesisFailed, Payload: map[string]interface{}{
		"op":        op,
		"reason":    reason,
		"retryable": true,
	}}
}

func NewProgressUpdated(roadmapID string, percent int) Message {
	return Message{Action: ActionProgressUpdated, Payload: map[string]interface{}{
		"roadmapId": roadmapID,
		"percent":   percent,
	}}
}

// NewErrorMessage encodes an error for direct delivery to one client.
func NewErrorMessage(text string) []byte {
	raw, _ := json.Marshal(Message{Action: ActionError, Payload: text})
	return raw
}

// NewPong answers a client ping.
func NewPong() []byte {
	raw, _ := json.Marshal(Message{Action: ActionPong})
	return raw
}
