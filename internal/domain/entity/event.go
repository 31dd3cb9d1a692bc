package entity

// EventType names an event pushed to connected clients.
type EventType string

const (
	EventToastRaised    EventType = "toast.raised"
	EventToastDismissed EventType = "toast.dismissed"
	EventXPUpdated      EventType = "xp.updated"
	EventQuoteUpdated   EventType = "quote.updated"
	EventPanelUpdated   EventType = "panel.updated"
)

// Event is a session-scoped notification for the client.
type Event struct {
	SessionID string    `json:"sessionId"`
	Type      EventType `json:"type"`
	Payload   any       `json:"payload,omitempty"`
	At        int64     `json:"at"`
}
