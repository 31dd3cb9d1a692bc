package port

import "sambv/internal/domain/entity"

// XPAwarder is the callback panels use to report completed actions.
type XPAwarder interface {
	Award(xp uint64, action string) entity.ProgressionUpdate
}

// EventPublisher pushes session-scoped events to connected clients.
type EventPublisher interface {
	Publish(event entity.Event)
}
