package service

import (
	"sambv/internal/app/port"
	"sambv/internal/domain/entity"

	"github.com/benbjohnson/clock"
)

type nopPublisher struct{}

func (nopPublisher) Publish(entity.Event) {}

// NewNopPublisher returns an EventPublisher that drops every event.
func NewNopPublisher() port.EventPublisher { return nopPublisher{} }

// sessionEvents stamps events with the owning session and the current time.
type sessionEvents struct {
	sessionID string
	publisher port.EventPublisher
	clock     clock.Clock
}

func newSessionEvents(sessionID string, pub port.EventPublisher, clk clock.Clock) sessionEvents {
	if pub == nil {
		pub = nopPublisher{}
	}
	if clk == nil {
		clk = clock.New()
	}
	return sessionEvents{sessionID: sessionID, publisher: pub, clock: clk}
}

func (e sessionEvents) publish(t entity.EventType, payload any) {
	e.publisher.Publish(entity.Event{
		SessionID: e.sessionID,
		Type:      t,
		Payload:   payload,
		At:        e.clock.Now().UnixMilli(),
	})
}

// panelUpdate is the payload of panel.updated events.
type panelUpdate struct {
	Tab  entity.Tab `json:"tab"`
	View any        `json:"view"`
}
