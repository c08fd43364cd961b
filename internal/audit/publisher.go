package audit

import (
	"log/slog"
	"time"
)

// Publisher hands events to the worker's inbox without blocking the caller.
// When the inbox is full the event is dropped and logged; losing an audit
// record must never fail or stall a check-in.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"event_id", event.EventID.String(),
			"volunteer_id", event.VolunteerID.String(),
		)
	}
}
