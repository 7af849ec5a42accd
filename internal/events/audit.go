package events

import (
	"github.com/rs/zerolog"
)

// NewAuditSubscriber returns a handler that writes every event to the log.
// Attach it to all booking and room event types for an audit trail.
func NewAuditSubscriber(logger *zerolog.Logger) EventHandler {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "audit").Logger()
	}

	return func(event *Event) error {
		base.Info().
			Str("event_type", event.Type).
			Time("at", event.CreatedAt).
			RawJSON("payload", event.Payload).
			Msg("domain event")
		return nil
	}
}

// AttachAudit subscribes the audit handler to every known event type.
func AttachAudit(bus *EventBus, logger *zerolog.Logger) {
	handler := NewAuditSubscriber(logger)
	for _, eventType := range []string{
		EventBookingCreated,
		EventBookingCancelled,
		EventRoomCreated,
		EventRoomDeleted,
	} {
		bus.Subscribe(eventType, handler)
	}
}
