package notify

import (
	"time"

	"github.com/minidrive/minidrive/internal/events"
)

// Publishing mirrors every notice onto an event bus and passes it to next.
type Publishing struct {
	next Notifier
	bus  *events.EventBus
}

// WithEvents wraps next so notices are also published as NotificationEvents.
func WithEvents(next Notifier, bus *events.EventBus) *Publishing {
	return &Publishing{next: next, bus: bus}
}

func (p *Publishing) Begin(msg string) Handle {
	h := p.next.Begin(msg)
	p.publish(h.ID, "pending", msg)
	return h
}

func (p *Publishing) Resolve(h Handle, outcome Outcome, msg string) {
	p.next.Resolve(h, outcome, msg)
	p.publish(h.ID, outcome.String(), msg)
}

func (p *Publishing) Success(msg string) {
	p.next.Success(msg)
	p.publish("", "success", msg)
}

func (p *Publishing) Error(msg string) {
	p.next.Error(msg)
	p.publish("", "error", msg)
}

func (p *Publishing) publish(id, kind, msg string) {
	p.bus.Publish(&events.NotificationEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventNotification, Time: time.Now()},
		HandleID:  id,
		Kind:      kind,
		Message:   msg,
	})
}
