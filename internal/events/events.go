package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventSlotSelected     = "slot_selected"
	EventBookingSubmitted = "booking_submitted"
	EventBookingSucceeded = "booking_succeeded"
	EventBookingFailed    = "booking_failed"
	EventReceiptGenerated = "receipt_generated"
)

// BookingEventPayload is the minimal booking snapshot carried on
// workflow events.
type BookingEventPayload struct {
	SessionID      string  `json:"session_id"`
	SlotID         int64   `json:"slot_id,omitempty"`
	AppointmentID  int64   `json:"appointment_id,omitempty"`
	Date           string  `json:"date,omitempty"`
	HoursToConsume float64 `json:"hours_to_consume,omitempty"`
	AmountPaid     float64 `json:"amount_paid,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
}

// Event is a lightweight in-process workflow event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for workflow events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus
// is a no-op so callers can leave eventing unwired.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
