package utilities

import (
	"log/slog"
	"sync"
)

// Event names.
const (
	EventAssessmentCompleted   = "assessment_completed"
	EventAssessmentRegenerated = "assessment_regenerated"
)

// AssessmentEvent is the payload of the assessment events.
type AssessmentEvent struct {
	AssessmentID   uint
	OrganizationID uint
	Program        string
}

type EventHandler func(any)

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

// Publish runs every handler of event on its own goroutine. A panicking
// handler is logged and does not affect the others.
func (eb *EventBus) Publish(event string, data any) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, handler := range eb.handlers[event] {
		eb.wg.Add(1)
		go func(h EventHandler) {
			defer eb.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("event handler panicked", "event", event, "panic", r)
				}
			}()
			h(data)
		}(handler)
	}
}

// Wait blocks until all handlers started so far have returned.
func (eb *EventBus) Wait() {
	eb.wg.Wait()
}

// Global instance
var GlobalEventBus = NewEventBus()
