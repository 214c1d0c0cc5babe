// Package broadcast fans state-change events out to subscribers with
// at-most-once, best-effort delivery. A slow subscriber drops events rather
// than blocking the publisher.
package broadcast

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/logger"
	"go.uber.org/zap"
)

// EventType identifies the kind of state change an event carries.
type EventType string

const (
	EventMarketData       EventType = "market_data"
	EventPortfolioUpdate  EventType = "portfolio_update"
	EventTradeExecuted    EventType = "trade_executed"
	EventBotCreated       EventType = "bot_created"
	EventBotUpdated       EventType = "bot_updated"
	EventBotDeleted       EventType = "bot_deleted"
	EventBotStatusChanged EventType = "bot_status_changed"
)

// Event is a single broadcast frame. Data holds the event payload and is
// marshaled as-is.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Marshal encodes the event as a JSON frame.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// subscriberBuffer is the per-subscriber channel depth. Events beyond it are
// dropped for that subscriber only.
const subscriberBuffer = 64

// Subscription is a registered event consumer. Events arrive on C in publish
// order until Unsubscribe closes it.
type Subscription struct {
	C  <-chan Event
	ch chan Event
}

// Hub distributes events to all current subscribers. Publish never blocks.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool
	logger      *logger.Logger
	dropped     atomic.Uint64
}

// NewHub creates a hub with no subscribers.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new subscriber. Events published before Subscribe
// returns are not delivered.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return sub
	}

	h.subscribers[sub] = struct{}{}

	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub]; !ok {
		return
	}

	delete(h.subscribers, sub)
	close(sub.ch)
}

// Publish delivers the event to every subscriber whose buffer has room.
// Subscribers with full buffers miss this event.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
			h.logger.Debug("dropping event for slow subscriber",
				zap.String("type", string(event.Type)),
			)
		}
	}
}

// DroppedCount returns how many events were dropped for slow subscribers
// since the hub was created.
func (h *Hub) DroppedCount() uint64 {
	return h.dropped.Load()
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// Close shuts the hub down, closing every subscriber channel. Further
// publishes are no-ops and further subscribers get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.ch)
	}
}
