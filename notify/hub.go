package notify

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"studioadmin/utils"
)

// Notification is one in-app event pushed to a dashboard session.
type Notification struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"` // "test", "settings_changed", "system"
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Hub fans notifications out to the websocket sessions of each admin.
// Subscriber channels are buffered; a slow consumer drops events rather
// than blocking publishers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]chan Notification // adminID -> subscriberID -> channel
}

// NewHub creates an empty notification hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[string]chan Notification),
	}
}

// Subscribe registers a new session for an admin and returns its ID and
// event channel.
func (h *Hub) Subscribe(adminID string) (string, chan Notification) {
	subscriberID := uuid.New().String()
	ch := make(chan Notification, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[adminID] == nil {
		h.subscribers[adminID] = make(map[string]chan Notification)
	}
	h.subscribers[adminID][subscriberID] = ch

	return subscriberID, ch
}

// Unsubscribe removes a session and closes its channel.
func (h *Hub) Unsubscribe(adminID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs := h.subscribers[adminID]; subs != nil {
		if ch, exists := subs[subscriberID]; exists {
			delete(subs, subscriberID)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, adminID)
		}
	}
}

// Publish sends an event to every session of one admin.
func (h *Hub) Publish(adminID, eventType, message string) {
	n := Notification{
		ID:      uuid.New().String(),
		Type:    eventType,
		Message: message,
		Time:    time.Now(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[adminID] {
		select {
		case ch <- n:
		default:
			// Drop rather than block on a stalled session
		}
	}
}

// SubscriberCount returns the number of open sessions for an admin.
func (h *Hub) SubscriberCount(adminID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[adminID])
}

// Upgrade gates the websocket handshake; the admin identity must already
// be resolved by the auth middleware.
func (h *Hub) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	}
}

// Handler streams notifications over a websocket connection.
func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		adminID, _ := conn.Locals("adminId").(string)
		if adminID == "" {
			conn.Close()
			return
		}

		subscriberID, ch := h.Subscribe(adminID)
		defer h.Unsubscribe(adminID, subscriberID)

		// Reader goroutine: detect client disconnect
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(n); err != nil {
					utils.Log.Debug("Notification write failed for %s: %v", adminID, err)
					return
				}
			case <-done:
				return
			}
		}
	})
}
