package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types
const (
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventPostViewed     = "post_viewed"
	EventPostDeleted    = "post_deleted"
	EventCommentCreated = "comment_created"
	EventCommentLiked   = "comment_liked"
	EventCommentUnliked = "comment_unliked"
	EventCommentDeleted = "comment_deleted"
)

const sendBuffer = 32

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userId,omitempty"`
}

// Client represents a connected WebSocket client. UserID is NilObjectID for
// anonymous connections.
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	send   chan Notification
}

func newClient(userID primitive.ObjectID, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, Conn: conn, send: make(chan Notification, sendBuffer)}
}

// Hub maintains the set of active clients and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	byUser     map[primitive.ObjectID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		byUser:     make(map[primitive.ObjectID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if client.UserID != primitive.NilObjectID {
				if h.byUser[client.UserID] == nil {
					h.byUser[client.UserID] = make(map[*Client]bool)
				}
				h.byUser[client.UserID][client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				h.remove(client)
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with h.mu held
func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	if conns, ok := h.byUser[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byUser, client.UserID)
		}
	}
	close(client.send)
}

// Broadcast sends an event to every connected client. Slow clients drop
// events rather than stalling the caller.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	n := Notification{Type: eventType, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- n:
		default:
		}
	}
}

// NotifyUser sends an event to every connection of userID
func (h *Hub) NotifyUser(userID primitive.ObjectID, eventType, message string, data interface{}) {
	n := Notification{Type: eventType, Message: message, Data: data, UserID: userID.Hex()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.byUser[userID] {
		select {
		case client.send <- n:
		default:
		}
	}
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
