// Package realtime pushes the full resolved order list to every connected
// websocket subscriber whenever an order changes, replacing per-client
// polling on the kitchen dashboard.
package realtime

import (
	"sync/atomic"
)

// Hub fans broadcast payloads out to all registered clients. There is a
// single channel; every subscriber receives every frame.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	clientCount int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client, 16),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			atomic.AddInt64(&h.clientCount, 1)

		case client := <-h.unregister:
			h.drop(client)

		case payload := <-h.broadcast:
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Subscriber is not draining its queue; disconnect it
					// rather than block every other client.
					slow = append(slow, client)
				}
			}
			for _, client := range slow {
				h.drop(client)
			}

		case <-h.quit:
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// Publish enqueues a payload for delivery to all subscribers. It never
// blocks the caller: if the hub is backed up the frame is dropped, which is
// fine because every mutation re-sends the entire order list anyway.
func (h *Hub) Publish(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *Hub) Close() {
	close(h.quit)
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int64 {
	return atomic.LoadInt64(&h.clientCount)
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	atomic.AddInt64(&h.clientCount, -1)
	close(client.send)
	client.conn.Close()
}
