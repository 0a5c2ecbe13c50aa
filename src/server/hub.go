package server

import (
	"context"
	"sync/atomic"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

const (
	broadcastQueue = 16
	clientQueue    = 16
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// Hub fans server messages out to websocket clients. New clients get the
// latest snapshot first.
type Hub struct {
	Logger     *logger.Logger
	clients    map[*Client]struct{}
	broadcast  chan models.MServerMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Logger:     log,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.MServerMessage, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// Run is the hub loop. It returns when ctx is cancelled, closing every
// client's queue.
func (h *Hub) Run(ctx context.Context) {
	var latest *models.MServerMessage

	defer func() {
		for client := range h.clients {
			close(client.send)
		}
		h.clients = map[*Client]struct{}{}
		h.count.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			if latest != nil {
				h.deliver(client, *latest)
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}

		case message := <-h.broadcast:
			if message.Snapshot != nil && latest != nil && latest.Snapshot != nil &&
				message.Snapshot.Sequence < latest.Snapshot.Sequence {
				continue
			}
			if message.Snapshot != nil {
				latest = &message
			}
			for client := range h.clients {
				h.deliver(client, message)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// deliver never blocks the loop: a client whose queue is full is dropped.
func (h *Hub) deliver(client *Client, message models.MServerMessage) {
	select {
	case client.send <- message:
	default:
		h.Logger.Warning("Client %s too slow, disconnecting", client.id)
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.count.Store(int64(len(h.clients)))
}

// -----------------------------------------------------------------------------

// Publish queues a message without blocking. When the queue is full the
// oldest pending message is discarded in favour of the new one.
func (h *Hub) Publish(message models.MServerMessage) {
	for {
		select {
		case h.broadcast <- message:
			return
		default:
		}
		select {
		case <-h.broadcast:
		default:
		}
	}
}

// -----------------------------------------------------------------------------

func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	return int(h.count.Load())
}
