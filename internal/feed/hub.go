// Package feed fans complaint events out to WebSocket subscribers. The
// events arrive over Redis Pub/Sub, so every replica of the service
// sees changes made by the others.
package feed

import (
	"context"
	"encoding/json"
	"log"

	"civicsense/backend/internal/config"
	"civicsense/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type client struct {
	conn *websocket.Conn
	send chan models.ComplaintEvent
}

// Hub keeps the set of live feed subscribers and broadcasts events to
// them. All state changes go through the channels and are applied by
// the single Run goroutine.
type Hub struct {
	Redis *redis.Client

	clients      map[*client]bool
	registerCh   chan *client
	unregisterCh chan *client
	broadcastCh  chan models.ComplaintEvent
}

// NewHub creates a feed hub.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		Redis:        rdb,
		clients:      make(map[*client]bool),
		registerCh:   make(chan *client),
		unregisterCh: make(chan *client),
		broadcastCh:  make(chan models.ComplaintEvent),
	}
}

// Run запускає головний цикл Hub'а. Викликати в окремій goroutine.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case c := <-h.registerCh:
			h.clients[c] = true

		case c := <-h.unregisterCh:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case ev := <-h.broadcastCh:
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Повільний клієнт: відключаємо, щоб не блокувати інших.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// startPubSubListener запускає goroutine, яка слухає Redis Pub/Sub.
func (h *Hub) startPubSubListener() {
	if h.Redis == nil {
		return
	}
	go func() {
		ctx := context.Background()
		pubsub := h.Redis.Subscribe(ctx, config.FeedChannel)
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.ComplaintEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to unmarshal feed event: %v", err)
				continue
			}
			h.broadcastCh <- ev
		}
	}()
}

// Subscribe attaches an upgraded WebSocket connection to the feed and
// starts its pumps. The read pump only watches for the close frame.
func (h *Hub) Subscribe(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan models.ComplaintEvent, config.FeedSendBuffer),
	}
	h.registerCh <- c

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
	// Hub закрив канал — завершуємо з'єднання.
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregisterCh <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
