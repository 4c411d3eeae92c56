package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/pkg/events"
	"deepseek-chat-be/pkg/reveal"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	clusterChannel = "cluster_events"
	TypeReveal     = "reveal"
)

// Envelope is the JSON frame written to sockets.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type RevealFrame struct {
	ChatID string `json:"chat_id"`
	reveal.Frame
}

type clusterMessage struct {
	Origin       string           `json:"origin"`
	TargetUserID string           `json:"target_user_id"`
	Event        events.BaseEvent `json:"event"`
}

type Hub struct {
	// UserID -> connected clients (multi-device)
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication; nil runs single-instance.
	rdb        *redis.Client
	instanceID string

	revealInterval time.Duration

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, revealInterval time.Duration, log logger.ILogger) *Hub {
	return &Hub{
		clients:        make(map[string]map[*Client]struct{}),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		rdb:            rdb,
		instanceID:     uuid.NewString(),
		revealInterval: revealInterval,
		logger:         log,
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.cancel()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.cancel()
	}
}

// Run owns the client map until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, clients := range h.clients {
				for c := range clients {
					c.cancel()
				}
			}
			h.clients = make(map[string]map[*Client]struct{})
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]struct{})
			}
			h.clients[client.UserID][client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					client.cancel()
				}
				if len(clients) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
		}
	}
}

// ClientCount returns the number of local connections for userID.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send pushes event to every connection of userID, here and on other instances.
func (h *Hub) Send(userID string, event events.Event) {
	evt := events.FromEvent(event)
	h.deliverLocal(userID, evt)

	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(clusterMessage{Origin: h.instanceID, TargetUserID: userID, Event: evt})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) localClients(userID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) deliverLocal(userID string, evt events.BaseEvent) {
	clients := h.localClients(userID)
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(Envelope{Type: evt.Type, Data: evt.Data})
	if err != nil {
		return
	}

	for _, client := range clients {
		if client.Context().Err() != nil {
			continue // already dropped, Unregister is on its way
		}
		if !client.enqueue(data) {
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"user_id": userID})
			client.cancel()
			continue
		}
		if evt.Type == events.MessageGenerated {
			go h.playReveal(client, evt)
		}
	}
}

func (h *Hub) playReveal(client *Client, evt events.BaseEvent) {
	content, _ := evt.Data["content"].(string)
	chatID, _ := evt.Data["chat_id"].(string)

	err := reveal.Play(client.Context(), content, h.revealInterval, func(f reveal.Frame) error {
		data, err := json.Marshal(Envelope{Type: TypeReveal, Data: RevealFrame{ChatID: chatID, Frame: f}})
		if err != nil {
			return err
		}
		if !client.enqueue(data) {
			return context.Canceled
		}
		return nil
	})
	if err != nil {
		h.logger.Debug("Hub", "Reveal stopped", map[string]interface{}{"user_id": client.UserID, "chat_id": chatID})
	}
}

// subscribeToRedis delivers events published by other instances to local clients.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.TargetUserID, payload.Event)
		}
	}
}
