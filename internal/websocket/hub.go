package websocket

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

type accountMessage struct {
	accountID string
	payload   []byte
}

type clientMessage struct {
	client  *Client
	payload []byte
}

// Hub maintains the set of active clients and routes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every connected client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to one account.
	direct chan accountMessage

	// Replies to a single client.
	replies chan clientMessage

	// A map of account IDs to the clients of that account.
	subscriptions map[string]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		direct:        make(chan accountMessage, 64),
		replies:       make(chan clientMessage, 16),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run processes hub traffic until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			if client.AccountID != "" {
				h.addSubscription(client, client.AccountID)
			}
			log.Info().Int("total_clients", len(h.clients)).Str("account_id", client.AccountID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				h.deliver(client, message)
			}
		case m := <-h.direct:
			for client := range h.subscriptions[m.accountID] {
				h.deliver(client, m.payload)
			}
		case m := <-h.replies:
			if h.clients[m.client] {
				h.deliver(m.client, m.payload)
			}
		}
	}
}

// NotifyAccount queues msg for every client of accountID. Messages sent after
// the hub has stopped are dropped.
func (h *Hub) NotifyAccount(accountID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.direct <- accountMessage{accountID: accountID, payload: payload}:
	case <-h.done:
	}
}

// Reply queues payload for one client. It is a no-op once the client is gone.
func (h *Hub) Reply(client *Client, payload []byte) {
	select {
	case h.replies <- clientMessage{client: client, payload: payload}:
	case <-h.done:
	}
}

// Attach registers client unless the hub has stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters client unless the hub has stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client, accountID string) {
	if h.subscriptions[accountID] == nil {
		h.subscriptions[accountID] = make(map[*Client]bool)
	}
	h.subscriptions[accountID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	subs, ok := h.subscriptions[client.AccountID]
	if !ok {
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.subscriptions, client.AccountID)
	}
}
