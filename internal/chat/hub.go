// Package chat is the realtime transport for buyer-seller messaging.
// Clients join rooms keyed by chat id; sendMessage events are persisted
// through the chat service and broadcast to the room as newMessage.
package chat

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxFrame   = 4096
)

// inbound is a client-to-server event frame.
type inbound struct {
	Event  string `json:"event"`
	ChatID string `json:"chatId"`
	Msg    string `json:"message"`
}

// outbound is a server-to-client event frame.
type outbound struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type newMessagePayload struct {
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan outbound
	userID primitive.ObjectID

	mu    sync.Mutex
	rooms map[string]struct{}
}

type Hub struct {
	svc      *services.ChatService
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
}

func NewHub(svc *services.ChatService) *Hub {
	return &Hub{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: map[string]map[*client]struct{}{},
	}
}

// Serve upgrades the request and runs the connection until it closes.
// The caller has already authenticated userID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan outbound, 16),
		userID: userID,
		rooms:  map[string]struct{}{},
	}
	go c.writePump()
	c.readPump()
}

func (h *Hub) join(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = map[*client]struct{}{}
	}
	h.rooms[roomID][c] = struct{}{}

	c.mu.Lock()
	c.rooms[roomID] = struct{}{}
	c.mu.Unlock()
}

func (h *Hub) leaveAll(c *client) {
	c.mu.Lock()
	rooms := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range rooms {
		delete(h.rooms[r], c)
		if len(h.rooms[r]) == 0 {
			delete(h.rooms, r)
		}
	}
}

func (h *Hub) broadcast(roomID string, msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		select {
		case c.send <- msg:
		default:
			// slow consumer; drop the frame rather than block the room
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.leaveAll(c)
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrame)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev inbound
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read: %v", err)
			}
			return
		}
		c.handle(ev)
	}
}

func (c *client) handle(ev inbound) {
	chatID, err := primitive.ObjectIDFromHex(ev.ChatID)
	if err != nil {
		c.sendError("invalid chatId")
		return
	}

	switch ev.Event {
	case "join":
		// joining is gated on participation, same as the REST read
		if _, _, err := c.hub.svc.GetWithMessages(context.Background(), c.userID, chatID); err != nil {
			c.sendError(err.Error())
			return
		}
		c.hub.join(ev.ChatID, c)

	case "sendMessage":
		msg, err := c.hub.svc.SendMessage(context.Background(), c.userID, chatID, ev.Msg)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.hub.broadcast(ev.ChatID, outbound{
			Event: "newMessage",
			Data: newMessagePayload{
				ChatID:    ev.ChatID,
				SenderID:  c.userID.Hex(),
				Message:   msg.Message,
				Timestamp: msg.Timestamp,
			},
		})

	default:
		c.sendError("unknown event")
	}
}

func (c *client) sendError(msg string) {
	select {
	case c.send <- outbound{Event: "error", Data: msg}:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
