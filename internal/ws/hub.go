package ws

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Client is a websocket connection tagged with the authenticated user it
// belongs to. UserID is empty for admin dashboard connections that only
// consume broadcasts.
type Client struct {
	Conn   *websocket.Conn
	UserID string
}

// DirectMessage targets every open connection of a single user.
type DirectMessage struct {
	UserID  string
	Payload []byte
}

type Hub struct {
	Clients    map[*websocket.Conn]string
	Register   chan *Client
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	Direct     chan DirectMessage
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]string),
		Register:   make(chan *Client),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
		Direct:     make(chan DirectMessage),
	}
}

// SendToUser queues a payload for every connection of the given user.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.Direct <- DirectMessage{UserID: userID, Payload: payload}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.Clients[client.Conn] = client.UserID
			h.mutex.Unlock()
			log.Println("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()

		case dm := <-h.Direct:
			h.mutex.Lock()
			for conn, userID := range h.Clients {
				if userID != dm.UserID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, dm.Payload); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
