package ws

import (
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"
)

const (
	ChannelAudit          = "audit"
	ChannelBorrowerPrefix = "borrower:"
)

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

type subscribeMessage struct {
	Action     string `json:"action"`
	Channel    string `json:"channel"`
	BorrowerID string `json:"borrowerId"`
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	websocket.Handler(func(conn *websocket.Conn) {
		client := NewClient(conn)
		go h.writer(client)
		h.reader(client)
	}).ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client) {
	defer func() {
		h.hub.UnsubscribeAll(client)
		close(client.out)
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		topic := subscriptionTopic(msg)
		if topic == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(msg.Action)) {
		case "subscribe":
			h.hub.Subscribe(topic, client)
		case "unsubscribe":
			h.hub.Unsubscribe(topic, client)
		}
	}
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func subscriptionTopic(msg subscribeMessage) string {
	channel := strings.ToLower(strings.TrimSpace(msg.Channel))
	switch channel {
	case ChannelAudit:
		return ChannelAudit
	case "borrower":
		borrowerID := strings.TrimSpace(msg.BorrowerID)
		if borrowerID == "" {
			return ""
		}
		return ChannelBorrowerPrefix + borrowerID
	default:
		return ""
	}
}
