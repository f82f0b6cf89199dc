package controllers

import (
	"encoding/json"

	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/ws"
)

// WSController exposes the two real-time endpoints: the customer order
// channel (room per order) and the staff dashboard broadcast.
type WSController struct {
	orderHub *ws.Hub
	staffHub *ws.Hub
}

func NewWSController(orderHub, staffHub *ws.Hub) *WSController {
	orderHub.OnMessage = handleOrderMessage
	return &WSController{orderHub: orderHub, staffHub: staffHub}
}

// Orders upgrades a customer connection. The client joins an order room by
// sending {"type":"join-order","orderId":"..."}.
func (w *WSController) Orders(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, w.orderHub)
}

// Staff upgrades a dashboard connection; it receives every new-order event.
func (w *WSController) Staff(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, w.staffHub)
}

func handleOrderMessage(hub *ws.Hub, msg ws.Message) {
	var in struct {
		Type    string `json:"type"`
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		return
	}

	switch in.Type {
	case "join-order":
		if in.OrderID != "" {
			hub.Join(msg.Client, in.OrderID)
		}
	case "leave-order":
		if in.OrderID != "" {
			hub.Leave(msg.Client, in.OrderID)
		}
	}
}
