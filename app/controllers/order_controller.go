package controllers

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/middleware"
)

type OrderController struct {
	orders *services.OrderService
	auth   *services.AuthService
}

func NewOrderController(orders *services.OrderService, auth *services.AuthService) *OrderController {
	return &OrderController{orders: orders, auth: auth}
}

// Create places an order. Works for guests and authenticated users; when a
// valid token is present the profile fills in missing customer fields.
func (o *OrderController) Create(c *ctx.Context) {
	var input services.OrderInput
	if !c.BindJSON(&input) {
		return
	}

	var user *models.User
	if id := middleware.UserIDFromCtx(c.Context()); id != 0 {
		if u, err := o.auth.Profile(id); err == nil {
			user = &u
		}
	}

	order, err := o.orders.Create(input, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Created(order)
}

// Show returns an order with its items.
func (o *OrderController) Show(c *ctx.Context) {
	order, err := o.orders.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(order)
}

// LinkTelegram attaches a Telegram chat id to an order.
func (o *OrderController) LinkTelegram(c *ctx.Context) {
	var input struct {
		TelegramChatID string `json:"telegramChatId" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	order, err := o.orders.LinkTelegram(c.Param("id"), input.TelegramChatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(order)
}
