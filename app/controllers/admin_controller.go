package controllers

import (
	"strconv"

	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
)

type AdminController struct {
	orders *services.OrderService
	auth   *services.AuthService
}

func NewAdminController(orders *services.OrderService, auth *services.AuthService) *AdminController {
	return &AdminController{orders: orders, auth: auth}
}

// Login authenticates a staff member.
func (a *AdminController) Login(c *ctx.Context) {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	result, err := a.auth.StaffLogin(input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(result)
}

// Orders lists every order for the dashboard, newest first.
func (a *AdminController) Orders(c *ctx.Context) {
	orders, err := a.orders.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(orders)
}

// Users lists registered accounts for the dashboard, paginated via the
// page and per_page query parameters. Bad values fall back to defaults.
func (a *AdminController) Users(c *ctx.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	result, err := a.auth.ListUsers(page, perPage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(result)
}

// UpdateStatus moves an order along the lifecycle.
func (a *AdminController) UpdateStatus(c *ctx.Context) {
	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if !c.BindJSON(&input) {
		return
	}

	order, err := a.orders.UpdateStatus(c.Param("id"), models.Status(input.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(order)
}

// Analytics returns flattened order rows for export.
func (a *AdminController) Analytics(c *ctx.Context) {
	rows, err := a.orders.Analytics()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Success(rows)
}
