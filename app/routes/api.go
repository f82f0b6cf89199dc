// Package routes declares the HTTP surface of the service.
package routes

import (
	"github.com/kopisahaja/kopisahaja/app/controllers"
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/pkg/ctx"
	"github.com/kopisahaja/kopisahaja/pkg/middleware"
	"github.com/kopisahaja/kopisahaja/pkg/rbac"
	"github.com/kopisahaja/kopisahaja/pkg/router"
)

// Controllers bundles the constructed controllers for registration.
type Controllers struct {
	Auth  *controllers.AuthController
	Drink *controllers.DrinkController
	Order *controllers.OrderController
	Admin *controllers.AdminController
	WS    *controllers.WSController
}

// RegisterAPI mounts every route. Auth rules: profile endpoints need a
// bearer token, order placement accepts an optional one, admin endpoints
// need a staff token.
func RegisterAPI(r *router.Router, c Controllers) {
	staffOnly := rbac.HasRole(models.RoleStaff)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	auth.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))
	auth.Post("/google", "auth.google", ctx.Wrap(c.Auth.Google))
	auth.Post("/forgot-password", "auth.forgot", ctx.Wrap(c.Auth.ForgotPassword))
	auth.Post("/reset-password", "auth.reset", ctx.Wrap(c.Auth.ResetPassword))

	profile := auth.Group("", middleware.Auth)
	profile.Get("/profile", "auth.profile", ctx.Wrap(c.Auth.Profile))
	profile.Put("/profile", "auth.profile.update", ctx.Wrap(c.Auth.UpdateProfile))
	profile.Post("/profile/picture", "auth.profile.picture", ctx.Wrap(c.Auth.UploadPicture))

	api.Get("/drinks", "drinks.index", ctx.Wrap(c.Drink.Index))

	orders := api.Group("/orders")
	orders.Post("", "orders.create", ctx.Wrap(c.Order.Create), middleware.OptionalAuth)
	orders.Get("/{id}", "orders.show", ctx.Wrap(c.Order.Show))
	orders.Post("/{id}/telegram", "orders.telegram", ctx.Wrap(c.Order.LinkTelegram))

	admin := api.Group("/admin")
	admin.Post("/login", "admin.login", ctx.Wrap(c.Admin.Login))

	dashboard := admin.Group("", middleware.Auth, staffOnly)
	dashboard.Get("/orders", "admin.orders", ctx.Wrap(c.Admin.Orders))
	dashboard.Get("/users", "admin.users", ctx.Wrap(c.Admin.Users))
	dashboard.Put("/orders/{id}/status", "admin.orders.status", ctx.Wrap(c.Admin.UpdateStatus))

	api.Get("/analytics/orders", "analytics.orders", ctx.Wrap(c.Admin.Analytics), middleware.Auth, staffOnly)

	wsGroup := r.Group("/ws")
	wsGroup.Get("/orders", "ws.orders", ctx.Wrap(c.WS.Orders))
	wsGroup.Get("/staff", "ws.staff", ctx.Wrap(c.WS.Staff))
}
