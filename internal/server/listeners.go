package server

import (
	"github.com/kopisahaja/kopisahaja/app/models"
	"github.com/kopisahaja/kopisahaja/app/notifications"
	"github.com/kopisahaja/kopisahaja/pkg/event"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
)

// registerListeners subscribes the application's event listeners. Events are
// fired by the service layer; delivery side effects live here so services
// stay free of mail concerns.
func registerListeners() {
	event.Listen("user.registered", func(payload interface{}) {
		user, ok := payload.(models.User)
		if !ok {
			return
		}
		notification.SendAsync(user.Email, &notifications.Welcome{
			Email: user.Email,
			Name:  user.DisplayName(),
		})
	})
}
