package notifications

import (
	"fmt"

	"github.com/kopisahaja/kopisahaja/pkg/notification"
)

// Welcome greets a freshly registered account.
type Welcome struct {
	Email string
	Name  string
}

func (n *Welcome) Via() []string { return []string{"mail"} }

func (n *Welcome) ToMail() notification.MailData {
	return notification.MailData{
		To:      n.Email,
		Subject: "Welcome to KopiSahaja",
		Body: fmt.Sprintf(
			"<p>Hi %s,</p>"+
				"<p>Your account is ready. Browse the menu, customize your drink "+
				"and track your order live.</p>"+
				"<p>See you at the counter!</p>",
			n.Name),
	}
}
