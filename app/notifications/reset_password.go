package notifications

import (
	"fmt"

	"github.com/kopisahaja/kopisahaja/pkg/notification"
)

// ResetPassword carries a password-reset token to the account's mailbox.
type ResetPassword struct {
	Email string
	Token string
}

func (n *ResetPassword) Via() []string { return []string{"mail"} }

func (n *ResetPassword) ToMail() notification.MailData {
	return notification.MailData{
		To:      n.Email,
		Subject: "Reset your KopiSahaja password",
		Body: fmt.Sprintf(
			"<p>We received a request to reset your password.</p>"+
				"<p>Your reset token is: <strong>%s</strong></p>"+
				"<p>It expires in one hour. If you didn't ask for this, ignore this email.</p>",
			n.Token),
	}
}
