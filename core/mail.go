package core

import "net/mail"

type EmailMessage struct {
	To          []mail.Address
	Subject     string
	TextContent string
}

func (msg *EmailMessage) HasRecipients() bool { return len(msg.To) > 0 }
func (msg *EmailMessage) HasContent() bool    { return msg.TextContent != "" }

// EmailService sends messages asynchronously; delivery is best-effort.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}
