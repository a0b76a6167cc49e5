package greenapi

import (
	"context"
	"net/http"
)

// EmailMessage is the payload for the notification side-channel.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmail posts a message to the email side-channel. Callers treat
// delivery as best effort.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	return c.do(ctx, http.MethodPost, "email/send", msg, nil, "send email")
}
