package email

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/greenora/storefront/pkg/greenapi"
	"github.com/greenora/storefront/pkg/logger"
)

const confirmationSubject = "Order Confirmation - Greenora"

type sender interface {
	SendEmail(ctx context.Context, msg greenapi.EmailMessage) error
}

// Notifier sends the post-payment confirmation email. Delivery is best
// effort; a failure is logged and never propagated, so it cannot block
// the shopper's path to the confirmation screen.
type Notifier struct {
	sender sender
	log    *logger.Logger
}

// NewNotifier builds the confirmation notifier.
func NewNotifier(sender sender, log *logger.Logger) (*Notifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Notifier{sender: sender, log: log}, nil
}

// SendConfirmation fires the payment confirmation email for an order.
func (n *Notifier) SendConfirmation(ctx context.Context, to string, amount decimal.Decimal) {
	if to == "" {
		n.log.Warn(ctx, "skipping confirmation email, shopper has no email address")
		return
	}
	msg := greenapi.EmailMessage{
		To:      to,
		Subject: confirmationSubject,
		Body:    fmt.Sprintf("Your payment of ₹%s was successful. Thank you for shopping with us!", amount.StringFixed(2)),
	}
	if err := n.sender.SendEmail(ctx, msg); err != nil {
		n.log.Error(ctx, "sending confirmation email", err)
	}
}
