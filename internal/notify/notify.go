// Package notify delivers order-lifecycle emails to buyers and sellers.
package notify

import (
	"context"
	"fmt"
	"log"

	"rebooks-backend/internal/mailer"
	"rebooks-backend/internal/models"
)

type EmailNotifier struct {
	mail mailer.Sender
}

func NewEmailNotifier(mail mailer.Sender) *EmailNotifier {
	return &EmailNotifier{mail: mail}
}

// OrderStatusChanged emails both parties about the new order status.
// Delivery failures are logged, never propagated.
func (n *EmailNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, buyer, seller *models.User) {
	subject := fmt.Sprintf("Order %s is now %s", order.OrderNumber, order.Status)

	if buyer != nil {
		body := fmt.Sprintf(`<h3>Order Update</h3>
<p>Hi %s, your order <b>%s</b> is now <b>%s</b>.</p>`, buyer.FirstName, order.OrderNumber, order.Status)
		if err := n.mail.Send(buyer.Email, subject, body); err != nil {
			log.Printf("order %s: buyer notification failed: %v", order.OrderNumber, err)
		}
	}
	if seller != nil {
		body := fmt.Sprintf(`<h3>Order Update</h3>
<p>Hi %s, order <b>%s</b> for your listing is now <b>%s</b>.</p>`, seller.FirstName, order.OrderNumber, order.Status)
		if err := n.mail.Send(seller.Email, subject, body); err != nil {
			log.Printf("order %s: seller notification failed: %v", order.OrderNumber, err)
		}
	}
}
