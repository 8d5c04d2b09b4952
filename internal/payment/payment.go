// Package payment wraps the external payment-intent API behind a narrow
// interface so the cart service can be tested against a double.
package payment

import "context"

// Intent statuses the cart logic branches on. Any other remote status is
// treated as still completable and the cached client secret is reused.
const (
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type Gateway interface {
	// CreateIntent opens a payment intent for an integer minor-unit amount.
	CreateIntent(ctx context.Context, amountMinor int64, currency string) (Intent, error)
	// GetIntent retrieves the current remote state of an intent.
	GetIntent(ctx context.Context, id string) (Intent, error)
}
