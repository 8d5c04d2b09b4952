package services

import (
	"context"
	"errors"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/payment"
	"rebooks-backend/internal/pricing"
	"rebooks-backend/internal/repository"
)

// casRetries bounds the optimistic-concurrency retry loop on cart writes.
const casRetries = 3

type CartService struct {
	carts    repository.CartRepo
	books    repository.BookRepo
	gateway  payment.Gateway
	currency string
}

func NewCartService(carts repository.CartRepo, books repository.BookRepo, gateway payment.Gateway) *CartService {
	return &CartService{carts: carts, books: books, gateway: gateway, currency: "usd"}
}

// Get returns the user's cart, purging any item whose underlying listing has
// disappeared or gone unavailable. The second return reports whether a purge
// happened so the client can tell the user.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, bool, error) {
	purged := false
	var out *models.Cart

	err := s.withCart(ctx, userID, func(cart *models.Cart) (bool, error) {
		kept := cart.OrderItems[:0:0]
		for _, item := range cart.OrderItems {
			book, err := s.books.FindByID(ctx, item.Book)
			if err != nil {
				return false, err
			}
			if book == nil || !book.IsAvailable {
				continue
			}
			kept = append(kept, item)
		}

		if len(kept) == len(cart.OrderItems) {
			out = cart
			return false, nil
		}

		purged = true
		cart.OrderItems = kept
		s.reprice(cart)
		out = cart
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, purged, nil
}

// Add snapshots a listing into the cart, creating the cart lazily. A listing
// already in the cart is rejected; there is never more than one cart item per
// listing.
func (s *CartService) Add(ctx context.Context, userID, bookID primitive.ObjectID) (*models.Cart, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperr.BadRequest("Book not found")
	}
	if !book.IsAvailable {
		return nil, apperr.BadRequest("Book is not available")
	}

	for attempt := 0; ; attempt++ {
		cart, err := s.carts.FindByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}

		created := false
		if cart == nil {
			cart = &models.Cart{
				CreatedBy:  userID,
				Status:     models.CartPending,
				OrderItems: []models.CartItem{},
			}
			created = true
		}

		for _, item := range cart.OrderItems {
			if item.Book == bookID {
				return nil, apperr.BadRequest("Item already in cart")
			}
		}

		cart.OrderItems = append(cart.OrderItems, models.CartItem{
			ID:            primitive.NewObjectID(),
			Book:          book.ID,
			Title:         book.Title,
			Author:        book.Author,
			CoverImageURL: book.CoverImageURL,
			Price:         book.Price,
			IsAvailable:   book.IsAvailable,
			AddedAt:       time.Now(),
		})
		s.reprice(cart)

		if created {
			err = s.carts.Create(ctx, cart)
			// a concurrent request created the cart first; re-read and retry
			if errors.Is(err, repository.ErrDuplicate) && attempt < casRetries {
				continue
			}
		} else {
			err = s.carts.Update(ctx, cart)
			if errors.Is(err, repository.ErrVersionConflict) && attempt < casRetries {
				continue
			}
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
}

// RemoveItem pulls a cart item by its id and reprices the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) (*models.Cart, error) {
	var out *models.Cart
	err := s.withCart(ctx, userID, func(cart *models.Cart) (bool, error) {
		idx := -1
		for i, item := range cart.OrderItems {
			if item.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, apperr.NotFound("Item not found in cart")
		}
		cart.OrderItems = append(cart.OrderItems[:idx], cart.OrderItems[idx+1:]...)
		s.reprice(cart)
		out = cart
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IntentResult is what checkout initiation hands back to the client.
type IntentResult struct {
	ClientSecret string `json:"clientSecret"`
	AlreadyPaid  bool   `json:"-"`
}

// CreatePaymentIntent opens (or reuses) a payment intent for the cart total.
// A cart that already paid is answered idempotently; a cached intent that can
// no longer complete is discarded and replaced.
func (s *CartService) CreatePaymentIntent(ctx context.Context, userID primitive.ObjectID) (IntentResult, error) {
	cart, err := s.carts.FindByOwner(ctx, userID)
	if err != nil {
		return IntentResult{}, err
	}
	if cart == nil || len(cart.OrderItems) == 0 {
		return IntentResult{}, apperr.BadRequest("Your cart is empty")
	}

	if cart.Status == models.CartPaid {
		return IntentResult{ClientSecret: cart.ClientSecret, AlreadyPaid: true}, nil
	}

	if cart.PaymentIntentID != "" {
		intent, err := s.gateway.GetIntent(ctx, cart.PaymentIntentID)
		if err == nil && intent.Status != payment.StatusCanceled && intent.Status != payment.StatusSucceeded {
			return IntentResult{ClientSecret: cart.ClientSecret}, nil
		}
		// stale or unreachable intent: fall through and create a fresh one
	}

	amount := int64(math.Round(cart.Total * 100))
	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		return IntentResult{}, err
	}

	cart.ClientSecret = intent.ClientSecret
	cart.PaymentIntentID = intent.ID
	if err := s.carts.Update(ctx, cart); err != nil {
		return IntentResult{}, err
	}
	return IntentResult{ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment marks the cart behind a payment intent as paid once the
// gateway reports the intent succeeded. Re-confirming an already-paid cart is
// a no-op success.
func (s *CartService) ConfirmPayment(ctx context.Context, intentID string) (*models.Cart, error) {
	if intentID == "" {
		return nil, apperr.BadRequest("paymentIntentId is required")
	}

	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, apperr.BadRequest("Payment not successful")
	}

	cart, err := s.carts.SetStatusByIntent(ctx, intentID, models.CartPaid)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.NotFound("Cart not found")
	}
	return cart, nil
}

func (s *CartService) reprice(cart *models.Cart) {
	prices := make([]float64, 0, len(cart.OrderItems))
	for _, item := range cart.OrderItems {
		prices = append(prices, item.Price)
	}
	pricing.Calculate(prices, nil, nil).Apply(cart)
}

// withCart runs fn against the user's cart under a CAS retry loop. fn returns
// whether the cart was mutated and needs persisting.
func (s *CartService) withCart(ctx context.Context, userID primitive.ObjectID, fn func(cart *models.Cart) (bool, error)) error {
	for attempt := 0; ; attempt++ {
		cart, err := s.carts.FindByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil {
			return apperr.NotFound("Cart not found")
		}

		dirty, err := fn(cart)
		if err != nil {
			return err
		}
		if !dirty {
			return nil
		}

		err = s.carts.Update(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) && attempt < casRetries {
			continue
		}
		return err
	}
}
