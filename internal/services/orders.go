package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/pricing"
	"rebooks-backend/internal/repository"
)

// Notifier is the outbound notification collaborator; order lifecycle events
// are observable behavior but their delivery is best effort.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order, buyer, seller *models.User)
}

type OrderService struct {
	orders repository.OrderRepo
	carts  repository.CartRepo
	books  repository.BookRepo
	users  repository.UserRepo
	tx     repository.TxRunner
	notify Notifier
}

func NewOrderService(orders repository.OrderRepo, carts repository.CartRepo, books repository.BookRepo, users repository.UserRepo, tx repository.TxRunner, notify Notifier) *OrderService {
	return &OrderService{orders: orders, carts: carts, books: books, users: users, tx: tx, notify: notify}
}

// CreateFromCart splits the buyer's cart into one order per distinct seller,
// snapshotting book fields, marking the listings unavailable and clearing the
// cart. The whole split runs in one transaction: a failure on any seller
// group leaves the cart and catalog untouched so the caller can retry.
func (s *OrderService) CreateFromCart(ctx context.Context, buyerID primitive.ObjectID) ([]models.Order, error) {
	cart, err := s.carts.FindByOwner(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.OrderItems) == 0 {
		return nil, apperr.BadRequest("Your cart is empty")
	}

	buyer, err := s.users.FindByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, apperr.NotFound("User not found")
	}

	// resolve each cart item to its live listing; stale entries force the
	// client back through a cart read (which purges them)
	type resolved struct {
		item models.CartItem
		book *models.Book
	}
	items := make([]resolved, 0, len(cart.OrderItems))
	for _, item := range cart.OrderItems {
		book, err := s.books.FindByID(ctx, item.Book)
		if err != nil {
			return nil, err
		}
		if book == nil || !book.IsAvailable {
			return nil, apperr.BadRequest("Your cart contains listings that are no longer available")
		}
		items = append(items, resolved{item: item, book: book})
	}

	bySeller := lo.GroupBy(items, func(r resolved) primitive.ObjectID {
		return r.book.CreatedBy
	})

	var orders []models.Order
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		orders = orders[:0]
		for sellerID, group := range bySeller {
			seller, err := s.users.FindByID(txCtx, sellerID)
			if err != nil {
				return err
			}

			orderItems := make([]models.OrderItem, 0, len(group))
			prices := make([]float64, 0, len(group))
			bookIDs := make([]primitive.ObjectID, 0, len(group))
			for _, r := range group {
				orderItems = append(orderItems, models.OrderItem{
					Book: models.BookSnapshot{
						BookID:    r.book.ID,
						Title:     r.book.Title,
						Author:    r.book.Author,
						Condition: r.book.Condition,
					},
					Price: r.item.Price,
				})
				prices = append(prices, r.item.Price)
				bookIDs = append(bookIDs, r.book.ID)
			}

			var sellerLoc *models.Location
			if seller != nil {
				sellerLoc = seller.Location
			}
			quote := pricing.Calculate(prices, buyer.Location, sellerLoc)
			subtotal := pricing.Subtotal(prices)

			now := time.Now()
			order := models.Order{
				OrderNumber: newOrderNumber(),
				Buyer:       buyerID,
				Seller:      sellerID,
				Items:       orderItems,
				Total:       subtotal,
				Tax:         quote.Tax,
				ShippingFee: quote.ShippingFee,
				OrderAmount: quote.Total,
				Status:      models.OrderPending,
				OrderDate:   now,
				DatePlaced:  now,
			}
			if err := s.orders.Create(txCtx, &order); err != nil {
				return err
			}
			if err := s.books.SetAvailability(txCtx, bookIDs, false); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		// reset the cart for the next shopping cycle; a lingering paid
		// status or intent would short-circuit the buyer's next checkout
		cart.OrderItems = []models.CartItem{}
		cart.Tax = 0
		cart.ShippingFee = 0
		cart.Total = 0
		cart.Status = models.CartPending
		cart.PaymentIntentID = ""
		cart.ClientSecret = ""
		return s.carts.Update(txCtx, cart)
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// OrdersByRole is the GET /orders payload: the caller's purchases and sales.
type OrdersByRole struct {
	Buying  []models.Order `json:"buying"`
	Selling []models.Order `json:"selling"`
}

func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) (OrdersByRole, error) {
	buying, err := s.orders.FindByBuyer(ctx, userID)
	if err != nil {
		return OrdersByRole{}, err
	}
	selling, err := s.orders.FindBySeller(ctx, userID)
	if err != nil {
		return OrdersByRole{}, err
	}
	if buying == nil {
		buying = []models.Order{}
	}
	if selling == nil {
		selling = []models.Order{}
	}
	return OrdersByRole{Buying: buying, Selling: selling}, nil
}

func (s *OrderService) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("Order not found")
	}
	return order, nil
}

// buyer and seller transition tables; anything not listed is rejected.
// No path reaches Delivered: a "buyer confirms receipt" action does not
// exist yet and the gap is tracked with product.
var (
	buyerTransitions = map[models.OrderStatus][]models.OrderStatus{
		models.OrderPending: {models.OrderCancelled},
	}
	sellerTransitions = map[models.OrderStatus][]models.OrderStatus{
		models.OrderPending:   {models.OrderConfirmed, models.OrderCancelled},
		models.OrderConfirmed: {models.OrderShipped, models.OrderCancelled},
	}
)

func transitionAllowed(table map[models.OrderStatus][]models.OrderStatus, from, to models.OrderStatus) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatus applies a role-gated lifecycle transition. Successful
// seller-driven transitions notify both parties.
func (s *OrderService) UpdateStatus(ctx context.Context, actorID, orderID primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.BadRequest("Invalid status")
	}
	target := models.OrderStatus(status)

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var table map[models.OrderStatus][]models.OrderStatus
	isSeller := false
	switch actorID {
	case order.Buyer:
		table = buyerTransitions
	case order.Seller:
		table = sellerTransitions
		isSeller = true
	default:
		return nil, apperr.BadRequest("Not authorized to update this order")
	}

	if !transitionAllowed(table, order.Status, target) {
		return nil, apperr.BadRequest(fmt.Sprintf("Invalid status transition from %s to %s", order.Status, target))
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, target)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("Order not found")
	}

	if isSeller && s.notify != nil {
		buyer, err := s.users.FindByID(ctx, updated.Buyer)
		if err != nil {
			log.Printf("order %s: loading buyer for notification: %v", updated.OrderNumber, err)
		}
		seller, err := s.users.FindByID(ctx, updated.Seller)
		if err != nil {
			log.Printf("order %s: loading seller for notification: %v", updated.OrderNumber, err)
		}
		s.notify.OrderStatusChanged(ctx, updated, buyer, seller)
	}
	return updated, nil
}
