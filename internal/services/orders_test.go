package services

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
)

type orderFixture struct {
	svc      *OrderService
	cartSvc  *CartService
	orders   *fakeOrderRepo
	carts    *fakeCartRepo
	books    *fakeBookRepo
	users    *fakeUserRepo
	tx       *fakeTxRunner
	notifier *fakeNotifier
	gateway  *fakeGateway
	buyer    models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   newFakeOrderRepo(),
		carts:    newFakeCartRepo(),
		books:    newFakeBookRepo(),
		users:    newFakeUserRepo(),
		tx:       &fakeTxRunner{},
		notifier: &fakeNotifier{},
		gateway:  newFakeGateway(),
	}
	f.svc = NewOrderService(f.orders, f.carts, f.books, f.users, f.tx, f.notifier)
	f.cartSvc = NewCartService(f.carts, f.books, f.gateway)
	f.buyer = f.users.put(models.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Location:  &models.Location{City: "London", Country: "UK"},
	})
	return f
}

func (f *orderFixture) seller(country string) models.User {
	return f.users.put(models.User{
		FirstName: "Sam",
		LastName:  "Seller",
		Email:     primitive.NewObjectID().Hex() + "@example.com",
		Location:  &models.Location{City: "Springfield", Country: country},
	})
}

func (f *orderFixture) addToCart(t *testing.T, book models.Book) {
	t.Helper()
	_, err := f.cartSvc.Add(context.Background(), f.buyer.ID, book.ID)
	require.NoError(t, err)
}

func TestCreateFromCart_SplitsPerSeller(t *testing.T) {
	f := newOrderFixture(t)
	alice := f.seller("UK")
	bob := f.seller("UK")

	b1 := f.books.put(availableBook(alice.ID, "Emma", 10))
	b2 := f.books.put(availableBook(alice.ID, "Persuasion", 20))
	b3 := f.books.put(availableBook(bob.ID, "Dracula", 15))
	f.addToCart(t, b1)
	f.addToCart(t, b2)
	f.addToCart(t, b3)

	orders, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 1, f.tx.calls)

	bySeller := lo.KeyBy(orders, func(o models.Order) primitive.ObjectID { return o.Seller })
	aliceOrder, ok := bySeller[alice.ID]
	require.True(t, ok)
	bobOrder, ok := bySeller[bob.ID]
	require.True(t, ok)

	require.Len(t, aliceOrder.Items, 2)
	assert.Equal(t, 30.00, aliceOrder.Total)
	assert.Equal(t, 2.40, aliceOrder.Tax)
	assert.Equal(t, 5.00, aliceOrder.ShippingFee)
	assert.Equal(t, 37.40, aliceOrder.OrderAmount)

	require.Len(t, bobOrder.Items, 1)
	assert.Equal(t, 15.00, bobOrder.Total)
	assert.Equal(t, "Dracula", bobOrder.Items[0].Book.Title)

	for _, o := range orders {
		assert.Equal(t, models.OrderPending, o.Status)
		assert.Equal(t, f.buyer.ID, o.Buyer)
		assert.NotEmpty(t, o.OrderNumber)
	}
	assert.NotEqual(t, aliceOrder.OrderNumber, bobOrder.OrderNumber)
}

func TestCreateFromCart_InternationalShipping(t *testing.T) {
	f := newOrderFixture(t)
	overseas := f.seller("US")
	book := f.books.put(availableBook(overseas.ID, "Moby Dick", 10))
	f.addToCart(t, book)

	orders, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 15.00, orders[0].ShippingFee)
	assert.Equal(t, 25.80, orders[0].OrderAmount)
}

func TestCreateFromCart_MarksListingsSoldAndClearsCart(t *testing.T) {
	f := newOrderFixture(t)
	seller := f.seller("UK")
	book := f.books.put(availableBook(seller.ID, "Emma", 10))
	f.addToCart(t, book)

	_, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)

	sold, err := f.books.FindByID(context.Background(), book.ID)
	require.NoError(t, err)
	assert.False(t, sold.IsAvailable)

	cart, err := f.carts.FindByOwner(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.OrderItems)
	assert.Equal(t, 0.0, cart.Total)
	assert.Equal(t, 0.0, cart.Tax)
	assert.Equal(t, 0.0, cart.ShippingFee)
}

func TestCreateFromCart_ResetsCartForNextPurchase(t *testing.T) {
	f := newOrderFixture(t)
	seller := f.seller("UK")
	first := f.books.put(availableBook(seller.ID, "Emma", 10))
	f.addToCart(t, first)

	// full first cycle: intent, payment, split
	_, err := f.cartSvc.CreatePaymentIntent(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	f.gateway.statuses["pi_1"] = "succeeded"
	_, err = f.cartSvc.ConfirmPayment(context.Background(), "pi_1")
	require.NoError(t, err)
	_, err = f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)

	cart, err := f.carts.FindByOwner(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CartPending, cart.Status)
	assert.Empty(t, cart.PaymentIntentID)
	assert.Empty(t, cart.ClientSecret)

	// second cycle must open a fresh intent, not replay the old secret
	second := f.books.put(availableBook(seller.ID, "Persuasion", 20))
	f.addToCart(t, second)

	res, err := f.cartSvc.CreatePaymentIntent(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyPaid)
	assert.Equal(t, "pi_2_secret", res.ClientSecret)
	assert.Equal(t, 2, f.gateway.created)
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	assertKind(t, err, apperr.KindBadRequest)
}

func TestCreateFromCart_StaleListing(t *testing.T) {
	f := newOrderFixture(t)
	seller := f.seller("UK")
	book := f.books.put(availableBook(seller.ID, "Emma", 10))
	f.addToCart(t, book)

	require.NoError(t, f.books.SetAvailability(context.Background(), []primitive.ObjectID{book.ID}, false))

	_, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	assertKind(t, err, apperr.KindBadRequest)

	cart, err := f.carts.FindByOwner(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.OrderItems, 1, "a failed checkout must leave the cart intact")
}

func TestListForUser_SplitsByRole(t *testing.T) {
	f := newOrderFixture(t)
	seller := f.seller("UK")
	book := f.books.put(availableBook(seller.ID, "Emma", 10))
	f.addToCart(t, book)

	_, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)

	asBuyer, err := f.svc.ListForUser(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, asBuyer.Buying, 1)
	assert.Empty(t, asBuyer.Selling)

	asSeller, err := f.svc.ListForUser(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Empty(t, asSeller.Buying)
	assert.Len(t, asSeller.Selling, 1)
}

func placeOrder(t *testing.T, f *orderFixture, seller models.User) models.Order {
	t.Helper()
	book := f.books.put(availableBook(seller.ID, "Emma", 10))
	f.addToCart(t, book)
	orders, err := f.svc.CreateFromCart(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return orders[0]
}

func TestUpdateStatus_BuyerCanCancelPending(t *testing.T) {
	f := newOrderFixture(t)
	order := placeOrder(t, f, f.seller("UK"))

	updated, err := f.svc.UpdateStatus(context.Background(), f.buyer.ID, order.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)
	assert.Empty(t, f.notifier.events, "buyer-driven transitions do not notify")
}

func TestUpdateStatus_BuyerCannotConfirmOrShip(t *testing.T) {
	f := newOrderFixture(t)
	order := placeOrder(t, f, f.seller("UK"))

	for _, status := range []string{"Confirmed", "Shipped", "Delivered"} {
		_, err := f.svc.UpdateStatus(context.Background(), f.buyer.ID, order.ID, status)
		assertKind(t, err, apperr.KindBadRequest)
	}
}

func TestUpdateStatus_SellerLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	seller := f.seller("UK")
	order := placeOrder(t, f, seller)

	// Pending -> Shipped skips Confirmed and must be rejected
	_, err := f.svc.UpdateStatus(context.Background(), seller.ID, order.ID, "Shipped")
	assertKind(t, err, apperr.KindBadRequest)

	updated, err := f.svc.UpdateStatus(context.Background(), seller.ID, order.ID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, updated.Status)

	updated, err = f.svc.UpdateStatus(context.Background(), seller.ID, order.ID, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.Status)

	// terminal: nothing moves out of Shipped
	_, err = f.svc.UpdateStatus(context.Background(), seller.ID, order.ID, "Delivered")
	assertKind(t, err, apperr.KindBadRequest)
	_, err = f.svc.UpdateStatus(context.Background(), seller.ID, order.ID, "Cancelled")
	assertKind(t, err, apperr.KindBadRequest)

	assert.Equal(t, []models.OrderStatus{models.OrderConfirmed, models.OrderShipped}, f.notifier.events)
}

func TestUpdateStatus_RejectsNonParticipantAndBadInput(t *testing.T) {
	f := newOrderFixture(t)
	order := placeOrder(t, f, f.seller("UK"))

	stranger := f.users.put(models.User{Email: "stranger@example.com"})
	_, err := f.svc.UpdateStatus(context.Background(), stranger.ID, order.ID, "Cancelled")
	assertKind(t, err, apperr.KindBadRequest)

	_, err = f.svc.UpdateStatus(context.Background(), f.buyer.ID, order.ID, "Teleported")
	assertKind(t, err, apperr.KindBadRequest)

	_, err = f.svc.UpdateStatus(context.Background(), f.buyer.ID, primitive.NewObjectID(), "Cancelled")
	assertKind(t, err, apperr.KindNotFound)
}
