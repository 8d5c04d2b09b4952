package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/models"
	"rebooks-backend/internal/payment"
	"rebooks-backend/internal/repository"
)

// In-memory repository doubles. They copy documents on the way in and out so
// service-side mutations only become visible through an explicit write, the
// same way the real store behaves.

type fakeBookRepo struct {
	books map[primitive.ObjectID]models.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: map[primitive.ObjectID]models.Book{}}
}

func (r *fakeBookRepo) put(b models.Book) models.Book {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	r.books[b.ID] = b
	return b
}

func (r *fakeBookRepo) Create(_ context.Context, book *models.Book) error {
	*book = r.put(*book)
	return nil
}

func (r *fakeBookRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	cp := b
	return &cp, nil
}

func (r *fakeBookRepo) Search(_ context.Context, q repository.BookQuery) ([]models.Book, error) {
	var out []models.Book
	for _, b := range r.books {
		if q.IsAvailable != nil && b.IsAvailable != *q.IsAvailable {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBookRepo) FindByISBN(_ context.Context, isbn10, isbn13 string) ([]models.Book, error) {
	var out []models.Book
	for _, b := range r.books {
		if (isbn10 != "" && b.ISBN10 == isbn10) || (isbn13 != "" && b.ISBN13 == isbn13) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookRepo) Update(_ context.Context, book *models.Book) error {
	r.books[book.ID] = *book
	return nil
}

func (r *fakeBookRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) SetAvailability(_ context.Context, ids []primitive.ObjectID, available bool) error {
	for _, id := range ids {
		if b, ok := r.books[id]; ok {
			b.IsAvailable = available
			r.books[id] = b
		}
	}
	return nil
}

type fakeCartRepo struct {
	byOwner map[primitive.ObjectID]models.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{byOwner: map[primitive.ObjectID]models.Cart{}}
}

func cloneCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.OrderItems))
	copy(items, c.OrderItems)
	c.OrderItems = items
	return c
}

func (r *fakeCartRepo) FindByOwner(_ context.Context, owner primitive.ObjectID) (*models.Cart, error) {
	c, ok := r.byOwner[owner]
	if !ok {
		return nil, nil
	}
	cp := cloneCart(c)
	return &cp, nil
}

func (r *fakeCartRepo) FindByIntent(_ context.Context, intentID string) (*models.Cart, error) {
	for _, c := range r.byOwner {
		if c.PaymentIntentID == intentID {
			cp := cloneCart(c)
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCartRepo) Create(_ context.Context, cart *models.Cart) error {
	if _, ok := r.byOwner[cart.CreatedBy]; ok {
		return repository.ErrDuplicate
	}
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	r.byOwner[cart.CreatedBy] = cloneCart(*cart)
	return nil
}

func (r *fakeCartRepo) Update(_ context.Context, cart *models.Cart) error {
	stored, ok := r.byOwner[cart.CreatedBy]
	if !ok || stored.Version != cart.Version {
		return repository.ErrVersionConflict
	}
	cart.Version++
	r.byOwner[cart.CreatedBy] = cloneCart(*cart)
	return nil
}

func (r *fakeCartRepo) SetStatusByIntent(_ context.Context, intentID string, status models.CartStatus) (*models.Cart, error) {
	for owner, c := range r.byOwner {
		if c.PaymentIntentID == intentID {
			c.Status = status
			c.Version++
			r.byOwner[owner] = c
			cp := cloneCart(c)
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeOrderRepo struct {
	orders map[primitive.ObjectID]models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[primitive.ObjectID]models.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByBuyer(_ context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.Buyer == buyer {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindBySeller(_ context.Context, seller primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.Seller == seller {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.Status = status
	r.orders[id] = o
	cp := o
	return &cp, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]models.User{}}
}

func (r *fakeUserRepo) put(u models.User) models.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	*user = r.put(*user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, upd repository.UserUpdate) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Location != nil {
		u.Location = upd.Location
	}
	r.users[id] = u
	cp := u
	return &cp, nil
}

func (r *fakeUserRepo) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	u.Password = hash
	r.users[id] = u
	return nil
}

type fakeSavedBooksRepo struct {
	byUser map[primitive.ObjectID]models.SavedBooks
}

func newFakeSavedBooksRepo() *fakeSavedBooksRepo {
	return &fakeSavedBooksRepo{byUser: map[primitive.ObjectID]models.SavedBooks{}}
}

func (r *fakeSavedBooksRepo) FindByUser(_ context.Context, user primitive.ObjectID) (*models.SavedBooks, error) {
	s, ok := r.byUser[user]
	if !ok {
		return nil, nil
	}
	cp := s
	cp.Books = append([]models.SavedBook(nil), s.Books...)
	return &cp, nil
}

func (r *fakeSavedBooksRepo) Save(_ context.Context, saved *models.SavedBooks) error {
	if saved.ID.IsZero() {
		saved.ID = primitive.NewObjectID()
	}
	cp := *saved
	cp.Books = append([]models.SavedBook(nil), saved.Books...)
	r.byUser[saved.User] = cp
	return nil
}

// fakeTxRunner runs the callback without transactional semantics; the
// services only care that everything happens through the given context.
type fakeTxRunner struct{ calls int }

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

// fakeGateway is a scriptable payment gateway double.
type fakeGateway struct {
	created  int
	statuses map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]string{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amountMinor int64, currency string) (payment.Intent, error) {
	g.created++
	id := fmt.Sprintf("pi_%d", g.created)
	if _, ok := g.statuses[id]; !ok {
		g.statuses[id] = "requires_payment_method"
	}
	return payment.Intent{ID: id, ClientSecret: id + "_secret", Status: g.statuses[id]}, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (payment.Intent, error) {
	status, ok := g.statuses[id]
	if !ok {
		return payment.Intent{}, fmt.Errorf("no such intent %q", id)
	}
	return payment.Intent{ID: id, ClientSecret: id + "_secret", Status: status}, nil
}

type fakeNotifier struct {
	events []models.OrderStatus
}

func (n *fakeNotifier) OrderStatusChanged(_ context.Context, order *models.Order, _, _ *models.User) {
	n.events = append(n.events, order.Status)
}

func availableBook(seller primitive.ObjectID, title string, price float64) models.Book {
	return models.Book{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Author:      "Some Author",
		Condition:   "Good",
		Price:       price,
		IsAvailable: true,
		CreatedBy:   seller,
		CreatedAt:   time.Now(),
	}
}
