package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a user's shipping location; the country drives the
// international shipping surcharge.
type Location struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role"`
	Location  *Location          `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Book is a single seller's listing of a physical copy.
type Book struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Author             string             `bson:"author" json:"author"`
	Publisher          string             `bson:"publisher" json:"publisher"`
	PublishedYear      int                `bson:"publishedYear" json:"publishedYear"`
	Pages              int                `bson:"pages" json:"pages"`
	ISBN10             string             `bson:"isbn10,omitempty" json:"isbn10,omitempty"`
	ISBN13             string             `bson:"isbn13,omitempty" json:"isbn13,omitempty"`
	Description        string             `bson:"description" json:"description"`
	Genre              []string           `bson:"genre" json:"genre"`
	AgeCategory        string             `bson:"ageCategory" json:"ageCategory"`
	Condition          string             `bson:"condition" json:"condition"`
	CoverType          string             `bson:"coverType" json:"coverType"`
	Language           string             `bson:"language" json:"language"`
	Price              float64            `bson:"price" json:"price"`
	IsAvailable        bool               `bson:"isAvailable" json:"isAvailable"`
	CoverImageURL      string             `bson:"coverImageUrl" json:"coverImageUrl"`
	CoverImagePublicID string             `bson:"coverImagePublicId,omitempty" json:"coverImagePublicId,omitempty"`
	CreatedBy          primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CartStatus string

const (
	CartPending CartStatus = "pending"
	CartPaid    CartStatus = "paid"
	CartFailed  CartStatus = "failed"
)

// CartItem is a denormalized snapshot of a listing taken at add time. The
// live availability is still checked against the books collection on reads.
type CartItem struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Book          primitive.ObjectID `bson:"book" json:"book"`
	Title         string             `bson:"title" json:"title"`
	Author        string             `bson:"author" json:"author"`
	CoverImageURL string             `bson:"coverImageUrl" json:"coverImageUrl"`
	Price         float64            `bson:"price" json:"price"`
	IsAvailable   bool               `bson:"isAvailable" json:"isAvailable"`
	AddedAt       time.Time          `bson:"addedAt" json:"addedAt"`
}

// Cart is a buyer's single in-progress selection. One cart per user,
// created lazily on the first add. Version guards read-modify-write cycles.
type Cart struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy       primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	OrderItems      []CartItem         `bson:"orderItems" json:"orderItems"`
	Tax             float64            `bson:"tax" json:"tax"`
	ShippingFee     float64            `bson:"shippingFee" json:"shippingFee"`
	Total           float64            `bson:"total" json:"total"`
	Status          CartStatus         `bson:"status" json:"status"`
	ClientSecret    string             `bson:"clientSecret" json:"clientSecret"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	Version         int64              `bson:"version" json:"-"`
	ExpiresAt       time.Time          `bson:"expiresAt" json:"expiresAt"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// BookSnapshot freezes the purchased listing's fields. The listing itself may
// later be edited or deleted; the order keeps what was bought.
type BookSnapshot struct {
	BookID    primitive.ObjectID `bson:"bookId" json:"bookId"`
	Title     string             `bson:"title" json:"title"`
	Author    string             `bson:"author" json:"author"`
	Condition string             `bson:"condition" json:"condition"`
}

type OrderItem struct {
	Book  BookSnapshot `bson:"book" json:"book"`
	Price float64      `bson:"price" json:"price"`
}

// Order is a finalized per-seller purchase split out of a paid cart.
// Orders are never deleted; cancellation is a terminal status.
type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber string             `bson:"orderNumber" json:"orderNumber"`
	Buyer       primitive.ObjectID `bson:"buyer" json:"buyer"`
	Seller      primitive.ObjectID `bson:"seller" json:"seller"`
	Items       []OrderItem        `bson:"items" json:"items"`
	Total       float64            `bson:"total" json:"total"`
	Tax         float64            `bson:"tax" json:"tax"`
	ShippingFee float64            `bson:"shippingFee" json:"shippingFee"`
	OrderAmount float64            `bson:"orderAmount" json:"orderAmount"`
	Status      OrderStatus        `bson:"status" json:"status"`
	OrderDate   time.Time          `bson:"orderDate" json:"orderDate"`
	DatePlaced  time.Time          `bson:"datePlaced" json:"datePlaced"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SavedBook is a wishlist entry keyed by ISBN, not by listing id: the same
// title can be offered by many sellers and the entry survives listing churn.
type SavedBook struct {
	ISBN10  string    `bson:"isbn10,omitempty" json:"isbn10,omitempty"`
	ISBN13  string    `bson:"isbn13,omitempty" json:"isbn13,omitempty"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
}

type SavedBooks struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Books     []SavedBook        `bson:"books" json:"books"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Chat struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants  []primitive.ObjectID `bson:"participants" json:"participants"`
	LastMessageAt time.Time            `bson:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
}

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Chat      primitive.ObjectID `bson:"chat" json:"chatId"`
	Sender    primitive.ObjectID `bson:"sender" json:"senderId"`
	Message   string             `bson:"message" json:"message"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
