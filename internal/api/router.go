package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rebooks-backend/internal/chat"
	"rebooks-backend/internal/services"
)

// API holds the service dependencies behind the HTTP surface.
type API struct {
	users  *services.UserService
	books  *services.BookService
	carts  *services.CartService
	orders *services.OrderService
	saved  *services.SavedBooksService
	chats  *services.ChatService
	hub    *chat.Hub
}

func New(users *services.UserService, books *services.BookService, carts *services.CartService,
	orders *services.OrderService, saved *services.SavedBooksService, chats *services.ChatService, hub *chat.Hub) *API {
	return &API{
		users:  users,
		books:  books,
		carts:  carts,
		orders: orders,
		saved:  saved,
		chats:  chats,
		hub:    hub,
	}
}

// SetupRoutes mounts the /api/v1 surface and the realtime endpoint.
func (a *API) SetupRoutes(r *gin.Engine, corsOrigin string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := r.Group("/api/v1")
	v1.Use(ErrorHandler())

	// auth
	v1.POST("/register", a.register)
	v1.POST("/login", a.login)
	v1.POST("/logout", a.logout)
	v1.POST("/forgot-password", a.forgotPassword)
	v1.POST("/password-reset", a.resetPassword)

	// public catalog
	v1.GET("/books", a.listBooks)
	v1.GET("/books/:id", a.getBook)

	auth := v1.Group("", a.AuthRequired())
	{
		auth.PATCH("/update", a.updateUser)

		auth.POST("/books", a.createBook)
		auth.POST("/books/cover-image", a.uploadBookCover)
		auth.PATCH("/books/:id", a.updateBook)
		auth.DELETE("/books/:id", a.deleteBook)

		auth.GET("/cart", a.getCart)
		auth.POST("/cart", a.addToCart)
		auth.DELETE("/cart/:id", a.removeCartItem)
		auth.POST("/cart/create-payment-intent", a.createPaymentIntent)
		auth.POST("/cart/confirm-payment", a.confirmPayment)

		auth.GET("/orders", a.listOrders)
		auth.POST("/orders", a.createOrders)
		auth.GET("/orders/:id", a.getOrder)
		auth.PATCH("/orders/:id", a.updateOrderStatus)

		auth.POST("/saved-books", a.addSavedBook)
		auth.GET("/saved-books", a.listSavedBooks)
		auth.DELETE("/saved-books", a.removeSavedBook)

		auth.POST("/chats", a.createChat)
		auth.GET("/chats", a.listChats)
		auth.GET("/chats/:id", a.getChat)
	}

	// websocket auth goes through a query token since browsers cannot set
	// headers on the upgrade request
	r.GET("/ws", a.serveWS)
}
