package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
)

func (a *API) getCart(c *gin.Context) {
	cart, purged, err := a.carts.Get(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart, "removedUnavailable": purged})
}

func (a *API) addToCart(c *gin.Context) {
	var in struct {
		BookID string `json:"bookId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}
	bookID, err := primitive.ObjectIDFromHex(in.BookID)
	if err != nil {
		fail(c, apperr.InvalidID(in.BookID))
		return
	}

	cart, err := a.carts.Add(c.Request.Context(), userID(c), bookID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cart": cart})
}

func (a *API) removeCartItem(c *gin.Context) {
	itemID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	cart, err := a.carts.RemoveItem(c.Request.Context(), userID(c), itemID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func (a *API) createPaymentIntent(c *gin.Context) {
	res, err := a.carts.CreatePaymentIntent(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if res.AlreadyPaid {
		c.JSON(http.StatusOK, gin.H{"message": "Cart already paid", "clientSecret": res.ClientSecret})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": res.ClientSecret})
}

func (a *API) confirmPayment(c *gin.Context) {
	var in struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	cart, err := a.carts.ConfirmPayment(c.Request.Context(), in.PaymentIntentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "cart": cart})
}
