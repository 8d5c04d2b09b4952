package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebooks-backend/internal/apperr"
)

func (a *API) listOrders(c *gin.Context) {
	orders, err := a.orders.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (a *API) createOrders(c *gin.Context) {
	orders, err := a.orders.CreateFromCart(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Orders created successfully", "orders": orders})
}

func (a *API) getOrder(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	order, err := a.orders.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (a *API) updateOrderStatus(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	order, err := a.orders.UpdateStatus(c.Request.Context(), userID(c), id, in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}
