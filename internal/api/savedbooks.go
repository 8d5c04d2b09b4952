package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebooks-backend/internal/apperr"
)

type savedBookBody struct {
	ISBN10 string `json:"isbn10"`
	ISBN13 string `json:"isbn13"`
}

func (a *API) addSavedBook(c *gin.Context) {
	var in savedBookBody
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	saved, err := a.saved.Add(c.Request.Context(), userID(c), in.ISBN10, in.ISBN13)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Book added successfully", "savedBooks": saved})
}

func (a *API) listSavedBooks(c *gin.Context) {
	views, err := a.saved.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"savedBooks": views})
}

func (a *API) removeSavedBook(c *gin.Context) {
	var in savedBookBody
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	saved, err := a.saved.Remove(c.Request.Context(), userID(c), in.ISBN10, in.ISBN13)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Book removed successfully", "savedBooks": saved})
}
