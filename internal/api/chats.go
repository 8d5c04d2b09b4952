package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
)

func (a *API) createChat(c *gin.Context) {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}
	other, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		fail(c, apperr.BadRequest("User ID of the other participant must be provided"))
		return
	}

	chat, err := a.chats.CreateOrGet(c.Request.Context(), userID(c), other)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Chat created successfully", "chat": chat})
}

func (a *API) listChats(c *gin.Context) {
	chats, err := a.chats.ListForUser(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (a *API) getChat(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	chat, messages, err := a.chats.GetWithMessages(c.Request.Context(), userID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat, "messages": messages})
}

// serveWS authenticates the upgrade request by query token and hands the
// connection to the hub.
func (a *API) serveWS(c *gin.Context) {
	claims, err := a.users.ParseToken(c.Query("token"))
	if err != nil {
		abortWith(c, err)
		return
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		abortWith(c, apperr.Unauthenticated("Authentication invalid"))
		return
	}
	a.hub.Serve(c.Writer, c.Request, uid)
}
