package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
)

// ErrorHandler is the central translator: handlers attach application errors
// with c.Error and this middleware maps them to the {type, msg, errors} body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.JSON(ae.StatusCode(), gin.H{"type": ae.Kind, "msg": ae.Msg, "errors": ae.Fields})
		return
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"type":   apperr.KindGeneral,
		"msg":    "Something went wrong, try again later.",
		"errors": nil,
	})
}

// fail records err for the ErrorHandler middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// AuthRequired verifies the bearer token and stores the caller's id on the
// context, the same way downstream handlers expect it.
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortWith(c, apperr.Unauthenticated("Authentication invalid"))
			return
		}

		claims, err := a.users.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.Set("userId", claims.UserID)
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}

// userID returns the authenticated caller's id set by AuthRequired.
func userID(c *gin.Context) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(c.GetString("userId"))
	return id
}

// objectIDParam parses a path parameter as an ObjectID; a malformed id gets
// the CastError body without touching the database.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := c.Param(name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		abortWith(c, apperr.InvalidID(raw))
		return primitive.NilObjectID, false
	}
	return id, true
}
