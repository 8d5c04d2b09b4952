package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/repository"
	"rebooks-backend/internal/services"
)

func (a *API) register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	user, token, err := a.users.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (a *API) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	user, token, err := a.users.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
		},
		"token": token,
	})
}

// logout is stateless: tokens expire on their own and the client drops its copy.
func (a *API) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (a *API) updateUser(c *gin.Context) {
	var in struct {
		FirstName *string          `json:"firstName"`
		LastName  *string          `json:"lastName"`
		Location  *models.Location `json:"location"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := a.users.Update(c.Request.Context(), userID(c), repository.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Location:  in.Location,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) forgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	if err := a.users.ForgotPassword(c.Request.Context(), in.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Reset link sent to email"})
}

func (a *API) resetPassword(c *gin.Context) {
	var in struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, apperr.BadRequest("Invalid request body"))
		return
	}

	if err := a.users.ResetPassword(c.Request.Context(), in.Token, in.Password); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Password has been reset"})
}
