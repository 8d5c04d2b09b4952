package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/mailer"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/repository"
)

const (
	tokenTTL      = 24 * time.Hour
	resetTokenTTL = time.Hour
)

// Claims is the JWT payload issued on login and password-reset requests.
type Claims struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName,omitempty"`
	jwt.StandardClaims
}

type UserService struct {
	users       repository.UserRepo
	mail        mailer.Sender
	jwtSecret   []byte
	frontendURL string
}

func NewUserService(users repository.UserRepo, mail mailer.Sender, jwtSecret []byte, frontendURL string) *UserService {
	return &UserService{users: users, mail: mail, jwtSecret: jwtSecret, frontendURL: frontendURL}
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (in RegisterInput) validate() error {
	fields := map[string]string{}
	if l := len(in.FirstName); l < 2 || l > 50 {
		fields["firstName"] = "First name must be between 2 and 50 characters"
	}
	if l := len(in.LastName); l < 2 || l > 50 {
		fields["lastName"] = "Last name must be between 2 and 50 characters"
	}
	if !models.ValidEmail(in.Email) {
		fields["email"] = "Please provide a valid email"
	}
	if len(in.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hash),
		Role:      "user",
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperr.Duplicate(map[string]string{
				"email": "Duplicate value entered for email. Please choose another value.",
			})
		}
		return nil, "", err
	}

	token, err := s.issueToken(user, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.BadRequest("Please provide email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apperr.Unauthenticated("Invalid Credentials")
	}

	token, err := s.issueToken(user, tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Update(ctx context.Context, id primitive.ObjectID, upd repository.UserUpdate) (*models.User, error) {
	if upd.FirstName == nil && upd.LastName == nil && upd.Location == nil {
		return nil, apperr.BadRequest("No valid fields to update")
	}
	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// ForgotPassword emails a one-hour reset link to the account holder.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperr.BadRequest("Please provide an email")
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.BadRequest("User with this email does not exist")
	}

	token, err := s.issueToken(user, resetTokenTTL)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/password/reset?token=%s", s.frontendURL, token)
	body := fmt.Sprintf(`<h3>Password Reset Request</h3>
<p>You are receiving this email because you (or someone else) have requested the reset of a password.</p>
<p>If you did not request this, please ignore this email.</p>
<p>Please click the link below to reset your password. This link is valid for 1 hour:</p>
<a href="%s">Reset Password</a>`, resetLink)

	return s.mail.Send(user.Email, "Password Reset Request", body)
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.ParseToken(token)
	if err != nil {
		return apperr.Unauthenticated("Invalid or expired reset token")
	}
	if len(newPassword) < 6 {
		return apperr.Validation(map[string]string{"password": "Password must be at least 6 characters"})
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return apperr.Unauthenticated("Invalid or expired reset token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, id, string(hash))
}

func (s *UserService) issueToken(user *models.User, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    user.ID.Hex(),
		FirstName: user.FirstName,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseToken validates a bearer token and returns its claims.
func (s *UserService) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperr.Unauthenticated("Token has expired. Please log in again.")
		}
		return nil, apperr.Unauthenticated("Authentication invalid")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperr.Unauthenticated("Authentication invalid")
	}
	return claims, nil
}
