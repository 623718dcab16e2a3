// controllers/user_controller.go
package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/services"
)

// UserManager is the account logic behind the user routes
type UserManager interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, in services.UpdateProfileInput) (*models.User, error)
	DeleteProfile(ctx context.Context, id primitive.ObjectID) error
}

// TokenRevoker blacklists the token presented on a request
type TokenRevoker interface {
	Revoke(c echo.Context) error
}

// UserController contains user account handlers
type UserController struct {
	users   UserManager
	revoker TokenRevoker
}

// NewUserController creates a new user controller
func NewUserController(users UserManager, revoker TokenRevoker) *UserController {
	return &UserController{users: users, revoker: revoker}
}

// Register handler creates an account and returns it with a token
func (uc *UserController) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, token, err := uc.users.Register(c.Request().Context(), services.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User created successfully",
		User:    user,
		Token:   token,
	})
}

// Login handler authenticates by email and password
func (uc *UserController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, token, err := uc.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// Logout handler revokes the presented token
func (uc *UserController) Logout(c echo.Context) error {
	if err := uc.revoker.Revoke(c); err != nil {
		return respondError(c, err)
	}
	return respondMessage(c, http.StatusOK, "Logged out successfully")
}

// GetProfile handler gets the current user's profile
func (uc *UserController) GetProfile(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := uc.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.UserResponse{User: user})
}

// GetUserByUsername handler returns a public profile
func (uc *UserController) GetUserByUsername(c echo.Context) error {
	user, err := uc.users.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, models.UserResponse{User: user})
}

// UpdateProfile handler changes the caller's name or email
func (uc *UserController) UpdateProfile(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := uc.users.UpdateProfile(c.Request().Context(), services.UpdateProfileInput{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.UserResponse{
		Message: "Profile updated successfully",
		User:    user,
	})
}

// DeleteProfile handler deletes the caller's account and revokes its token
func (uc *UserController) DeleteProfile(c echo.Context) error {
	userID, err := caller(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := uc.users.DeleteProfile(c.Request().Context(), userID); err != nil {
		return respondError(c, err)
	}
	if err := uc.revoker.Revoke(c); err != nil {
		c.Logger().Warnf("token revoke after profile delete failed: %v", err)
	}
	return respondMessage(c, http.StatusOK, "Profile deleted successfully")
}
