package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
	"github.com/HSouheill/playerback_backend/repositories"
	"github.com/HSouheill/playerback_backend/utils"
)

type UserService struct {
	users  UserStore
	tokens TokenIssuer
}

func NewUserService(users UserStore, tokens TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

type RegisterInput struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Register creates a user and signs a token for it
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	username := strings.TrimSpace(in.Username)
	name := strings.TrimSpace(in.Name)
	if username == "" || name == "" || in.Email == "" || in.Password == "" {
		return nil, "", models.NewValidationError("All fields are required")
	}
	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		return nil, "", models.NewValidationError("Username must be between 3 and 30 characters")
	}
	if utf8.RuneCountInString(name) > 100 {
		return nil, "", models.NewValidationError("Name must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.Password) < 6 {
		return nil, "", models.NewValidationError("Password must be at least 6 characters")
	}
	email, err := utils.SanitizeEmail(in.Email)
	if err != nil {
		return nil, "", models.NewValidationError("Please enter a valid email")
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", models.NewConflictError("User with this email or username already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, "", models.NewConflictError("User with this email or username already exists")
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// Login checks credentials by email
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", models.NewValidationError("Email and password are required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, "", models.NewUnauthorizedError("Invalid credentials")
	}
	if err != nil {
		return nil, "", err
	}

	ok, err := utils.CheckPassword(user.Password, password)
	if err != nil || !ok {
		return nil, "", models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	return user, err
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewNotFoundError("User not found")
	}
	return user, err
}

type UpdateProfileInput struct {
	UserID primitive.ObjectID
	Name   *string
	Email  *string
}

// UpdateProfile changes name and email. Username and password are not
// editable here.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	set := bson.M{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || utf8.RuneCountInString(name) > 100 {
			return nil, models.NewValidationError("Name must be between 1 and 100 characters")
		}
		set["name"] = name
	}
	if in.Email != nil {
		email, err := utils.SanitizeEmail(*in.Email)
		if err != nil {
			return nil, models.NewValidationError("Please enter a valid email")
		}
		set["email"] = email
	}
	if len(set) == 0 {
		return s.GetByID(ctx, in.UserID)
	}

	user, err := s.users.Update(ctx, in.UserID, set)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return nil, models.NewNotFoundError("User not found")
	case errors.Is(err, repositories.ErrDuplicate):
		return nil, models.NewConflictError("Email is already in use")
	}
	return user, err
}

// DeleteProfile removes the user. Posts and comments are left in place.
func (s *UserService) DeleteProfile(ctx context.Context, id primitive.ObjectID) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.NewNotFoundError("User not found")
	}
	return err
}
