// utils/valid.go
package utils

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination bounds
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidationMessage turns validator output into a single client message
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please enter a valid email"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}

// SanitizeEmail trims and lowercases an email address and checks its shape
func SanitizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}
	return email, nil
}

// ParseObjectID parses a hex id from a path or body parameter
func ParseObjectID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// ParsePagination reads page and limit query values. Absent values use the
// defaults; present values outside page >= 1 and 1 <= limit <= 100 are
// rejected rather than clamped. A page too large for an int saturates to
// math.MaxInt, which is always past the end.
func ParsePagination(pageStr, limitStr string) (page, limit int, err error) {
	page, limit = DefaultPage, DefaultLimit

	if pageStr != "" {
		page, err = strconv.Atoi(pageStr)
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(pageStr, "-") {
			page, err = math.MaxInt, nil
		}
		if err != nil || page < 1 {
			return 0, 0, errors.New("page must be an integer >= 1")
		}
	}
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, errors.New("limit must be an integer between 1 and 100")
		}
	}
	return page, limit, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
