// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/playerback_backend/models"
)

// Context keys set by the auth middlewares
const (
	ContextClaims = "claims"
	ContextToken  = "token"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.StandardClaims
}

var (
	errNoToken       = errors.New("Access denied. No token provided.")
	errNotBearer     = errors.New("Access denied. Token is not in Bearer format.")
	errInvalidToken  = errors.New("Access denied. Invalid token.")
	errRevokedToken  = errors.New("Access denied. Token has been revoked.")
	errInvalidUserID = errors.New("Access denied. Invalid user in token.")
)

// Authenticator issues and verifies bearer tokens
type Authenticator struct {
	secret    []byte
	ttl       time.Duration
	blacklist TokenBlacklist
}

func NewAuthenticator(secret string, ttl time.Duration, blacklist TokenBlacklist) *Authenticator {
	if blacklist == nil {
		blacklist = NewMemoryBlacklist()
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, blacklist: blacklist}
}

// GenerateJWT signs a token carrying userId and username
func (a *Authenticator) GenerateJWT(userID primitive.ObjectID, username string) (string, error) {
	now := time.Now()
	claims := &JwtCustomClaims{
		UserID:   userID.Hex(),
		Username: username,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(a.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// RequireAuth rejects requests without a header (401) and with an invalid,
// expired or revoked token (403)
func (a *Authenticator) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: err.Error(),
				})
			}

			claims, err := a.verify(c, raw)
			if err != nil {
				c.Logger().Infof("JWT middleware - Path: %s, rejected: %v", c.Request().URL.Path, err)
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: err.Error(),
				})
			}

			c.Set(ContextClaims, claims)
			c.Set(ContextToken, raw)
			return next(c)
		}
	}
}

// OptionalAuth decodes a token when one is presented. A missing or unusable
// token leaves the request anonymous.
func (a *Authenticator) OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			raw, err := bearerToken(header)
			if err != nil {
				return next(c)
			}
			if claims, err := a.verify(c, raw); err == nil {
				c.Set(ContextClaims, claims)
				c.Set(ContextToken, raw)
			}
			return next(c)
		}
	}
}

// Revoke blacklists the token presented on this request until it expires
func (a *Authenticator) Revoke(c echo.Context) error {
	raw, _ := c.Get(ContextToken).(string)
	claims := GetUserFromToken(c)
	if raw == "" || claims == nil {
		return nil
	}
	return a.blacklist.Add(c.Request().Context(), raw, time.Unix(claims.ExpiresAt, 0))
}

func (a *Authenticator) verify(c echo.Context, raw string) (*JwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil, errInvalidToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, errInvalidUserID
	}

	revoked, err := a.blacklist.Contains(c.Request().Context(), raw)
	if err != nil {
		// Blacklist outage does not lock every user out
		c.Logger().Errorf("token blacklist lookup failed: %v", err)
	}
	if revoked {
		return nil, errRevokedToken
	}
	return claims, nil
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errNotBearer
	}
	return parts[1], nil
}

// GetUserFromToken returns the verified claims, or nil for anonymous requests
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	claims, _ := c.Get(ContextClaims).(*JwtCustomClaims)
	return claims
}

// GetUserIDFromToken returns the caller's id and whether the request is authenticated
func GetUserIDFromToken(c echo.Context) (primitive.ObjectID, bool) {
	claims := GetUserFromToken(c)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
