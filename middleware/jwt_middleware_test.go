package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, c, called
}

func TestRequireAuth(t *testing.T) {
	auth := NewAuthenticator("secret", time.Hour, nil)
	userID := primitive.NewObjectID()
	token, err := auth.GenerateJWT(userID, "player1")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{
		UserID:         userID.Hex(),
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	otherKey, err := NewAuthenticator("other", time.Hour, nil).GenerateJWT(userID, "player1")
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"bearer without token", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusForbidden},
		{"expired", "Bearer " + expiredToken, http.StatusForbidden},
		{"wrong key", "Bearer " + otherKey, http.StatusForbidden},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, c, called := runMiddleware(t, auth.RequireAuth(), tc.header)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.status == http.StatusOK, called)
			if called {
				id, ok := GetUserIDFromToken(c)
				assert.True(t, ok)
				assert.Equal(t, userID, id)
				assert.Equal(t, "player1", GetUserFromToken(c).Username)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := NewAuthenticator("secret", time.Hour, nil)
	userID := primitive.NewObjectID()
	token, err := auth.GenerateJWT(userID, "player1")
	require.NoError(t, err)

	_, c, called := runMiddleware(t, auth.OptionalAuth(), "")
	assert.True(t, called)
	_, ok := GetUserIDFromToken(c)
	assert.False(t, ok)

	_, c, called = runMiddleware(t, auth.OptionalAuth(), "Bearer broken")
	assert.True(t, called)
	assert.Nil(t, GetUserFromToken(c))

	_, c, called = runMiddleware(t, auth.OptionalAuth(), "Bearer "+token)
	assert.True(t, called)
	id, ok := GetUserIDFromToken(c)
	assert.True(t, ok)
	assert.Equal(t, userID, id)
}

func TestRevokedTokenRejected(t *testing.T) {
	auth := NewAuthenticator("secret", time.Hour, NewMemoryBlacklist())
	token, err := auth.GenerateJWT(primitive.NewObjectID(), "player1")
	require.NoError(t, err)

	_, c, called := runMiddleware(t, auth.RequireAuth(), "Bearer "+token)
	require.True(t, called)
	require.NoError(t, auth.Revoke(c))

	rec, _, called := runMiddleware(t, auth.RequireAuth(), "Bearer "+token)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
