package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"not found", NewNotFoundError("Post not found"), http.StatusNotFound},
		{"bare not found", fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{"conflict", NewConflictError("taken"), http.StatusConflict},
		{"unauthorized", NewUnauthorizedError("no"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("no"), http.StatusForbidden},
		{"internal", NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("socket closed"), http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("ctx: %w", NewValidationError("bad")), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("dial tcp 10.0.0.3:27017")))
	assert.Equal(t, "Internal server error", PublicMessage(NewInternalError(errors.New("boom"))))
	assert.Equal(t, "Title is required", PublicMessage(NewValidationError("Title is required")))
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	assert.ErrorIs(t, NewNotFoundError("Comment not found"), ErrNotFound)
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		total, wantPages int64
		limit            int
	}{
		{0, 0, 10},
		{1, 1, 10},
		{10, 1, 10},
		{11, 2, 10},
		{250, 3, 100},
	}
	for _, tt := range tests {
		info := NewPageInfo(1, tt.limit, tt.total)
		assert.Equal(t, tt.wantPages, info.TotalPages, "total=%d limit=%d", tt.total, tt.limit)
	}
}
