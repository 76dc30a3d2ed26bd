package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_MapToSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
		status   int
	}{
		{"not found", NotFound("product", "p1"), ErrNotFound, http.StatusNotFound},
		{"conflict", Conflict("already exists"), ErrConflict, http.StatusConflict},
		{"invalid input", InvalidInput("bad quantity"), ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("sign in first"), ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), ErrForbidden, http.StatusForbidden},
		{"session expired", SessionExpired("refresh rejected"), ErrSessionExpired, http.StatusUnauthorized},
		{"mutation in flight", MutationInFlight("busy"), ErrMutationInFlight, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.status, tt.err.Status)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNotFound_IncludesResourceAndID(t *testing.T) {
	err := NotFound("review", "r42")
	assert.Contains(t, err.Message, "review")
	assert.Contains(t, err.Message, "r42")
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestWrap_PreservesSentinel(t *testing.T) {
	err := Wrap(NotFound("cart line", "p1"), "updating cart line")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "updating cart line")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error carries status", SessionExpired("gone"), http.StatusUnauthorized},
		{"wrapped app error", Wrap(Conflict("exists"), "creating cart"), http.StatusConflict},
		{"bare sentinel", ErrInvalidInput, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("fetching: %w", ErrNotFound), http.StatusNotFound},
		{"mutation guard", ErrMutationInFlight, http.StatusConflict},
		{"service unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
