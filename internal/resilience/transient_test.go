package resilience

import (
	"context"
	"net/http"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", eris.New("bad request"), false},
		{"transient error value", NewTransientError(eris.New("rate limited"), http.StatusTooManyRequests), true},
		{"transient through wrap", eris.Wrap(NewTransientError(eris.New("upstream"), http.StatusBadGateway), "jsearch: search"), true},
		{"connection reset", syscall.ECONNRESET, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"reset in message", eris.New("read tcp: connection reset by peer"), true},
		{"io timeout in message", eris.New("dial tcp: i/o timeout"), true},
		{"no such host", eris.New("lookup api.hunter.io: no such host"), true},
		{"context canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	transient := []int{
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
	for _, code := range transient {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusUnprocessableEntity} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := eris.New("boom")
	err := NewTransientError(inner, http.StatusServiceUnavailable)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "boom")
}
