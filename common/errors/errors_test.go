package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/Aidin1998/todolist/common/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := errors.NotFound.Explain("list %q not found", "Groceries")

	assert.True(t, errors.Is(err, errors.NotFound))
	assert.False(t, errors.Is(err, errors.Conflict))
	assert.Contains(t, err.Error(), `list "Groceries" not found`)
}

func TestWrapDoesNotMutateSentinel(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := errors.Conflict.Wrap(cause)

	assert.True(t, errors.Is(wrapped, cause))
	assert.True(t, errors.Is(wrapped, errors.Conflict))
	assert.NotContains(t, errors.Conflict.Error(), "boom")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errors.NotFound.Explain("x"), http.StatusNotFound},
		{"invalid", errors.Invalid, http.StatusBadRequest},
		{"conflict wrapped", errors.Conflict.Wrap(stderrors.New("dup")), http.StatusConflict},
		{"unavailable", errors.Unavailable, http.StatusServiceUnavailable},
		{"internal", errors.Internal.Explain("decoding list"), http.StatusInternalServerError},
		{"plain", stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.HTTPStatus(tt.err))
		})
	}
}
