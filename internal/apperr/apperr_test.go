package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading requester: %w", ErrUserNotFound)

	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.True(t, errors.Is(wrapped, ErrUserNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(Internal, "failed to save", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save: connection reset", err.Error())
	assert.False(t, errors.Is(err, E(Internal, "failed to save")))
}

func TestStatusAndMessage(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, Forbidden.Status())
	assert.Equal(t, http.StatusConflict, Conflict.Status())
	assert.Equal(t, "User not found", Message(ErrUserNotFound))
	assert.Equal(t, "Internal server error", Message(errors.New("pq: relation does not exist")))
}
