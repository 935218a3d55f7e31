package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(NotFound, "No such user")
	wrapped := fmt.Errorf("error getting user: %w", err)

	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, NotFound, KindOf(wrapped))
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, "No such user", Message(wrapped))
}

func TestMessageHidesInternalErrors(t *testing.T) {
	err := fmt.Errorf("error listing users: %w", errors.New("pq: connection refused"))
	assert.Equal(t, "Internal server error", Message(err))
}

func TestIsMatchesKindSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(Conflict, "This book is already in library"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, New(Conflict, "This book is already in library")))
	assert.False(t, errors.Is(err, New(Conflict, "This book is already in wishlist")))
}
