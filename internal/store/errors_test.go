package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrCardNotFound", err: ErrCardNotFound, expected: true},
		{name: "wrapped ErrDeckNotFound", err: fmt.Errorf("load deck: %w", ErrDeckNotFound), expected: true},
		{name: "store error wrapping not found", err: NewStoreError("card", "get", "missing", ErrCardNotFound), expected: true},
		{name: "duplicate", err: ErrDuplicate, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(ErrConflict))
	assert.True(t, IsTransient(fmt.Errorf("commit: %w", ErrUnavailable)))
	assert.True(t, IsTransient(NewStoreError("card", "update_schedule", "busy", ErrConflict)))
	assert.False(t, IsTransient(ErrCardNotFound))
	assert.False(t, IsTransient(ErrInvalidEntity))
	assert.False(t, IsTransient(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("%w: serialization failure", ErrConflict)
	err := NewStoreError("deck", "update_mastery", "failed to update deck", cause)

	assert.Equal(t, "update_mastery operation on deck failed: failed to update deck: write conflict: serialization failure", err.Error())
	assert.ErrorIs(t, err, ErrConflict)

	wrapped := fmt.Errorf("review: %w", err)
	se, ok := AsStoreError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "deck", se.Entity)

	bare := NewStoreError("card", "delete", "nothing to delete", nil)
	assert.Equal(t, "delete operation on card failed: nothing to delete", bare.Error())

	_, ok = AsStoreError(errors.New("plain"))
	assert.False(t, ok)
}

func TestDeckFilter(t *testing.T) {
	t.Parallel()

	assert.False(t, AllDecks().Valid)
	id := ForDeck([16]byte{1})
	assert.True(t, id.Valid)
	assert.Equal(t, byte(1), id.UUID[0])
}
