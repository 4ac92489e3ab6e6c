package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, id.IsEmpty())
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestParseSessionID(t *testing.T) {
	id := NewSessionID()

	parsed, err := ParseSessionID("  " + id.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseSessionID("")
	assert.Error(t, err)

	_, err = ParseSessionID("not-a-uuid")
	assert.Error(t, err)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsPreconditionError(NewInsufficientDataError(1, 2)))
	assert.True(t, IsPreconditionError(NewLengthMismatchError(3, 4)))
	assert.True(t, IsPreconditionError(ErrNonNumericAttribute))
	assert.True(t, errors.Is(NewLengthMismatchError(3, 4), ErrLengthMismatch))

	assert.True(t, IsDataError(NewInvalidRecordError("7", "duplicate id")))
	assert.False(t, IsPreconditionError(NewInvalidRecordError("7", "duplicate id")))

	assert.True(t, IsLoadError(NewLoadError(errors.New("boom"))))
	assert.True(t, IsLoadError(ErrNotLoaded))
}
