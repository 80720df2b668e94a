package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, "INTERNAL_ERROR", http.StatusInternalServerError, "something failed")

	assert.Equal(t, "something failed: boom", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := Wrap(Clone(ErrNotFound, "course not found"), "OUTER", http.StatusBadGateway, "outer")
	got := FromError(wrapped)
	assert.Equal(t, "OUTER", got.Code)

	plain := FromError(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestCloneOverridesMessageOnly(t *testing.T) {
	clone := Clone(ErrConflict, "student is already enrolled in this course")
	assert.Equal(t, ErrConflict.Code, clone.Code)
	assert.Equal(t, ErrConflict.Status, clone.Status)
	assert.Equal(t, "student is already enrolled in this course", clone.Message)
	assert.Equal(t, "conflict", ErrConflict.Message, "the sentinel is untouched")
}
