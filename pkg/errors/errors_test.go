package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("list users: %w", Store(errors.New("connection refused"), "failed to list users"))

	assert.True(t, errors.Is(err, ErrStore))
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, "STORE_ERROR", FromError(err).Code)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, ErrInternal.Status, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsCode(t *testing.T) {
	clone := Clone(ErrValidation, "bad date")

	assert.Equal(t, "bad date", clone.Message)
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}
