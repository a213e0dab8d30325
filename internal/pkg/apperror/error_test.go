package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	conflict := Conflict("already checked in")

	assert.Equal(t, KindConflict, KindOf(conflict))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("check in: %w", conflict)))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Balance("insufficient leave balance"))

	assert.True(t, Is(err, KindBalance))
	assert.False(t, Is(err, KindValidation))
	assert.Equal(t, "wrapped: insufficient leave balance", err.Error())
}
