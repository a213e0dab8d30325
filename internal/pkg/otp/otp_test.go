package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_CodeValidates(t *testing.T) {
	g := NewGenerator("HRMS", 10*time.Minute)

	secret, err := g.NewSecret("jane@example.com")
	require.NoError(t, err)

	sentAt := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	code, err := g.Code(secret, sentAt)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	assert.True(t, g.Validate(code, secret, sentAt.Add(5*time.Minute)))
	assert.False(t, g.Validate("000000", secret, sentAt))
	assert.False(t, g.Validate(code, secret, sentAt.Add(time.Hour)))
}

func TestGenerator_SecretsDiffer(t *testing.T) {
	g := NewGenerator("HRMS", 10*time.Minute)

	a, err := g.NewSecret("a@example.com")
	require.NoError(t, err)
	b, err := g.NewSecret("b@example.com")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
