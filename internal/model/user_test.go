package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHasAttemptsLeft(t *testing.T) {
	assert.True(t, (&User{TestAttempts: 0, MaxTestAttempts: 1}).HasAttemptsLeft())
	assert.False(t, (&User{TestAttempts: 1, MaxTestAttempts: 1}).HasAttemptsLeft())
	assert.False(t, (&User{TestAttempts: 3, MaxTestAttempts: 3}).HasAttemptsLeft())

	// The unlimited sentinel never runs out.
	unlimited := &User{TestAttempts: 9999, MaxTestAttempts: UnlimitedAttempts}
	assert.True(t, unlimited.HasAttemptsLeft())
}

func TestIsAllowedDirection(t *testing.T) {
	granted := uuid.New()
	u := &User{AllowedDirections: []uuid.UUID{granted}}

	assert.True(t, u.IsAllowedDirection(granted))
	assert.False(t, u.IsAllowedDirection(uuid.New()))
	assert.False(t, (&User{}).IsAllowedDirection(granted))
}
