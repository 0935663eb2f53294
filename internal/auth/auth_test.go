package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateMembership(t *testing.T) {
	gate := NewGate([]string{"123", "456"}, []string{"456"})

	assert.True(t, gate.IsUser(123))
	assert.True(t, gate.IsUser(456))
	assert.False(t, gate.IsUser(789))

	assert.True(t, gate.IsAdmin(456))
	assert.False(t, gate.IsAdmin(123))
}

func TestGateWildcard(t *testing.T) {
	gate := NewGate([]string{"*"}, []string{"99"})

	assert.True(t, gate.IsUser(1))
	assert.True(t, gate.IsUser(424242))
	assert.False(t, gate.IsAdmin(1))
	assert.True(t, gate.IsAdmin(99))

	admins := NewGate([]string{"1"}, []string{"*"})
	assert.True(t, admins.IsAdmin(7))
}

func TestGateEmptyLists(t *testing.T) {
	gate := NewGate(nil, nil)

	assert.False(t, gate.IsUser(1))
	assert.False(t, gate.IsAdmin(1))
}
