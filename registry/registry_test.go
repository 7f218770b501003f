package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsEmptyNameAndDuplicates(t *testing.T) {
	r := NewBaseRegistry[int]()

	assert.Error(t, r.Register("", 1))
	require.NoError(t, r.Register("a", 1))
	assert.Error(t, r.Register("a", 2))
}

func TestGetAndList(t *testing.T) {
	r := NewBaseRegistry[string]()
	require.NoError(t, r.Register("a", "alpha"))
	require.NoError(t, r.Register("b", "beta"))

	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", v)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, r.List())
	assert.Equal(t, 2, r.Count())
}

func TestRemoveUnknownItemReturnsError(t *testing.T) {
	r := NewBaseRegistry[int]()
	assert.Error(t, r.Remove("missing"))

	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Remove("a"))
	assert.Equal(t, 0, r.Count())
}

func TestClearEmptiesRegistry(t *testing.T) {
	r := NewBaseRegistry[int]()
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Register("b", 2))

	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.List())
}
