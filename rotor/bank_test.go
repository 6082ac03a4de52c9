package rotor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectActiveValid(t *testing.T) {
	active, err := SelectActive("some key phrase", 5, 3)
	require.NoError(t, err)
	require.Len(t, active, 3)

	seen := make(map[int]bool)
	for _, idx := range active {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 5)
		assert.False(t, seen[idx])
		seen[idx] = true
	}
}

func TestSelectActiveDeterministic(t *testing.T) {
	a, err := SelectActive("some key phrase", 9, 4)
	require.NoError(t, err)
	b, err := SelectActive("some key phrase", 9, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelectActiveRejectsBadCounts(t *testing.T) {
	_, err := SelectActive("key", 0, 1)
	assert.Error(t, err)
	_, err = SelectActive("key", 3, 0)
	assert.Error(t, err)
	_, err = SelectActive("key", 3, 4)
	assert.Error(t, err)
}

func TestNewBankValidation(t *testing.T) {
	tbl := testTable(t, 5)
	cubes := make([]*Cube, 3)
	for i := range cubes {
		var err error
		cubes[i], err = Build("key", i, tbl, 5)
		require.NoError(t, err)
	}

	_, err := NewBank(cubes, []int{1, 1})
	assert.Error(t, err)
	_, err = NewBank(cubes, []int{3})
	assert.Error(t, err)
	_, err = NewBank(cubes, nil)
	assert.Error(t, err)

	b, err := NewBank(cubes, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, b.ActiveIndices())
}

func TestCloneActiveIsolation(t *testing.T) {
	tbl := testTable(t, 5)
	c, err := Build("key", 0, tbl, 5)
	require.NoError(t, err)
	b, err := NewBank([]*Cube{c}, []int{0})
	require.NoError(t, err)

	one := b.CloneActive()
	two := b.CloneActive()
	one[0].RotateSlice(AxisZ, 1, true)
	assert.NotEqual(t, one[0].grid, two[0].grid)
	assert.Equal(t, c.grid, two[0].grid)
}
