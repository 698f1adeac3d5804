package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingDropsOldestWhenFull(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []int{3, 4, 5}, r.Slice())
}

func TestRingBelowCapacity(t *testing.T) {
	r := newRing[string](0)
	assert.Empty(t, r.Slice())

	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"b"}, r.Slice())
}

func TestRingCloneIsIndependent(t *testing.T) {
	r := newRing[int](2)
	r.Push(1)
	r.Push(2)

	saved := r.clone()
	r.Push(3)

	assert.Equal(t, []int{2, 3}, r.Slice())
	assert.Equal(t, []int{1, 2}, saved.Slice())
}
