package dualpq

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueLeftIsMinHeap(t *testing.T) {
	q := New(8, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	for _, v := range []int{5, 3, 8, 1, 9, 2, 7, 4} {
		q.PushLeft(v)
	}
	require.True(t, q.Full())

	var out []int
	for {
		v, ok := q.PopLeft()
		if !ok {
			break
		}
		out = append(out, v)
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 7, 8, 9}, out)
}

func TestQueueRightIsMaxHeap(t *testing.T) {
	q := New(8, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	for _, v := range []int{5, 3, 8, 1, 9, 2, 7, 4} {
		q.PushRight(v)
	}

	var out []int
	for {
		v, ok := q.PopRight()
		if !ok {
			break
		}
		out = append(out, v)
	}
	require.Equal(t, []int{9, 8, 7, 5, 4, 3, 2, 1}, out)
}

func TestQueueSharesBackingArrayFromOppositeEnds(t *testing.T) {
	q := New(12, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	for i := 0; i < 4; i++ {
		q.PushLeft(i)
	}
	for i := 0; i < 4; i++ {
		q.PushRight(i)
	}
	require.Equal(t, 4, q.LeftLen())
	require.Equal(t, 4, q.RightLen())
	require.False(t, q.Full())
	require.Equal(t, 12, q.Cap())

	for i := 0; i < 2; i++ {
		q.PushLeft(100 + i)
		q.PushRight(100 + i)
	}
	require.True(t, q.Full())
}

func TestQueueRandomizedAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 200
	less := func(a, b int) bool { return a < b }
	q := New(n, less, less)
	vals := make([]int, n)
	for i := range vals {
		vals[i] = rng.Intn(1_000_000)
		q.PushLeft(vals[i])
	}
	prev, ok := q.PopLeft()
	require.True(t, ok)
	for {
		v, ok := q.PopLeft()
		if !ok {
			break
		}
		require.LessOrEqual(t, prev, v)
		prev = v
	}
}

func TestQueueTopDoesNotRemove(t *testing.T) {
	q := New(4, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	q.PushLeft(5)
	q.PushLeft(1)
	v, ok := q.TopLeft()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, q.LeftLen())
}

func TestQueueEmptyPopReturnsFalse(t *testing.T) {
	q := New(4, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	_, ok := q.PopLeft()
	require.False(t, ok)
	_, ok = q.PopRight()
	require.False(t, ok)
}

func TestQueuePushPastCapacityPanics(t *testing.T) {
	q := New(1, func(a, b int) bool { return a < b }, func(a, b int) bool { return a < b })
	q.PushLeft(1)
	require.Panics(t, func() { q.PushLeft(2) })
}
