package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickQueue_DrainRunsInOrderIncludingNestedPosts(t *testing.T) {
	q := NewTickQueue()
	var order []int
	q.Post(func() {
		order = append(order, 1)
		q.Post(func() { order = append(order, 3) })
	})
	q.Post(func() { order = append(order, 2) })

	assert.Empty(t, order, "nothing runs before Drain")
	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestRecorder_TakeClears(t *testing.T) {
	r := NewRecorder()
	_, ok := r.Take()
	assert.False(t, ok)

	r.Navigate("/a", false)
	r.Navigate("/b", true)

	nav, ok := r.Take()
	assert.True(t, ok)
	assert.Equal(t, Navigation{To: "/b", Replace: true}, nav)
	_, ok = r.Take()
	assert.False(t, ok)
}
