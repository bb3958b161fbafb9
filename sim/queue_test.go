package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(q *JobQueue) []float64 {
	out := make([]float64, 0, q.Len())
	for q.Len() > 0 {
		j, _ := q.PopFront()
		out = append(out, j.EnqueuedAt)
	}
	return out
}

func TestJobQueue_PushBackPopFront_IsFIFO(t *testing.T) {
	// GIVEN jobs enqueued at t=1,2,3
	q := &JobQueue{}
	for _, at := range []float64{1, 2, 3} {
		q.PushBack(Job{EnqueuedAt: at})
	}

	// WHEN they are drained from the front
	// THEN they come out in arrival order
	assert.Equal(t, []float64{1, 2, 3}, drain(q))
}

func TestJobQueue_Empty_PopsReportFalse(t *testing.T) {
	q := &JobQueue{}
	_, ok := q.PopFront()
	assert.False(t, ok)
	_, ok = q.PopBack()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
	assert.Equal(t, "[]", q.String())
}

func TestJobQueue_PushFrontPopBack(t *testing.T) {
	// GIVEN a queue [A, B] with X pushed to the front
	q := &JobQueue{}
	q.PushBack(Job{EnqueuedAt: 1})
	q.PushBack(Job{EnqueuedAt: 2})
	q.PushFront(Job{EnqueuedAt: 0})

	// THEN Peek returns X and PopBack returns B
	front, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, 0.0, front.EnqueuedAt)
	back, ok := q.PopBack()
	assert.True(t, ok)
	assert.Equal(t, 2.0, back.EnqueuedAt)
	assert.Equal(t, "[0 1]", q.String())
}

func TestJobQueue_WrapAroundAndGrowth_PreservesOrder(t *testing.T) {
	// GIVEN a queue that is repeatedly half-drained so head wraps the ring
	q := &JobQueue{}
	next, want := 0.0, 0.0
	for round := 0; round < 50; round++ {
		for i := 0; i < 7; i++ {
			q.PushBack(Job{EnqueuedAt: next})
			next++
		}
		for i := 0; i < 5; i++ {
			j, ok := q.PopFront()
			if !ok || j.EnqueuedAt != want {
				t.Fatalf("round %d: got %v (ok=%v), want %v", round, j.EnqueuedAt, ok, want)
			}
			want++
		}
	}

	// THEN the remaining jobs still drain in order
	rest := drain(q)
	assert.Len(t, rest, 50*2)
	for i, v := range rest {
		assert.Equal(t, want+float64(i), v)
	}
}

func TestJobQueue_ShrinksAfterBurst(t *testing.T) {
	q := &JobQueue{}
	for i := 0; i < 1000; i++ {
		q.PushBack(Job{EnqueuedAt: float64(i)})
	}
	peak := len(q.buf)
	for i := 0; i < 999; i++ {
		q.PopFront()
	}
	assert.Less(t, len(q.buf), peak)
	j, ok := q.PopFront()
	assert.True(t, ok)
	assert.Equal(t, 999.0, j.EnqueuedAt)
}
