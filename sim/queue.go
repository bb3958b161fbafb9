// Implements the JobQueue, which holds jobs waiting behind a busy server.
// Jobs are pushed on arrival and popped when the server finishes its current job.

package sim

import (
	"fmt"
	"strings"
)

// Job is a customer waiting for service. It carries no identity beyond the
// time it entered the queue.
type Job struct {
	EnqueuedAt float64
}

const minQueueCapacity = 8

// JobQueue is a double-ended queue of jobs backed by a ring buffer.
// Pushes and pops at either end are O(1) amortized; used as a FIFO it
// pushes at the back and pops at the front.
type JobQueue struct {
	buf  []Job
	head int // index of the front element
	size int
}

// Len returns the number of queued jobs.
func (q *JobQueue) Len() int {
	return q.size
}

// PushBack appends a job behind every queued job.
func (q *JobQueue) PushBack(j Job) {
	q.grow()
	q.buf[(q.head+q.size)%len(q.buf)] = j
	q.size++
}

// PushFront inserts a job ahead of every queued job.
func (q *JobQueue) PushFront(j Job) {
	q.grow()
	q.head = (q.head - 1 + len(q.buf)) % len(q.buf)
	q.buf[q.head] = j
	q.size++
}

// PopFront removes and returns the oldest job. ok is false on an empty queue.
func (q *JobQueue) PopFront() (j Job, ok bool) {
	if q.size == 0 {
		return Job{}, false
	}
	j = q.buf[q.head]
	q.buf[q.head] = Job{}
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	q.shrink()
	return j, true
}

// PopBack removes and returns the newest job. ok is false on an empty queue.
func (q *JobQueue) PopBack() (j Job, ok bool) {
	if q.size == 0 {
		return Job{}, false
	}
	tail := (q.head + q.size - 1) % len(q.buf)
	j = q.buf[tail]
	q.buf[tail] = Job{}
	q.size--
	q.shrink()
	return j, true
}

// Peek returns the front job without removing it.
func (q *JobQueue) Peek() (Job, bool) {
	if q.size == 0 {
		return Job{}, false
	}
	return q.buf[q.head], true
}

func (q *JobQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < q.size; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprint(q.buf[(q.head+i)%len(q.buf)].EnqueuedAt))
	}
	sb.WriteString("]")
	return sb.String()
}

// grow doubles the buffer when full, unrolling the ring so head is 0.
func (q *JobQueue) grow() {
	if q.size < len(q.buf) {
		return
	}
	q.resize(max(minQueueCapacity, 2*len(q.buf)))
}

// shrink halves the buffer when it is at most a quarter full, so a long
// burst does not pin memory for the rest of the run.
func (q *JobQueue) shrink() {
	if len(q.buf) > minQueueCapacity && q.size <= len(q.buf)/4 {
		q.resize(len(q.buf) / 2)
	}
}

func (q *JobQueue) resize(capacity int) {
	buf := make([]Job, capacity)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
