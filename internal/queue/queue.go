// Package queue provides the FIFO that hands captured PCM chunks from the
// capture goroutine to the assembly loop.
package queue

import "sync"

// Queue is a mutex-guarded FIFO of PCM chunks, safe for one producer and one
// consumer without caller-side locking.
//
// With a zero bound it grows without limit. With a positive bound a push onto
// a full queue evicts the oldest chunk and counts it as dropped.
type Queue struct {
	mu      sync.Mutex
	chunks  [][]byte
	max     int
	dropped int64
	pushed  int64
}

// New returns an empty queue. maxChunks <= 0 means unbounded.
func New(maxChunks int) *Queue {
	if maxChunks < 0 {
		maxChunks = 0
	}
	return &Queue{max: maxChunks}
}

// Push appends chunk at the tail. It never blocks. Empty chunks are ignored.
//
// The queue takes ownership of chunk; callers must not modify it afterwards.
// It reports whether an older chunk was evicted to make room.
func (q *Queue) Push(chunk []byte) bool {
	if len(chunk) == 0 {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pushed++
	evicted := false
	if q.max > 0 && len(q.chunks) >= q.max {
		q.chunks[0] = nil
		q.chunks = q.chunks[1:]
		q.dropped++
		evicted = true
	}
	q.chunks = append(q.chunks, chunk)
	return evicted
}

// DrainAll atomically removes and returns every queued chunk in arrival order.
func (q *Queue) DrainAll() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.chunks) == 0 {
		return nil
	}
	out := q.chunks
	q.chunks = nil
	return out
}

// IsEmpty reports whether nothing is queued.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks) == 0
}

// Len returns the number of queued chunks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chunks)
}

// Stats returns lifetime push and drop counters.
func (q *Queue) Stats() (pushed int64, dropped int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed, q.dropped
}

// Concat joins drained chunks into one contiguous buffer.
func Concat(chunks [][]byte) []byte {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	if total == 0 {
		return nil
	}
	out := make([]byte, 0, total)
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return out
}
