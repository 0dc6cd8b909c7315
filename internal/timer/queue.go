// Package timer holds deferred actions that run on the tick thread once they are due.
package timer

import (
	"container/heap"
	"time"
)

type task struct {
	due    time.Duration
	seq    uint64
	action func()
}

type tasks []task

func (h tasks) Len() int { return len(h) }
func (h tasks) Less(i, j int) bool {
	if h[i].due == h[j].due {
		return h[i].seq < h[j].seq
	}
	return h[i].due < h[j].due
}
func (h tasks) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *tasks) Push(x interface{}) { *h = append(*h, x.(task)) }
func (h *tasks) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = task{}
	*h = old[:n-1]
	return t
}

// Queue is not safe for concurrent use.
type Queue struct {
	h   tasks
	seq uint64
}

// After runs action on the first Run at or past due. Equal due times run in insertion order.
func (q *Queue) After(due time.Duration, action func()) {
	q.seq++
	heap.Push(&q.h, task{due: due, seq: q.seq, action: action})
}

// Run executes every due task and returns how many ran.
// Tasks scheduled by an action for a time <= now also run in this call.
func (q *Queue) Run(now time.Duration) int {
	n := 0
	for len(q.h) > 0 && q.h[0].due <= now {
		t := heap.Pop(&q.h).(task)
		t.action()
		n++
	}
	return n
}

func (q *Queue) Len() int {
	return len(q.h)
}

// Next is the earliest due time, false when empty.
func (q *Queue) Next() (time.Duration, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].due, true
}

func (q *Queue) Clear() {
	q.h = nil
}
