package bus

import "sync"

// QueueLoop is a Loop that holds posted functions until Drain is called.
// It stands in for a UI main loop in tests and headless runs.
type QueueLoop struct {
	mu    sync.Mutex
	queue []func()
}

// Post enqueues fn.
func (q *QueueLoop) Post(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Pending returns the number of queued functions.
func (q *QueueLoop) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Drain runs queued functions, including ones queued while draining,
// and returns how many ran.
func (q *QueueLoop) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
		ran++
	}
}
