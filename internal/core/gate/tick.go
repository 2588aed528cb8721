package gate

import "sync"

// TickQueue defers work until the current synchronous step is done. Nothing
// runs until Drain is called; there is no timer involved.
type TickQueue struct {
	mu    sync.Mutex
	tasks []func()
}

func NewTickQueue() *TickQueue {
	return &TickQueue{}
}

// Post schedules fn for the next Drain.
func (q *TickQueue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Drain runs queued tasks in FIFO order, including tasks posted while
// draining, and returns how many ran. Tasks run without the queue lock held.
func (q *TickQueue) Drain() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
		ran++
	}
}

// Len returns the number of pending tasks.
func (q *TickQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
