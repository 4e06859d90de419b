package action

import (
	"io"
	"sync"
)

// ShutdownTask is a deferred piece of console output.
type ShutdownTask func(w io.Writer)

// ShutdownQueue holds shutdown tasks in registration order.
// Each task runs at most once.
type ShutdownQueue struct {
	mu    sync.Mutex
	tasks []ShutdownTask
}

// Add registers a task to run on the next Run.
func (q *ShutdownQueue) Add(task ShutdownTask) {
	if task == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

// Len returns the number of pending tasks.
func (q *ShutdownQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Run invokes every pending task in registration order and empties the queue.
func (q *ShutdownQueue) Run(w io.Writer) {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, task := range tasks {
		task(w)
	}
}
