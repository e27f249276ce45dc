package headless

import "sync"

// jobQueue runs jobs in order on a single goroutine. Jobs may enqueue
// further jobs; wait returns once the queue is empty and nothing runs.
type jobQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []func()
	running bool
	closed  bool
	done    chan struct{}
}

func newJobQueue() *jobQueue {
	q := &jobQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// push enqueues job. It reports false once the queue is closed.
func (q *jobQueue) push(job func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, job)
	q.cond.Broadcast()
	return true
}

func (q *jobQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.jobs) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.jobs) == 0 {
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		q.running = true
		q.mu.Unlock()

		job()

		q.mu.Lock()
		q.running = false
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

// wait blocks until no job is queued or running.
func (q *jobQueue) wait() {
	q.mu.Lock()
	for len(q.jobs) > 0 || q.running {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// close drains the remaining jobs and stops the loop.
func (q *jobQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}
