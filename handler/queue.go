package handler

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Queue runs functions one at a time per key, in the order Do was called. Different
// keys run in parallel.
type Queue struct {
	mu      sync.Mutex
	pending map[string][]func()
	closed  bool
	wg      sync.WaitGroup
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[string][]func())}
}

// Do queues fn behind the functions already queued for key. It reports false when the
// queue is closed and fn was dropped.
func (q *Queue) Do(key string, fn func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	fns, running := q.pending[key]
	q.pending[key] = append(fns, fn)
	if !running {
		q.wg.Add(1)
		go q.run(key)
	}
	return true
}

// run drains key, then removes it so the next Do starts a new worker.
func (q *Queue) run(key string) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		fns := q.pending[key]
		if len(fns) == 0 {
			delete(q.pending, key)
			q.mu.Unlock()
			return
		}
		fn := fns[0]
		q.pending[key] = fns[1:]
		q.mu.Unlock()

		q.call(key, fn)
	}
}

func (q *Queue) call(key string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("key", key).Interface("panic", r).Msg("event handler panicked")
		}
	}()
	fn()
}

// Wait blocks until every queued function has run.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Close stops accepting functions and waits for the queued ones.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
}
