package handler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct {
	mu  sync.Mutex
	log []string
}

func (t *trace) add(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = append(t.log, s)
}

func (t *trace) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.log...)
}

func TestQueueKeepsOrderPerKey(t *testing.T) {
	q := NewQueue()
	tr := &trace{}

	q.Do("u1", func() {
		time.Sleep(40 * time.Millisecond)
		tr.add("first")
	})
	q.Do("u1", func() { tr.add("second") })
	q.Do("u1", func() { tr.add("third") })
	q.Wait()

	assert.Equal(t, []string{"first", "second", "third"}, tr.snapshot())
}

func TestQueueKeysRunInParallel(t *testing.T) {
	q := NewQueue()
	tr := &trace{}
	release := make(chan struct{})

	q.Do("u1", func() {
		<-release
		tr.add("u1")
	})
	q.Do("u2", func() {
		tr.add("u2")
		close(release)
	})
	q.Wait()

	assert.Equal(t, []string{"u2", "u1"}, tr.snapshot())
}

func TestQueueRestartsAfterDrain(t *testing.T) {
	q := NewQueue()
	tr := &trace{}

	q.Do("u1", func() { tr.add("a") })
	q.Wait()
	q.Do("u1", func() { tr.add("b") })
	q.Wait()

	assert.Equal(t, []string{"a", "b"}, tr.snapshot())
}

func TestQueueSurvivesPanic(t *testing.T) {
	q := NewQueue()
	tr := &trace{}

	q.Do("u1", func() { panic("boom") })
	q.Do("u1", func() { tr.add("after") })
	q.Wait()

	assert.Equal(t, []string{"after"}, tr.snapshot())
}

func TestQueueClosedDropsWork(t *testing.T) {
	q := NewQueue()
	tr := &trace{}

	require.True(t, q.Do("u1", func() {
		time.Sleep(20 * time.Millisecond)
		tr.add("queued")
	}))
	q.Close()

	assert.False(t, q.Do("u1", func() { tr.add("late") }))
	assert.Equal(t, []string{"queued"}, tr.snapshot())
}
