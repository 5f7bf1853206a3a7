package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/appdom/internal/dom"
)

func TestCommandQueue_FIFO(t *testing.T) {
	q := newCommandQueue()

	for _, id := range []string{"a", "b", "c"} {
		require.True(t, q.Enqueue(request{cmd: RemoveNode{ID: dom.NodeID(id)}}))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		r, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, dom.NodeID(want), r.cmd.(RemoveNode).ID)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestCommandQueue_EnqueueAfterClose(t *testing.T) {
	q := newCommandQueue()
	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(request{cmd: RemoveNode{ID: "x"}}))
}

func TestCommandQueue_CloseWakesWaiter(t *testing.T) {
	q := newCommandQueue()

	done := make(chan struct{})
	go func() {
		<-q.Wait()
		close(done)
	}()

	q.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Close")
	}
}

func TestCommandQueue_ConcurrentEnqueue(t *testing.T) {
	q := newCommandQueue()
	const workers, perWorker = 10, 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				q.Enqueue(request{cmd: RemoveNode{ID: "x"}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, q.Len())
}
