package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopOrder(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	require.NoError(t, q.Push(&Task{JobID: "low", Priority: 1}))
	require.NoError(t, q.Push(&Task{JobID: "high", Priority: 5}))
	require.NoError(t, q.Push(&Task{JobID: "mid", Priority: 3}))

	assert.Equal(t, 3, q.Size())

	ctx := context.Background()
	for _, want := range []string{"high", "mid", "low"} {
		task, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, task.JobID)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	got := make(chan *Task, 1)
	go func() {
		task, err := q.Pop(context.Background())
		if err == nil {
			got <- task
		}
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, q.Push(&Task{JobID: "j1"}))

	select {
	case task := <-got:
		assert.Equal(t, "j1", task.JobID)
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not return after Push")
	}
}

func TestPopRespectsContextCancellation(t *testing.T) {
	q := NewInMemoryQueue()
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClosedQueue(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Push(&Task{JobID: "j1"}))
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Push(&Task{JobID: "j2"}), ErrQueueClosed)

	// Draining what was queued before close still works.
	task, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "j1", task.JobID)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrQueueClosed)
}
