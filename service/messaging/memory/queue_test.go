package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID string
}

func TestPublishConsumeAck(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "m1"}))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", message.T().ID)
	require.NoError(t, message.Ack())

	// double ack is rejected
	assert.Error(t, message.Ack())
	assert.Equal(t, 0, queue.Size())
}

func TestConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNackRequeuesUntilDeadLetter(t *testing.T) {
	queue := NewQueue[payload](Config{
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 10,
	})
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &payload{ID: "m1"}))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(fmt.Errorf("transient")))

	// the retry shows up after the delay
	retryCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	retried, err := queue.Consume(retryCtx)
	require.NoError(t, err)
	assert.Equal(t, "m1", retried.T().ID)

	// retries exhausted, the message lands in the dead letter queue
	require.NoError(t, retried.Nack(fmt.Errorf("still failing")))
	assert.Equal(t, 1, queue.DLQSize())
	assert.Equal(t, 0, queue.Size())
}

func TestQueueBufferDefaulted(t *testing.T) {
	queue := NewQueue[payload](Config{})
	require.NoError(t, queue.Publish(context.Background(), &payload{ID: "m1"}))
	assert.Equal(t, 1, queue.Size())
}

func TestTryPublishDropsWhenFull(t *testing.T) {
	queue := NewQueue[payload](Config{QueueBuffer: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		published, err := queue.TryPublish(ctx, &payload{ID: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		assert.True(t, published)
	}

	// buffer full: the item is dropped instead of blocking the caller
	published, err := queue.TryPublish(ctx, &payload{ID: "overflow"})
	require.NoError(t, err)
	assert.False(t, published)
	assert.Equal(t, 2, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m0", message.T().ID)
	require.NoError(t, message.Ack())
}
