package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueSendReceive(t *testing.T) {
	q := NewMemoryQueue(4)
	require.NoError(t, q.Send(context.Background(), "one"))
	require.NoError(t, q.Send(context.Background(), "two"))

	msgs, err := q.Receive(context.Background(), 10, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)
	assert.NotEmpty(t, msgs[0].ReceiptHandle)
}

func TestMemoryQueueReceiveTimeout(t *testing.T) {
	q := NewMemoryQueue(1)

	start := time.Now()
	msgs, err := q.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestMemoryQueueReceiveHonorsBatchSize(t *testing.T) {
	q := NewMemoryQueue(8)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Send(context.Background(), "msg"))
	}

	msgs, err := q.Receive(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}

func TestMemoryQueueReceiveCanceled(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Receive(ctx, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQueueDeleteNoop(t *testing.T) {
	q := NewMemoryQueue(1)
	assert.NoError(t, q.Delete(context.Background(), "any"))
}
