package queue

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-blur-bench/pkg/status"
)

func newTestClient(t *testing.T, maxLen int64) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr(), "", maxLen)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewRedisClient_DefaultStream(t *testing.T) {
	client, _ := newTestClient(t, 0)
	assert.Equal(t, DefaultStatusStream, client.StatusStream())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(addr, "", 0)
	assert.Error(t, err)
}

func TestAddStatus_RoundTrip(t *testing.T) {
	client, _ := newTestClient(t, 0)

	_, err := client.AddStatus(status.Error("parallel", "/tmp/a.png", "Invalid blur value"))
	require.NoError(t, err)
	_, err = client.AddStatus(status.Info("bench", "", "Parallel execution time: 12 ms"))
	require.NoError(t, err)

	events, err := client.ReadStatus(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Invalid blur value", events[0].Message)
	assert.Equal(t, status.LevelError, events[0].Level)
	assert.Equal(t, "/tmp/a.png", events[0].Path)
	assert.Equal(t, "Parallel execution time: 12 ms", events[1].Message)
}

func TestSink_PublishesEveryEvent(t *testing.T) {
	client, _ := newTestClient(t, 0)
	sink := client.Sink(nil)

	for i := 0; i < 5; i++ {
		sink.Publish(status.Info("sequential", "", "tick"))
	}

	events, err := client.ReadStatus(100)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestReadStatus_NewestOldestFirst(t *testing.T) {
	client, _ := newTestClient(t, 0)
	for i := 0; i < 5; i++ {
		_, err := client.AddStatus(status.Info("bench", "", fmt.Sprintf("event %d", i)))
		require.NoError(t, err)
	}

	events, err := client.ReadStatus(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "event 3", events[0].Message)
	assert.Equal(t, "event 4", events[1].Message)
}

func TestReadStatus_EmptyStream(t *testing.T) {
	client, _ := newTestClient(t, 0)
	events, err := client.ReadStatus(10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
