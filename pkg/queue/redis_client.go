package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"go-blur-bench/pkg/status"
)

const DefaultStatusStream = "blurbench:status"

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
	stream string
	maxLen int64
}

// NewRedisClient connects to addr and verifies the connection with PING.
// Status events are appended to stream, trimmed to roughly maxLen entries when maxLen > 0.
func NewRedisClient(addr, stream string, maxLen int64) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if stream == "" {
		stream = DefaultStatusStream
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
		stream: stream,
		maxLen: maxLen,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) StatusStream() string {
	return r.stream
}

func (r *RedisClient) AddStatus(ev status.Event) (string, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{"data": b},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	result := r.client.XAdd(r.ctx, args)
	return result.Val(), result.Err()
}

// ReadStatus returns the newest count events of the stream, oldest first
func (r *RedisClient) ReadStatus(count int64) ([]status.Event, error) {
	msgs, err := r.client.XRevRangeN(r.ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}

	events := make([]status.Event, 0, len(msgs))
	for _, msg := range lo.Reverse(msgs) {
		var ev status.Event
		if err := json.Unmarshal(r.bytesFromInterface(msg.Values["data"]), &ev); err != nil {
			return nil, fmt.Errorf("decode status entry %s: %w", msg.ID, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// Sink adapts the client to status.Sink. Publish failures are logged and dropped.
func (r *RedisClient) Sink(logger *slog.Logger) status.Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return status.SinkFunc(func(ev status.Event) {
		if _, err := r.AddStatus(ev); err != nil {
			logger.Warn("failed to publish status event", "stream", r.stream, "error", err)
		}
	})
}

func (r *RedisClient) bytesFromInterface(v interface{}) []byte {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case []byte:
		return t
	default:
		b, _ := json.Marshal(t)
		return b
	}
}
