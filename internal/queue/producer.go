package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/basegraph/salesassist/common/logger"
	"github.com/redis/go-redis/v9"
)

// SlowPathRequest is published by the orchestrator's Fast Path (and by
// the retry_slowpath endpoint) to admit a session into the Slow Path.
type SlowPathRequest struct {
	SessionID string
	TraceID   *string
	Attempt   int
}

type Producer interface {
	Enqueue(ctx context.Context, msg SlowPathRequest) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{
		client: client,
		stream: stream,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg SlowPathRequest) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &msg.SessionID,
		Component: "salesassist.queue.producer",
	})

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"task_type":  string(TaskTypeSlowPathRequested),
		"session_id": msg.SessionID,
		"attempt":    attempt,
	}

	traceIDStr := ""
	if msg.TraceID != nil && *msg.TraceID != "" {
		fields["trace_id"] = *msg.TraceID
		traceIDStr = *msg.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue slow path request (stream=%s): %w", p.stream, err)
	}

	slog.InfoContext(ctx, "enqueued slow path request",
		"attempt", attempt,
		"trace_id", traceIDStr,
		"stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
