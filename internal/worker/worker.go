// Package worker runs the in-process Slow Path admission consumers. Each
// consumer is one "lane" of the process-wide concurrency semaphore described
// in the orchestrator's design: N consumers reading the same Redis Stream
// consumer group bound the number of deep analyses running at once, with
// the stream itself providing durable, crash-safe admission instead of an
// in-memory queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/queue"
)

// Consumer is satisfied by *queue.RedisConsumer; narrowed here so the
// worker and reclaimer can be tested against a fake.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// SlowPathProcessor runs one Slow Path analysis to completion. It must
// never panic; processMessageSafe recovers defensively regardless.
type SlowPathProcessor interface {
	RunSlowPath(ctx context.Context, sessionID string) error
}

type Config struct {
	MaxAttempts int
}

// Worker drains one admission-stream consumer, one message at a time.
// Running N Workers against the same consumer group is what gives the
// Slow Path its bounded concurrency.
type Worker struct {
	name      string
	consumer  Consumer
	processor SlowPathProcessor
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(name string, consumer Consumer, processor SlowPathProcessor, cfg Config) *Worker {
	return &Worker{
		name:      name,
		consumer:  consumer,
		processor: processor,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "salesassist.worker." + w.name})
	slog.InfoContext(ctx, "slow path consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "slow path consumer stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch read error", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "slow path processing failed",
				"error", err,
				"message_id", msg.ID,
				"session_id", msg.SessionID)
			w.handleFailedMessage(ctx, msg, err)
			continue
		}
		if err := w.consumer.Ack(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to ack message", "error", err, "message_id", msg.ID)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in slow path processing",
				"panic", r,
				"stack", string(debug.Stack()),
				"message_id", msg.ID,
				"session_id", msg.SessionID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &msg.SessionID,
		MessageID: &msg.ID,
	})
	slog.InfoContext(ctx, "processing slow path request", "attempt", msg.Attempt)

	// The orchestrator's RunSlowPath records its own failures as Error
	// analysis entries (only logging when that write fails) and returns
	// nil, so the retry path below is reached by a recovered panic or by
	// a processor that does return an error.
	return w.processor.RunSlowPath(ctx, msg.SessionID)
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"session_id", msg.SessionID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed slow path request",
		"message_id", msg.ID,
		"session_id", msg.SessionID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
