package orchestrator

import (
	"context"
	"fmt"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/queue"
	"github.com/basegraph/salesassist/internal/sessionmgr"
)

// RetrySlowPath admits a fresh Slow Path attempt for an already-committed
// session. Unlike the Fast Path's fire-and-forget admission, an enqueue
// failure here is the caller's entire request outcome, so it propagates
// instead of being swallowed.
func (o *Orchestrator) RetrySlowPath(ctx context.Context, sessionID string) error {
	if !sessionmgr.IsCommitted(sessionID) {
		return apperr.New(apperr.KindInvalidSessionID, fmt.Sprintf("cannot retry slow path for non-committed id %q", sessionID))
	}

	if _, err := o.sessions.Get(ctx, sessionID); err != nil {
		return err
	}

	if err := o.producer.Enqueue(ctx, queue.SlowPathRequest{SessionID: sessionID}); err != nil {
		return apperr.Wrap(apperr.KindDependencyUnavailable, "enqueueing slow path retry", err)
	}
	return nil
}
