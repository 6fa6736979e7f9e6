// Package channel implements the Channel Registry: a concurrent-safe
// map from session id to its live push connection, used to deliver
// Slow Path results as soon as they're ready.
package channel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/sessionmgr"
)

// Channel is whatever the HTTP/Push Edge wires a session's websocket
// connection into. The registry only knows how to send structured
// messages and detect a dead connection; it never parses frames itself.
type Channel interface {
	Send(ctx context.Context, message any) error
}

// AttachResult is the outcome of attach: did a prior connection get
// evicted, or is this the first for the session.
type AttachResult int

const (
	AttachFresh AttachResult = iota
	AttachReplaced
)

// SendResult tells the caller what happened without forcing it to
// inspect an error for the routine "nobody's listening" case.
type SendResult int

const (
	SendDelivered SendResult = iota
	SendNoChannel
	SendFailed
)

var ErrProvisionalID = errors.New("channel registry: provisional session id rejected")

// Registry is the concurrent-safe session-id -> Channel map.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Channel)}
}

// Attach registers ch for sessionID, overwriting and evicting any prior
// connection (latest writer wins). Rejects provisional ids outright.
func (r *Registry) Attach(sessionID string, ch Channel) (AttachResult, error) {
	if sessionmgr.IsProvisional(sessionID) {
		return 0, apperr.Wrap(apperr.KindInvalidSessionID, "provisional session id rejected by channel registry", ErrProvisionalID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.conns[sessionID]
	r.conns[sessionID] = ch

	if existed {
		return AttachReplaced, nil
	}
	return AttachFresh, nil
}

// Detach removes the registered channel for sessionID iff it is
// identical to ch (a stale disconnect of an already-replaced
// connection must not evict the new one).
func (r *Registry) Detach(sessionID string, ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.conns[sessionID]; ok && current == ch {
		delete(r.conns, sessionID)
	}
}

// Has reports whether a channel is currently registered for sessionID,
// without sending anything — used by the Slow Path's pre-engagement
// probe, which only needs to know a channel exists, not to exercise it.
func (r *Registry) Has(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[sessionID]
	return ok
}

// Send delivers message to sessionID's live channel, if any.
func (r *Registry) Send(ctx context.Context, sessionID string, message any) SendResult {
	r.mu.RLock()
	ch, ok := r.conns[sessionID]
	r.mu.RUnlock()

	if !ok {
		return SendNoChannel
	}

	if err := ch.Send(ctx, message); err != nil {
		slog.WarnContext(ctx, "channel send failed", "session_id", sessionID, "error", err)
		return SendFailed
	}
	return SendDelivered
}
