// Package sessionmgr implements the Session Manager: committed-id
// minting, session creation and terminal mutation, append-only
// conversation logging, and history retrieval with smart truncation.
package sessionmgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/basegraph/salesassist/common/id"
	"github.com/basegraph/salesassist/common/logger"
	"github.com/basegraph/salesassist/internal/apperr"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/store"
)

// Manager is the Session Manager contract used by the orchestrator.
type Manager interface {
	// Create mints a fresh committed id with the default journey stage
	// and the given language, persists it, and returns the new session.
	Create(ctx context.Context, lang domain.Language) (*domain.Session, error)

	// EnsureCommitted resolves a possibly-provisional id to a committed
	// one, minting and persisting a new session when needed.
	EnsureCommitted(ctx context.Context, sessionID string, seedTimestamp time.Time, lang domain.Language) (*domain.Session, error)

	// Append logs one conversation turn entry. Persistence failures are
	// logged and tolerated, never returned.
	Append(ctx context.Context, sessionID string, role domain.ConversationRole, content string, lang domain.Language)

	// History returns the smart-truncated transcript for sessionID.
	// Persistence failures here ARE fatal and surfaced to the caller.
	History(ctx context.Context, sessionID string, limit int) (domain.History, error)

	// Get fetches the current session row by its committed id. Unlike
	// EnsureCommitted it never mints or persists anything; a missing
	// session is a fatal error here.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// UpdateStage mutates the session's journey stage.
	UpdateStage(ctx context.Context, sessionID string, stage domain.JourneyStage) error

	// End terminates a session. Fails with apperr.KindInvalidSessionID
	// if sessionID is provisional.
	End(ctx context.Context, sessionID string, outcome domain.TerminalOutcome) error
}

type manager struct {
	sessions store.SessionStore
	log      store.ConversationLogStore
}

func New(sessions store.SessionStore, log store.ConversationLogStore) Manager {
	return &manager{sessions: sessions, log: log}
}

func (m *manager) Create(ctx context.Context, lang domain.Language) (*domain.Session, error) {
	committedID, err := newCommittedID()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "minting committed session id", err)
	}

	sess, err := m.sessions.Create(ctx, committedID, time.Now(), domain.StageDiscovery, lang)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependencyUnavailable, "persisting new session", err)
	}
	return sess, nil
}

func (m *manager) EnsureCommitted(ctx context.Context, sessionID string, seedTimestamp time.Time, lang domain.Language) (*domain.Session, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "salesassist.sessionmgr"})

	if IsProvisional(sessionID) || sessionID == "" {
		committedID, err := newCommittedID()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "minting committed session id", err)
		}

		sess, err := m.sessions.Create(ctx, committedID, seedTimestamp, domain.StageDiscovery, lang)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDependencyUnavailable, "persisting upgraded session", err)
		}

		slog.InfoContext(ctx, "upgraded provisional session id", "committed_id", sess.ID)
		return sess, nil
	}

	sess, err := m.sessions.GetByID(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		// Current spec: a committed id with no DB row proceeds without
		// inserting one, rather than failing the turn outright.
		slog.WarnContext(ctx, "committed session id not found, proceeding without a store row")
		return &domain.Session{
			ID:                sessionID,
			CreatedAt:         seedTimestamp,
			JourneyStage:      domain.StageDiscovery,
			PreferredLanguage: lang,
		}, nil
	}
	return nil, apperr.Wrap(apperr.KindDependencyUnavailable, "fetching session", err)
}

func (m *manager) Append(ctx context.Context, sessionID string, role domain.ConversationRole, content string, lang domain.Language) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "salesassist.sessionmgr"})

	entryID := id.New()
	if _, err := m.log.Append(ctx, entryID, sessionID, time.Now(), role, content, lang); err != nil {
		slog.ErrorContext(ctx, "failed to append conversation log entry, continuing in degraded mode",
			"error", err, "role", role)
	}
}

func (m *manager) History(ctx context.Context, sessionID string, limit int) (domain.History, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "salesassist.sessionmgr"})

	entries, err := m.log.ListBySession(ctx, sessionID)
	if err != nil {
		return domain.History{}, apperr.Wrap(apperr.KindDependencyUnavailable, "fetching conversation history", err)
	}

	return smartTruncate(entries, limit), nil
}

func (m *manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "salesassist.sessionmgr"})

	sess, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.KindSessionNotFound, fmt.Sprintf("session %q not found", sessionID))
		}
		return nil, apperr.Wrap(apperr.KindDependencyUnavailable, "fetching session", err)
	}
	return sess, nil
}

func (m *manager) UpdateStage(ctx context.Context, sessionID string, stage domain.JourneyStage) error {
	if err := m.sessions.UpdateJourneyStage(ctx, sessionID, stage); err != nil {
		return apperr.Wrap(apperr.KindDependencyUnavailable, "updating journey stage", err)
	}
	return nil
}

func (m *manager) End(ctx context.Context, sessionID string, outcome domain.TerminalOutcome) error {
	if IsProvisional(sessionID) {
		return apperr.New(apperr.KindInvalidSessionID, fmt.Sprintf("cannot end provisional session %q", sessionID))
	}

	if err := m.sessions.End(ctx, sessionID, outcome, time.Now()); err != nil {
		return apperr.Wrap(apperr.KindDependencyUnavailable, "ending session", err)
	}
	return nil
}
