// Package domain holds the core entity types of the sales-assistance
// backend: sessions, conversation log entries, deep analyses, knowledge
// nuggets and feedback, plus the enumerations that localize at the edge
// and stay canonical everywhere else.
package domain

import "time"

// JourneyStage is the canonical sales-arc label. Only these three values
// are ever persisted; localized aliases are resolved at the edge (see
// StageFromAlias).
type JourneyStage string

const (
	StageDiscovery JourneyStage = "Discovery"
	StageAnalysis  JourneyStage = "Analysis"
	StageDecision  JourneyStage = "Decision"
)

// TerminalOutcome is the closed set of ways a session can end.
type TerminalOutcome string

const (
	OutcomeWon  TerminalOutcome = "Won"
	OutcomeLost TerminalOutcome = "Lost"
)

// Language is a supported UI/response language.
type Language string

const (
	LanguagePL Language = "pl"
	LanguageEN Language = "en"
)

// Session is a bounded sales conversation about one prospective client.
type Session struct {
	ID                string // committed "S-XXX-###" form; never the provisional "TEMP-..." form
	CreatedAt         time.Time
	EndedAt           *time.Time
	TerminalOutcome   *TerminalOutcome
	JourneyStage      JourneyStage
	PreferredLanguage Language
}

// IsEnded reports whether the session has already been terminated.
func (s Session) IsEnded() bool {
	return s.EndedAt != nil
}
