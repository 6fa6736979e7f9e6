package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Session struct {
	ID                string
	CreatedAt         pgtype.Timestamptz
	EndedAt           pgtype.Timestamptz
	TerminalOutcome   pgtype.Text
	JourneyStage      string
	PreferredLanguage string
}

type ConversationLogEntry struct {
	ID        int64
	SessionID string
	Timestamp pgtype.Timestamptz
	Role      string
	Content   string
	Language  string
}

type DeepAnalysisEntry struct {
	ID            int64
	SessionID     string
	Timestamp     pgtype.Timestamptz
	Status        string
	Document      []byte
	ErrorKind     pgtype.Text
	ErrorMessage  pgtype.Text
	FallbackUsed  bool
	PrimaryModel  pgtype.Text
	FallbackModel pgtype.Text
}

type FeedbackEntry struct {
	ID                  int64
	SessionID           string
	CritiquedEntryID    int64
	Polarity            string
	SellerNote          string
	CritiquedSuggestion string
	SellerComment       string
	Language            string
	RefinedSuggestion   pgtype.Text
	Timestamp           pgtype.Timestamptz
}

type KnowledgeNugget struct {
	ID        string
	Title     string
	Body      string
	Keywords  []string
	Language  string
	Type      string
	Tags      []byte
	Embedding []float32
}
