package domain

import "time"

// ConversationRole identifies the author of a conversation log entry.
type ConversationRole string

const (
	RoleSeller    ConversationRole = "seller"
	RoleFastReply ConversationRole = "fast_reply"
	RoleFastMeta  ConversationRole = "fast_meta"
)

// ConversationLogEntry is one append-only line of a session's transcript.
// Every entry whose Role is not RoleSeller must be preceded, within the
// same session and in timestamp order, by a RoleSeller entry.
type ConversationLogEntry struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Role      ConversationRole
	Content   string
	Language  Language
}

// History is the result of a smart-truncated history fetch: the entries
// to show, plus whether anything earlier was summarized away.
type History struct {
	Entries    []ConversationLogEntry
	Truncated  bool
	EarlierSummary string // non-empty only when Truncated
}
