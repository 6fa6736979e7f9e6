package domain

import "time"

// FeedbackPolarity records whether the seller liked a prior suggestion.
type FeedbackPolarity string

const (
	FeedbackUp   FeedbackPolarity = "up"
	FeedbackDown FeedbackPolarity = "down"
)

// FeedbackEntry critiques one prior Fast Path suggestion.
type FeedbackEntry struct {
	ID                int64
	SessionID         string
	CritiquedEntryID  int64
	Polarity          FeedbackPolarity
	SellerNote        string
	CritiquedSuggestion string
	SellerComment     string
	Language          Language
	RefinedSuggestion *string
	Timestamp         time.Time
}
