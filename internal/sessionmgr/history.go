package sessionmgr

import (
	"fmt"

	"github.com/basegraph/salesassist/internal/domain"
)

// DefaultRecentTurns is the fixed small N of how many full
// turns (each turn rooted at a seller entry) are kept verbatim before
// everything earlier is collapsed into a one-line summary.
const DefaultRecentTurns = 20

const summaryPrefixLen = 60

// smartTruncate keeps the most recent n full turns (a turn starts at a
// RoleSeller entry and runs to the entry before the next one) and
// collapses everything earlier into a single summary line noting only
// the earlier entry count and the first seller note's prefix.
func smartTruncate(entries []domain.ConversationLogEntry, n int) domain.History {
	if n <= 0 {
		n = DefaultRecentTurns
	}

	var turnStarts []int
	for i, e := range entries {
		if e.Role == domain.RoleSeller {
			turnStarts = append(turnStarts, i)
		}
	}

	if len(turnStarts) <= n {
		return domain.History{Entries: entries, Truncated: false}
	}

	cutoff := turnStarts[len(turnStarts)-n]
	earlier := entries[:cutoff]
	recent := entries[cutoff:]

	var firstSellerNote string
	for _, e := range earlier {
		if e.Role == domain.RoleSeller {
			firstSellerNote = truncateRunes(e.Content, summaryPrefixLen)
			break
		}
	}

	summary := fmt.Sprintf("%d earlier messages summarized; first seller note: %q", len(earlier), firstSellerNote)

	return domain.History{
		Entries:        recent,
		Truncated:      true,
		EarlierSummary: summary,
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
