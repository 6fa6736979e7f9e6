package sessionmgr

import (
	"strings"
	"testing"

	"github.com/basegraph/salesassist/internal/domain"
)

func makeTurn(sellerNote string) []domain.ConversationLogEntry {
	return []domain.ConversationLogEntry{
		{Role: domain.RoleSeller, Content: sellerNote},
		{Role: domain.RoleFastReply, Content: "reply"},
		{Role: domain.RoleFastMeta, Content: "meta"},
	}
}

func TestSmartTruncateUnderLimitNotTruncated(t *testing.T) {
	var entries []domain.ConversationLogEntry
	for i := 0; i < 5; i++ {
		entries = append(entries, makeTurn("note")...)
	}

	got := smartTruncate(entries, 20)
	if got.Truncated {
		t.Errorf("expected no truncation for 5 turns under a limit of 20")
	}
	if len(got.Entries) != len(entries) {
		t.Errorf("expected all %d entries kept, got %d", len(entries), len(got.Entries))
	}
}

func TestSmartTruncateOverLimitKeepsMostRecentTurns(t *testing.T) {
	var entries []domain.ConversationLogEntry
	for i := 0; i < 25; i++ {
		entries = append(entries, makeTurn("note")...)
	}

	got := smartTruncate(entries, 20)
	if !got.Truncated {
		t.Fatal("expected truncation for 25 turns over a limit of 20")
	}
	if len(got.Entries) != 20*3 {
		t.Errorf("expected %d entries kept, got %d", 20*3, len(got.Entries))
	}
	if got.Entries[0].Role != domain.RoleSeller {
		t.Errorf("expected kept entries to start on a turn boundary, got role %q", got.Entries[0].Role)
	}
}

func TestSmartTruncateSummaryMentionsFirstSellerNote(t *testing.T) {
	var entries []domain.ConversationLogEntry
	entries = append(entries, makeTurn("first note ever")...)
	for i := 0; i < 24; i++ {
		entries = append(entries, makeTurn("later note")...)
	}

	got := smartTruncate(entries, 20)
	if !strings.Contains(got.EarlierSummary, "first note ever") {
		t.Errorf("summary %q does not mention the first seller note", got.EarlierSummary)
	}
	if !strings.Contains(got.EarlierSummary, "15 earlier messages") {
		t.Errorf("summary %q does not mention the earlier entry count", got.EarlierSummary)
	}
}
