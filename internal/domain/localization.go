package domain

import "strings"

// stageAliases maps every accepted spelling (English and Polish) of a
// journey stage to its canonical label. Only the canonical label is ever
// stored; aliases are resolved here, at the edge of the domain layer, so
// no other package needs to know a second language exists.
var stageAliases = map[string]JourneyStage{
	"discovery": StageDiscovery,
	"odkrycie":  StageDiscovery,
	"rozpoznanie": StageDiscovery,
	"analysis":  StageAnalysis,
	"analiza":   StageAnalysis,
	"decision":  StageDecision,
	"decyzja":   StageDecision,
}

// StageFromAlias normalizes any accepted spelling of a journey stage to
// its canonical form. It returns false if the input matches none of the
// known aliases.
func StageFromAlias(s string) (JourneyStage, bool) {
	stage, ok := stageAliases[strings.ToLower(strings.TrimSpace(s))]
	return stage, ok
}

// IsValidStage reports whether s is already one of the canonical labels.
func IsValidStage(s JourneyStage) bool {
	switch s {
	case StageDiscovery, StageAnalysis, StageDecision:
		return true
	default:
		return false
	}
}

// IsValidLanguage reports whether lang is a supported preferred language.
func IsValidLanguage(lang Language) bool {
	switch lang {
	case LanguagePL, LanguageEN:
		return true
	default:
		return false
	}
}
