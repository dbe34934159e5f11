package models

import "strings"

// statusAliases maps the synonyms the old admin UI and imports use onto the
// canonical vocabulary.
var statusAliases = map[string]MatchStatus{
	"upcoming":    StatusPreparation,
	"live":        StatusBattle,
	"progress":    StatusInProgress,
	"progressing": StatusInProgress,
	"done":        StatusCompleted,
	"finished":    StatusCompleted,
	"pending":     StatusScheduled,
}

var canonicalStatuses = map[MatchStatus]struct{}{
	StatusScheduled:   {},
	StatusPreparation: {},
	StatusInProgress:  {},
	StatusBattle:      {},
	StatusCompleted:   {},
}

// NormalizeStatus maps a raw status string onto the canonical vocabulary.
// Matching is trimmed and case-insensitive. Unknown input returns ok=false so
// the caller can fall back to a context-specific default; it is never an error.
func NormalizeStatus(raw string) (MatchStatus, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	if _, ok := canonicalStatuses[MatchStatus(v)]; ok {
		return MatchStatus(v), true
	}
	if mapped, ok := statusAliases[v]; ok {
		return mapped, true
	}
	return "", false
}

// ValidStage reports whether the raw string names a known tournament stage.
func ValidStage(raw string) (MatchStage, bool) {
	switch MatchStage(strings.ToLower(strings.TrimSpace(raw))) {
	case StageGroup:
		return StageGroup, true
	case StageEliminator:
		return StageEliminator, true
	case StageQuarterfinal:
		return StageQuarterfinal, true
	case StageSemifinal:
		return StageSemifinal, true
	case StageFinal:
		return StageFinal, true
	default:
		return "", false
	}
}
