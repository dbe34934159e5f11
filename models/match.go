package models

import "time"

type MatchStatus string

const (
	StatusScheduled   MatchStatus = "scheduled"
	StatusPreparation MatchStatus = "preparation"
	StatusInProgress  MatchStatus = "in-progress"
	StatusBattle      MatchStatus = "battle"
	StatusCompleted   MatchStatus = "completed"
)

type MatchStage string

const (
	StageGroup        MatchStage = "group"
	StageEliminator   MatchStage = "eliminator"
	StageQuarterfinal MatchStage = "quarterfinal"
	StageSemifinal    MatchStage = "semifinal"
	StageFinal        MatchStage = "final"
)

type WarType string

const (
	WarTypeRegular  WarType = "regular"
	WarTypeCWL      WarType = "cwl"
	WarTypeFriendly WarType = "friendly"
)

// DefaultAttacksPerMember applies the war-type default: CWL wars grant a
// single attack per member, every other war type grants two.
func DefaultAttacksPerMember(warType WarType) int {
	if warType == WarTypeCWL {
		return 1
	}
	return 2
}

type SideResult struct {
	Stars       int     `json:"stars"`
	Destruction float64 `json:"destruction"`
	AttacksUsed int     `json:"attacksUsed"`
}

// MatchResult is meaningful only once the match status is completed.
type MatchResult struct {
	Home SideResult `json:"home"`
	Away SideResult `json:"away"`
}

type Match struct {
	ID               int          `json:"_id"`
	HomeTeamID       int          `json:"-"`
	AwayTeamID       int          `json:"-"`
	ScheduledAt      time.Time    `json:"scheduledAt"`
	Status           MatchStatus  `json:"status"`
	Stage            MatchStage   `json:"stage"`
	WarType          WarType      `json:"warType"`
	Size             int          `json:"size"`
	AttacksPerMember int          `json:"attacksPerMember"`
	Round            int          `json:"round"`
	BracketID        string       `json:"bracketId"`
	Result           *MatchResult `json:"result,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`

	// Populated references, name only in most views.
	HomeTeam *TeamRef `json:"homeTeam"`
	AwayTeam *TeamRef `json:"awayTeam"`
}

// TeamRef is the embedded team reference carried on match payloads.
type TeamRef struct {
	ID   int    `json:"_id"`
	Name string `json:"name"`
}

// Completed reports whether the match has a decided, recorded outcome.
func (m *Match) Completed() bool {
	return m.Status == StatusCompleted
}

// SamePair reports whether the match is between the given two teams,
// ignoring home/away order.
func (m *Match) SamePair(teamA, teamB int) bool {
	return (m.HomeTeamID == teamA && m.AwayTeamID == teamB) ||
		(m.HomeTeamID == teamB && m.AwayTeamID == teamA)
}
