// Package standings holds the pure tournament arithmetic: deciding a single
// match and turning a set of completed matches into a ranked table.
package standings

import "github.com/clashcup/clanwar-tournament/models"

// Side identifies one side of a match, or a draw.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
	SideDraw Side = "draw"
)

// Winner decides a completed match: higher stars win, equal stars fall back to
// higher destruction, exact ties on both are a draw.
//
// The caller is responsible for only passing completed matches. A missing
// result reads as 0 stars / 0% destruction for both sides and would resolve
// as a spurious draw.
func Winner(m *models.Match) Side {
	var hs, as int
	var hd, ad float64
	if m.Result != nil {
		hs, as = m.Result.Home.Stars, m.Result.Away.Stars
		hd, ad = m.Result.Home.Destruction, m.Result.Away.Destruction
	}

	switch {
	case hs > as:
		return SideHome
	case as > hs:
		return SideAway
	case hd > ad:
		return SideHome
	case ad > hd:
		return SideAway
	default:
		return SideDraw
	}
}

// Loser is the complement of Winner. A draw has no single loser and is
// reported as SideDraw.
func Loser(m *models.Match) Side {
	switch Winner(m) {
	case SideHome:
		return SideAway
	case SideAway:
		return SideHome
	default:
		return SideDraw
	}
}

// TeamID resolves a side to the team id on that side of the match. It returns
// 0 for SideDraw.
func TeamID(m *models.Match, s Side) int {
	switch s {
	case SideHome:
		return m.HomeTeamID
	case SideAway:
		return m.AwayTeamID
	default:
		return 0
	}
}
