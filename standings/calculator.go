package standings

import (
	"math"
	"sort"

	"github.com/clashcup/clanwar-tournament/models"
)

// Points awarded per decided or drawn match.
const (
	pointsWin  = 3
	pointsDraw = 1
)

// Compute builds one ranked row per input team from the completed matches.
//
// Every team gets a row, including teams that played nothing (zero-filled).
// Matches that are not completed, or that reference a team outside the input
// set on either side, are ignored. Identical input always produces identical,
// identically ordered output.
func Compute(teams []models.Team, matches []models.Match) []models.StandingRow {
	table := make(map[int]*models.StandingRow, len(teams))
	order := make([]int, 0, len(teams))
	for _, t := range teams {
		table[t.ID] = &models.StandingRow{TeamID: t.ID, Name: t.Name}
		order = append(order, t.ID)
	}

	for i := range matches {
		m := &matches[i]
		if !m.Completed() {
			continue
		}
		home, okHome := table[m.HomeTeamID]
		away, okAway := table[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}

		var hs, as int
		var hd, ad float64
		if m.Result != nil {
			hs, as = m.Result.Home.Stars, m.Result.Away.Stars
			hd, ad = m.Result.Home.Destruction, m.Result.Away.Destruction
		}

		home.Played++
		away.Played++
		home.StarsFor += hs
		home.StarsAgainst += as
		away.StarsFor += as
		away.StarsAgainst += hs
		home.DestFor += hd
		home.DestAgainst += ad
		away.DestFor += ad
		away.DestAgainst += hd

		switch Winner(m) {
		case SideHome:
			home.Wins++
			away.Losses++
			home.Points += pointsWin
		case SideAway:
			away.Wins++
			home.Losses++
			away.Points += pointsWin
		default:
			home.Draws++
			away.Draws++
			home.Points += pointsDraw
			away.Points += pointsDraw
		}
	}

	rows := make([]models.StandingRow, 0, len(order))
	for _, id := range order {
		r := table[id]
		r.StarsDiff = r.StarsFor - r.StarsAgainst
		r.DestDiff = round2(r.DestFor - r.DestAgainst)
		if r.Played > 0 {
			r.AvgDestFor = round2(r.DestFor / float64(r.Played))
			r.AvgStarsFor = round2(float64(r.StarsFor) / float64(r.Played))
			r.WinRate = round1(float64(r.Wins) / float64(r.Played) * 100)
		}
		r.TotalStars = r.StarsFor
		r.TotalDestruction = round2(r.DestFor)
		rows = append(rows, *r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.StarsDiff != b.StarsDiff {
			return a.StarsDiff > b.StarsDiff
		}
		if a.AvgDestFor != b.AvgDestFor {
			return a.AvgDestFor > b.AvgDestFor
		}
		if a.AvgStarsFor != b.AvgStarsFor {
			return a.AvgStarsFor > b.AvgStarsFor
		}
		return a.Name < b.Name
	})

	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
