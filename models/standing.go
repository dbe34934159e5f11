package models

// StandingRow is one ranked leaderboard entry. Rows are derived from the
// completed matches on demand and are never persisted.
//
// DestFor/DestAgainst accumulate literal destruction percentages across
// matches, so TotalDestruction is a sum of percentages and is not itself
// bounded by 100.
type StandingRow struct {
	TeamID int    `json:"teamId"`
	Name   string `json:"name"`

	Played int `json:"played"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`

	StarsFor     int `json:"starsFor"`
	StarsAgainst int `json:"starsAgainst"`
	StarsDiff    int `json:"starsDiff"`

	DestFor     float64 `json:"destFor"`
	DestAgainst float64 `json:"destAgainst"`
	DestDiff    float64 `json:"destDiff"`

	AvgDestFor  float64 `json:"avgDestFor"`
	AvgStarsFor float64 `json:"avgStarsFor"`
	WinRate     float64 `json:"winRate"`

	Points int `json:"points"`

	TotalStars       int     `json:"totalStars"`
	TotalDestruction float64 `json:"totalDestruction"`
}
