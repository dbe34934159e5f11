package services

import (
	"context"
	"testing"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoardFixture() (*stubTeamRepository, *stubMatchRepository, BoardService) {
	teamRepo := newStubTeamRepository()
	matchRepo := newStubMatchRepository()
	return teamRepo, matchRepo, NewBoardService(teamRepo, matchRepo, nil)
}

func TestLeaderboardCountsEveryCompletedWar(t *testing.T) {
	teamRepo, matchRepo, svc := newBoardFixture()

	alpha := teamRepo.seed(models.Team{Name: "Alpha"})
	bravo := teamRepo.seed(models.Team{Name: "Bravo"})

	// One completed group war and one completed final both count; the
	// scheduled war does not.
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: alpha.ID, AwayTeamID: bravo.ID,
		Stage: models.StageGroup, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(9, 3, 85, 40),
	}))
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: bravo.ID, AwayTeamID: alpha.ID,
		Stage: models.StageFinal, Round: 3, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(8, 5, 75, 60),
	}))
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: alpha.ID, AwayTeamID: bravo.ID,
		Stage: models.StageGroup, Round: 1, BracketID: "main",
		Status: models.StatusScheduled,
	}))

	rows, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 2, r.Played)
	}
	assert.Equal(t, "Alpha", rows[0].Name)
	assert.Equal(t, 3, rows[0].Points)
	assert.Equal(t, 3, rows[1].Points)
	assert.Greater(t, rows[0].StarsDiff, rows[1].StarsDiff)
}

func TestBracketGroupsByRound(t *testing.T) {
	teamRepo, matchRepo, svc := newBoardFixture()

	alpha := teamRepo.seed(models.Team{Name: "Alpha"})
	bravo := teamRepo.seed(models.Team{Name: "Bravo"})

	for _, round := range []int{1, 1, 2, 3} {
		require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
			HomeTeamID: alpha.ID, AwayTeamID: bravo.ID,
			Stage: models.StageSemifinal, Round: round, BracketID: "main",
			Status: models.StatusScheduled,
		}))
	}

	view, err := svc.Bracket(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "main", view.BracketID, "empty id falls back to the default bracket")
	require.Len(t, view.Rounds, 3)
	assert.Equal(t, 1, view.Rounds[0].Round)
	assert.Len(t, view.Rounds[0].Matches, 2)
	assert.Len(t, view.Rounds[1].Matches, 1)
	assert.Len(t, view.Rounds[2].Matches, 1)
}

func TestBracketIgnoresOtherBrackets(t *testing.T) {
	teamRepo, matchRepo, svc := newBoardFixture()

	alpha := teamRepo.seed(models.Team{Name: "Alpha"})
	bravo := teamRepo.seed(models.Team{Name: "Bravo"})

	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: alpha.ID, AwayTeamID: bravo.ID,
		Stage: models.StageGroup, Round: 1, BracketID: "side-cup",
		Status: models.StatusScheduled,
	}))

	view, err := svc.Bracket(context.Background(), "main")
	require.NoError(t, err)
	assert.Empty(t, view.Rounds)
}
