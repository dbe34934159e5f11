package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTournamentFixture() (*stubTeamRepository, *stubMatchRepository, *stubNotifier, TournamentService) {
	teamRepo := newStubTeamRepository()
	matchRepo := newStubMatchRepository()
	notifier := &stubNotifier{}
	svc := NewTournamentService(teamRepo, matchRepo, notifier, testLogger())
	return teamRepo, matchRepo, notifier, svc
}

func seedGroupTeams(teamRepo *stubTeamRepository, group string, names ...string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		g := group
		t := teamRepo.seed(models.Team{Name: name, Group: &g})
		ids = append(ids, t.ID)
	}
	return ids
}

func warResult(hs, as int, hd, ad float64) *models.MatchResult {
	return &models.MatchResult{
		Home: models.SideResult{Stars: hs, Destruction: hd},
		Away: models.SideResult{Stars: as, Destruction: ad},
	}
}

func TestCreateGroupStageRoundRobin(t *testing.T) {
	teamRepo, matchRepo, notifier, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	created, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group:       "A",
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, created, 6, "four clans round-robin into six wars")

	pairs := map[[2]int]bool{}
	for _, m := range created {
		assert.Equal(t, models.StageGroup, m.Stage)
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, models.StatusScheduled, m.Status)
		assert.Equal(t, "main", m.BracketID)
		assert.Equal(t, models.WarTypeRegular, m.WarType)
		assert.Equal(t, 15, m.Size)
		assert.Equal(t, 2, m.AttacksPerMember)
		lo, hi := m.HomeTeamID, m.AwayTeamID
		if lo > hi {
			lo, hi = hi, lo
		}
		pairs[[2]int{lo, hi}] = true
	}
	assert.Len(t, pairs, 6, "every pairing is distinct")
	assert.Equal(t, 1, notifier.count())

	// Re-invocation creates nothing and stays quiet.
	again, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group:       "A",
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Len(t, matchRepo.all(), 6)
	assert.Equal(t, 1, notifier.count())
}

func TestCreateGroupStageFillsOnlyMissingPairs(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	// One pairing pre-exists with home/away swapped.
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[1],
		AwayTeamID: ids[0],
		Stage:      models.StageGroup,
		Round:      1,
		BracketID:  "main",
		Status:     models.StatusScheduled,
	}))

	created, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group:       "A",
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, created, 5)
	assert.Len(t, matchRepo.all(), 6)
}

func TestCreateGroupStageValidation(t *testing.T) {
	_, _, _, svc := newTournamentFixture()
	when := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	_, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group: "  ", TeamIDs: []int{1, 2, 3, 4}, ScheduledAt: when,
	})
	assert.ErrorIs(t, err, ErrGroupRequired)

	_, err = svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group: "A", TeamIDs: []int{1, 2, 3}, ScheduledAt: when,
	})
	assert.ErrorIs(t, err, ErrGroupTeamCount)

	_, err = svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group: "A", TeamIDs: []int{1, 2, 3, 3}, ScheduledAt: when,
	})
	assert.ErrorIs(t, err, ErrGroupTeamCount, "duplicate ids are rejected")

	_, err = svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group: "A", TeamIDs: []int{1, 2, 3, 4},
	})
	assert.ErrorIs(t, err, ErrGroupScheduleRequired)
}

func TestCreateGroupStageCWLDefaultsToOneAttack(t *testing.T) {
	teamRepo, _, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	created, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group:       "A",
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		WarType:     "cwl",
		Size:        30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created)
	for _, m := range created {
		assert.Equal(t, models.WarTypeCWL, m.WarType)
		assert.Equal(t, 30, m.Size)
		assert.Equal(t, 1, m.AttacksPerMember)
	}
}

// playGroup completes a full group so that the final table ranks
// T1 > T2 > T3 > T4.
func playGroup(t *testing.T, matchRepo *stubMatchRepository, svc TournamentService, ids []int) {
	t.Helper()

	created, err := svc.CreateGroupStage(context.Background(), CreateGroupStageInput{
		Group:       "A",
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, created, 6)

	rank := map[int]int{}
	for pos, id := range ids {
		rank[id] = pos
	}
	for _, m := range matchRepo.all() {
		// Earlier seeded clan always wins 9-3.
		cp := *m
		cp.Status = models.StatusCompleted
		if rank[m.HomeTeamID] < rank[m.AwayTeamID] {
			cp.Result = warResult(9, 3, 90, 40)
		} else {
			cp.Result = warResult(3, 9, 40, 90)
		}
		require.NoError(t, matchRepo.Update(context.Background(), &cp))
	}
}

func TestGroupStandingsRanksCompletedWars(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")
	playGroup(t, matchRepo, svc, ids)

	rows, err := svc.GroupStandings(context.Background(), "A")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "T1", rows[0].Name)
	assert.Equal(t, 9, rows[0].Points)
	assert.Equal(t, "T2", rows[1].Name)
	assert.Equal(t, "T3", rows[2].Name)
	assert.Equal(t, "T4", rows[3].Name)
	assert.Equal(t, 0, rows[3].Points)
}

func TestGroupStandingsRequiresGroup(t *testing.T) {
	_, _, _, svc := newTournamentFixture()
	_, err := svc.GroupStandings(context.Background(), " ")
	assert.ErrorIs(t, err, ErrGroupRequired)
}

func TestSeedKnockoutFromGroup(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")
	playGroup(t, matchRepo, svc, ids)

	created, err := svc.SeedKnockoutFromGroup(context.Background(), SeedKnockoutInput{Group: "A"})
	require.NoError(t, err)
	require.Len(t, created, 2)

	var semi, elim *models.Match
	for i := range created {
		switch created[i].Stage {
		case models.StageSemifinal:
			semi = &created[i]
		case models.StageEliminator:
			elim = &created[i]
		}
	}
	require.NotNil(t, semi)
	require.NotNil(t, elim)

	assert.Equal(t, ids[0], semi.HomeTeamID, "rank 1 hosts the semifinal")
	assert.Equal(t, ids[1], semi.AwayTeamID)
	assert.Equal(t, 1, semi.Round)
	assert.Equal(t, ids[2], elim.HomeTeamID, "rank 3 hosts the eliminator")
	assert.Equal(t, ids[3], elim.AwayTeamID)
	assert.Equal(t, 1, elim.Round)

	// Seeding again is a no-op.
	again, err := svc.SeedKnockoutFromGroup(context.Background(), SeedKnockoutInput{Group: "A"})
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSeedKnockoutNeedsFourRankedTeams(t *testing.T) {
	teamRepo, _, _, svc := newTournamentFixture()
	seedGroupTeams(teamRepo, "A", "T1", "T2", "T3")

	_, err := svc.SeedKnockoutFromGroup(context.Background(), SeedKnockoutInput{Group: "A"})
	assert.ErrorIs(t, err, ErrSeedNotEnoughTeams)
}

func TestPredesignKnockoutCreatesPlaceholderSlots(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()

	result, err := svc.PredesignKnockout(context.Background(), PredesignKnockoutInput{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Count)

	tbd, err := teamRepo.GetByName(context.Background(), models.PlaceholderTeamName)
	require.NoError(t, err)

	type slot struct {
		stage models.MatchStage
		round int
	}
	want := map[slot]bool{
		{models.StageSemifinal, 1}:  true,
		{models.StageEliminator, 1}: true,
		{models.StageSemifinal, 2}:  true,
		{models.StageFinal, 3}:      true,
	}
	for _, m := range matchRepo.all() {
		assert.Equal(t, tbd.ID, m.HomeTeamID)
		assert.Equal(t, tbd.ID, m.AwayTeamID)
		assert.Equal(t, models.StatusPreparation, m.Status)
		delete(want, slot{m.Stage, m.Round})
	}
	assert.Empty(t, want, "all four slots are filled")

	// Second run creates nothing and reuses the TBD clan.
	again, err := svc.PredesignKnockout(context.Background(), PredesignKnockoutInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Count)
	assert.Len(t, matchRepo.all(), 4)

	name := models.PlaceholderTeamName
	teams, err := teamRepo.List(context.Background(), repositories.TeamFilter{Name: &name})
	require.NoError(t, err)
	assert.Len(t, teams, 1, "placeholder clan is a singleton")
}

func TestPredesignKnockoutHonorsStatusAlias(t *testing.T) {
	_, matchRepo, _, svc := newTournamentFixture()

	result, err := svc.PredesignKnockout(context.Background(), PredesignKnockoutInput{Status: "Pending"})
	require.NoError(t, err)
	require.Equal(t, 4, result.Count)
	for _, m := range matchRepo.all() {
		assert.Equal(t, models.StatusScheduled, m.Status)
	}
}

func advanceFixture(t *testing.T) (*stubMatchRepository, TournamentService, []int) {
	t.Helper()
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	// Round-1 semifinal: T1 beats T2 on stars. Round-1 eliminator: T4 beats
	// T3 on stars.
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[0], AwayTeamID: ids[1],
		Stage: models.StageSemifinal, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(9, 6, 80, 50),
	}))
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[2], AwayTeamID: ids[3],
		Stage: models.StageEliminator, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(5, 8, 40, 60),
	}))
	return matchRepo, svc, ids
}

func TestAdvanceKnockout(t *testing.T) {
	matchRepo, svc, ids := advanceFixture(t)

	result, err := svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	require.NoError(t, err)
	require.NotNil(t, result.Semifinal2)
	require.NotNil(t, result.Final)

	semi2 := result.Semifinal2
	assert.Equal(t, models.StageSemifinal, semi2.Stage)
	assert.Equal(t, 2, semi2.Round)
	assert.Equal(t, ids[1], semi2.HomeTeamID, "semifinal loser hosts round 2")
	assert.Equal(t, ids[3], semi2.AwayTeamID, "eliminator winner visits")

	final := result.Final
	assert.Equal(t, models.StageFinal, final.Stage)
	assert.Equal(t, 3, final.Round)
	assert.Equal(t, ids[0], final.HomeTeamID, "semifinal winner hosts the final")
	assert.Equal(t, ids[0], final.AwayTeamID, "away repeats the winner until round 2 concludes")

	assert.Len(t, matchRepo.all(), 4)

	// Advancing again reuses both wars.
	again, err := svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	require.NoError(t, err)
	assert.Equal(t, semi2.ID, again.Semifinal2.ID)
	assert.Equal(t, final.ID, again.Final.ID)
	assert.Len(t, matchRepo.all(), 4)
}

func TestAdvanceKnockoutFinalAwayFromDecidedRoundTwo(t *testing.T) {
	matchRepo, svc, ids := advanceFixture(t)

	// Pre-play round 2: T4 beats T2.
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[1], AwayTeamID: ids[3],
		Stage: models.StageSemifinal, Round: 2, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(4, 7, 55, 77),
	}))

	result, err := svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	require.NoError(t, err)
	assert.Equal(t, ids[0], result.Final.HomeTeamID)
	assert.Equal(t, ids[3], result.Final.AwayTeamID, "decided round 2 fills the away slot")
}

func TestAdvanceKnockoutRejectsDraw(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[0], AwayTeamID: ids[1],
		Stage: models.StageSemifinal, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(7, 7, 80, 80),
	}))
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[2], AwayTeamID: ids[3],
		Stage: models.StageEliminator, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(5, 8, 40, 60),
	}))

	_, err := svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	assert.ErrorIs(t, err, ErrAdvanceOnDraw)
	assert.Len(t, matchRepo.all(), 2, "nothing is written on a rejected draw")
}

func TestAdvanceKnockoutRequiresBothRoundOneWars(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4")

	_, err := svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	assert.ErrorIs(t, err, ErrAdvanceNotReady)

	// Only the semifinal exists, and it is not yet completed.
	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[0], AwayTeamID: ids[1],
		Stage: models.StageSemifinal, Round: 1, BracketID: "main",
		Status: models.StatusBattle,
	}))
	_, err = svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	assert.ErrorIs(t, err, ErrAdvanceNotReady)

	require.NoError(t, matchRepo.Create(context.Background(), &models.Match{
		HomeTeamID: ids[2], AwayTeamID: ids[3],
		Stage: models.StageEliminator, Round: 1, BracketID: "main",
		Status: models.StatusCompleted,
		Result: warResult(5, 8, 40, 60),
	}))
	_, err = svc.AdvanceKnockout(context.Background(), AdvanceKnockoutInput{})
	assert.ErrorIs(t, err, ErrAdvanceNotReady, "incomplete semifinal still blocks advancement")
}

func TestGenerateRoundPairsSequentially(t *testing.T) {
	teamRepo, matchRepo, _, svc := newTournamentFixture()
	ids := seedGroupTeams(teamRepo, "A", "T1", "T2", "T3", "T4", "T5")

	created, err := svc.GenerateRound(context.Background(), GenerateRoundInput{
		TeamIDs:     ids,
		ScheduledAt: time.Date(2026, 9, 5, 18, 0, 0, 0, time.UTC),
		Round:       2,
	})
	require.NoError(t, err)
	require.Len(t, created, 2, "trailing unpaired clan is ignored")

	assert.Equal(t, ids[0], created[0].HomeTeamID)
	assert.Equal(t, ids[1], created[0].AwayTeamID)
	assert.Equal(t, ids[2], created[1].HomeTeamID)
	assert.Equal(t, ids[3], created[1].AwayTeamID)
	for _, m := range created {
		assert.Equal(t, 2, m.Round)
	}
	assert.Len(t, matchRepo.all(), 2)
}

func TestGenerateRoundValidation(t *testing.T) {
	_, _, _, svc := newTournamentFixture()

	_, err := svc.GenerateRound(context.Background(), GenerateRoundInput{
		TeamIDs:     []int{1},
		ScheduledAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrBracketTeamsRequired)

	_, err = svc.GenerateRound(context.Background(), GenerateRoundInput{
		TeamIDs: []int{1, 2},
	})
	assert.ErrorIs(t, err, ErrBracketTimeRequired)
}
