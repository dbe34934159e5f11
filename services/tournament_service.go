package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clashcup/clanwar-tournament/brackets"
	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
	"github.com/clashcup/clanwar-tournament/standings"
	"golang.org/x/sync/errgroup"
)

const defaultBracketID = "main"

// groupSize is fixed by the tournament format: four clans per group, the top
// two seed the semifinal and the next two the eliminator.
const groupSize = 4

type CreateGroupStageInput struct {
	Group            string    `json:"group"`
	TeamIDs          []int     `json:"teamIds"`
	ScheduledAt      time.Time `json:"scheduledAt"`
	BracketID        string    `json:"bracketId"`
	WarType          string    `json:"warType"`
	Size             int       `json:"size"`
	AttacksPerMember *int      `json:"attacksPerMember"`
}

type SeedKnockoutInput struct {
	Group            string    `json:"group"`
	BracketID        string    `json:"bracketId"`
	ScheduledAtSemi  time.Time `json:"scheduledAtSemi"`
	ScheduledAtElim  time.Time `json:"scheduledAtElim"`
	WarType          string    `json:"warType"`
	Size             int       `json:"size"`
	AttacksPerMember *int      `json:"attacksPerMember"`
}

type PredesignKnockoutInput struct {
	BracketID        string    `json:"bracketId"`
	WarType          string    `json:"warType"`
	Size             int       `json:"size"`
	AttacksPerMember *int      `json:"attacksPerMember"`
	ScheduledAtSemi1 time.Time `json:"scheduledAtSemi1"`
	ScheduledAtElim  time.Time `json:"scheduledAtElim"`
	ScheduledAtSemi2 time.Time `json:"scheduledAtSemi2"`
	ScheduledAtFinal time.Time `json:"scheduledAtFinal"`
	Status           string    `json:"status"`
}

type PredesignResult struct {
	Count   int            `json:"count"`
	Created []models.Match `json:"created"`
}

type AdvanceKnockoutInput struct {
	BracketID        string    `json:"bracketId"`
	ScheduledAtSemi2 time.Time `json:"scheduledAtSemi2"`
	ScheduledAtFinal time.Time `json:"scheduledAtFinal"`
	WarType          string    `json:"warType"`
	Size             int       `json:"size"`
	AttacksPerMember *int      `json:"attacksPerMember"`
}

type AdvanceResult struct {
	Semifinal2 *models.Match `json:"semifinal2"`
	Final      *models.Match `json:"final"`
}

type GenerateRoundInput struct {
	BracketID        string    `json:"bracketId"`
	TeamIDs          []int     `json:"teamIds"`
	ScheduledAt      time.Time `json:"scheduledAt"`
	Round            int       `json:"round"`
	WarType          string    `json:"warType"`
	Size             int       `json:"size"`
	AttacksPerMember *int      `json:"attacksPerMember"`
}

// TournamentService drives bracket lifecycles: group creation, knockout
// seeding, placeholder predesign and round-to-round advancement. Every
// operation is idempotent with respect to matches it already created.
//
// The idempotency checks are read-then-create and are not transactional; two
// concurrent identical requests can race. Knockout slots are backed by a
// unique index so the loser of such a race gets a conflict, group-stage pairs
// are not (see migrations).
type TournamentService interface {
	CreateGroupStage(ctx context.Context, input CreateGroupStageInput) ([]models.Match, error)
	GroupStandings(ctx context.Context, group string) ([]models.StandingRow, error)
	SeedKnockoutFromGroup(ctx context.Context, input SeedKnockoutInput) ([]models.Match, error)
	PredesignKnockout(ctx context.Context, input PredesignKnockoutInput) (*PredesignResult, error)
	AdvanceKnockout(ctx context.Context, input AdvanceKnockoutInput) (*AdvanceResult, error)
	GenerateRound(ctx context.Context, input GenerateRoundInput) ([]models.Match, error)
}

type tournamentService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	notifier  BracketNotifier
	logger    *slog.Logger
}

func NewTournamentService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	notifier BracketNotifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

type warConfig struct {
	warType          models.WarType
	size             int
	attacksPerMember int
}

func resolveWarConfig(warType string, size int, attacksPerMember *int) warConfig {
	wt := models.WarTypeRegular
	if warType != "" {
		wt = models.WarType(warType)
	}
	if size == 0 {
		size = 15
	}
	return warConfig{
		warType:          wt,
		size:             size,
		attacksPerMember: derefInt(attacksPerMember, models.DefaultAttacksPerMember(wt)),
	}
}

func defaultBracket(bracketID string) string {
	if bracketID == "" {
		return defaultBracketID
	}
	return bracketID
}

func defaultTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// CreateGroupStage builds the complete round-robin for one four-clan group:
// six round-1 group wars. Re-invocation creates only the pairings that do not
// exist yet; pairing equality ignores home/away order.
func (s *tournamentService) CreateGroupStage(ctx context.Context, input CreateGroupStageInput) ([]models.Match, error) {
	if strings.TrimSpace(input.Group) == "" {
		return nil, ErrGroupRequired
	}
	if len(input.TeamIDs) != groupSize || hasDuplicates(input.TeamIDs) {
		return nil, ErrGroupTeamCount
	}
	if input.ScheduledAt.IsZero() {
		return nil, ErrGroupScheduleRequired
	}

	bracketID := defaultBracket(input.BracketID)
	cfg := resolveWarConfig(input.WarType, input.Size, input.AttacksPerMember)

	existing, err := s.listStageRound(ctx, bracketID, models.StageGroup, 1)
	if err != nil {
		return nil, err
	}

	created := make([]models.Match, 0, 6)
	for i := 0; i < len(input.TeamIDs); i++ {
		for j := i + 1; j < len(input.TeamIDs); j++ {
			home, away := input.TeamIDs[i], input.TeamIDs[j]
			if pairExists(existing, home, away) {
				continue
			}
			match := &models.Match{
				HomeTeamID:       home,
				AwayTeamID:       away,
				ScheduledAt:      input.ScheduledAt,
				Status:           models.StatusScheduled,
				Stage:            models.StageGroup,
				WarType:          cfg.warType,
				Size:             cfg.size,
				AttacksPerMember: cfg.attacksPerMember,
				Round:            1,
				BracketID:        bracketID,
			}
			if err := s.matchRepo.Create(ctx, match); err != nil {
				return nil, mapMatchRepoError(err)
			}
			created = append(created, *match)
		}
	}

	s.logger.InfoContext(ctx, "group stage created",
		slog.String("group", input.Group),
		slog.String("bracket_id", bracketID),
		slog.Int("created", len(created)),
	)
	if len(created) > 0 {
		s.broadcastBracket(bracketID)
	}
	return created, nil
}

// GroupStandings ranks the clans of a group by their completed group-stage
// wars.
func (s *tournamentService) GroupStandings(ctx context.Context, group string) ([]models.StandingRow, error) {
	if strings.TrimSpace(group) == "" {
		return nil, ErrGroupRequired
	}

	var teams []*models.Team
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gCtx, repositories.TeamFilter{Group: &group})
		if err != nil {
			return fmt.Errorf("failed to list clans for group %s: %w", group, err)
		}
		return nil
	})
	g.Go(func() error {
		stage := models.StageGroup
		status := models.StatusCompleted
		var err error
		matches, err = s.matchRepo.List(gCtx, repositories.MatchFilter{Stage: &stage, Status: &status})
		if err != nil {
			return fmt.Errorf("failed to list completed group wars: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return standings.Compute(teamsToValues(teams), matchesToValues(matches)), nil
}

// SeedKnockoutFromGroup takes the group table and pairs ranks 1/2 into the
// round-1 semifinal and ranks 3/4 into the round-1 eliminator. Pairings that
// already exist (in either home/away order) are left alone.
func (s *tournamentService) SeedKnockoutFromGroup(ctx context.Context, input SeedKnockoutInput) ([]models.Match, error) {
	rows, err := s.GroupStandings(ctx, input.Group)
	if err != nil {
		return nil, err
	}
	if len(rows) < groupSize {
		return nil, ErrSeedNotEnoughTeams
	}

	bracketID := defaultBracket(input.BracketID)
	cfg := resolveWarConfig(input.WarType, input.Size, input.AttacksPerMember)

	seeds := []struct {
		stage       models.MatchStage
		home, away  int
		scheduledAt time.Time
	}{
		{models.StageSemifinal, rows[0].TeamID, rows[1].TeamID, defaultTime(input.ScheduledAtSemi)},
		{models.StageEliminator, rows[2].TeamID, rows[3].TeamID, defaultTime(input.ScheduledAtElim)},
	}

	created := make([]models.Match, 0, len(seeds))
	for _, seed := range seeds {
		existing, err := s.listStageRound(ctx, bracketID, seed.stage, 1)
		if err != nil {
			return nil, err
		}
		if pairExists(existing, seed.home, seed.away) {
			continue
		}
		match := &models.Match{
			HomeTeamID:       seed.home,
			AwayTeamID:       seed.away,
			ScheduledAt:      seed.scheduledAt,
			Status:           models.StatusScheduled,
			Stage:            seed.stage,
			WarType:          cfg.warType,
			Size:             cfg.size,
			AttacksPerMember: cfg.attacksPerMember,
			Round:            1,
			BracketID:        bracketID,
		}
		if err := s.matchRepo.Create(ctx, match); err != nil {
			return nil, mapMatchRepoError(err)
		}
		created = append(created, *match)
	}

	s.logger.InfoContext(ctx, "knockout seeded from group",
		slog.String("group", input.Group),
		slog.String("bracket_id", bracketID),
		slog.Int("created", len(created)),
	)
	if len(created) > 0 {
		s.broadcastBracket(bracketID)
	}
	return created, nil
}

// PredesignKnockout creates up to four placeholder wars, all slots taken by
// the shared TBD clan: semifinal round 1, eliminator round 1, semifinal
// round 2 and the round-3 final. Slots that already hold a war are skipped;
// when all four exist the result reports zero created.
func (s *tournamentService) PredesignKnockout(ctx context.Context, input PredesignKnockoutInput) (*PredesignResult, error) {
	bracketID := defaultBracket(input.BracketID)
	cfg := resolveWarConfig(input.WarType, input.Size, input.AttacksPerMember)

	status := models.StatusPreparation
	if normalized, ok := models.NormalizeStatus(input.Status); ok {
		status = normalized
	}

	tbd, err := s.ensurePlaceholderTeam(ctx)
	if err != nil {
		return nil, err
	}

	bracketFilter := repositories.MatchFilter{BracketID: &bracketID}
	existing, err := s.matchRepo.List(ctx, bracketFilter)
	if err != nil {
		return nil, err
	}

	slots := []struct {
		stage       models.MatchStage
		round       int
		scheduledAt time.Time
	}{
		{models.StageSemifinal, 1, defaultTime(input.ScheduledAtSemi1)},
		{models.StageEliminator, 1, defaultTime(input.ScheduledAtElim)},
		{models.StageSemifinal, 2, defaultTime(input.ScheduledAtSemi2)},
		{models.StageFinal, 3, defaultTime(input.ScheduledAtFinal)},
	}

	result := &PredesignResult{Created: []models.Match{}}
	for _, slot := range slots {
		if slotExists(existing, slot.stage, slot.round) {
			continue
		}
		match := &models.Match{
			HomeTeamID:       tbd.ID,
			AwayTeamID:       tbd.ID,
			ScheduledAt:      slot.scheduledAt,
			Status:           status,
			Stage:            slot.stage,
			WarType:          cfg.warType,
			Size:             cfg.size,
			AttacksPerMember: cfg.attacksPerMember,
			Round:            slot.round,
			BracketID:        bracketID,
		}
		if err := s.matchRepo.Create(ctx, match); err != nil {
			return nil, mapMatchRepoError(err)
		}
		result.Created = append(result.Created, *match)
	}
	result.Count = len(result.Created)

	s.logger.InfoContext(ctx, "knockout predesigned",
		slog.String("bracket_id", bracketID),
		slog.Int("created", result.Count),
	)
	if result.Count > 0 {
		s.broadcastBracket(bracketID)
	}
	return result, nil
}

// AdvanceKnockout moves the bracket past round 1. It needs exactly one
// completed round-1 semifinal and one completed round-1 eliminator; a draw in
// either is rejected before anything is written. The round-2 semifinal pairs
// the semifinal loser with the eliminator winner. The final pairs the
// semifinal-1 winner with the round-2 winner; while round 2 is undecided the
// final's away slot temporarily repeats the semifinal-1 winner. That
// self-paired final is a placeholder convention, not a real fixture, and is
// corrected by the admin once round 2 concludes.
func (s *tournamentService) AdvanceKnockout(ctx context.Context, input AdvanceKnockoutInput) (*AdvanceResult, error) {
	bracketID := defaultBracket(input.BracketID)
	cfg := resolveWarConfig(input.WarType, input.Size, input.AttacksPerMember)

	semis, err := s.listStageRound(ctx, bracketID, models.StageSemifinal, 1)
	if err != nil {
		return nil, err
	}
	elims, err := s.listStageRound(ctx, bracketID, models.StageEliminator, 1)
	if err != nil {
		return nil, err
	}
	if len(semis) != 1 || len(elims) != 1 {
		return nil, fmt.Errorf("%w: found %d semifinals and %d eliminators", ErrAdvanceNotReady, len(semis), len(elims))
	}

	semi1, elim := semis[0], elims[0]
	if !semi1.Completed() || !elim.Completed() {
		return nil, fmt.Errorf("%w: both wars must be completed", ErrAdvanceNotReady)
	}

	semiWinner := standings.Winner(semi1)
	elimWinner := standings.Winner(elim)
	if semiWinner == standings.SideDraw || elimWinner == standings.SideDraw {
		return nil, ErrAdvanceOnDraw
	}
	semiWinnerID := standings.TeamID(semi1, semiWinner)
	semiLoserID := standings.TeamID(semi1, standings.Loser(semi1))
	elimWinnerID := standings.TeamID(elim, elimWinner)

	result := &AdvanceResult{}

	semi2, err := s.reuseOrCreate(ctx, bracketID, models.StageSemifinal, 2, func() *models.Match {
		return &models.Match{
			HomeTeamID:       semiLoserID,
			AwayTeamID:       elimWinnerID,
			ScheduledAt:      defaultTime(input.ScheduledAtSemi2),
			Status:           models.StatusScheduled,
			Stage:            models.StageSemifinal,
			WarType:          cfg.warType,
			Size:             cfg.size,
			AttacksPerMember: cfg.attacksPerMember,
			Round:            2,
			BracketID:        bracketID,
		}
	})
	if err != nil {
		return nil, err
	}
	result.Semifinal2 = semi2

	final, err := s.reuseOrCreate(ctx, bracketID, models.StageFinal, 3, func() *models.Match {
		awayID := semiWinnerID
		if semi2.Completed() {
			if w := standings.Winner(semi2); w != standings.SideDraw {
				awayID = standings.TeamID(semi2, w)
			}
		}
		return &models.Match{
			HomeTeamID:       semiWinnerID,
			AwayTeamID:       awayID,
			ScheduledAt:      defaultTime(input.ScheduledAtFinal),
			Status:           models.StatusScheduled,
			Stage:            models.StageFinal,
			WarType:          cfg.warType,
			Size:             cfg.size,
			AttacksPerMember: cfg.attacksPerMember,
			Round:            3,
			BracketID:        bracketID,
		}
	})
	if err != nil {
		return nil, err
	}
	result.Final = final

	s.logger.InfoContext(ctx, "knockout advanced",
		slog.String("bracket_id", bracketID),
		slog.Int("semifinal2_id", semi2.ID),
		slog.Int("final_id", final.ID),
	)
	s.broadcastBracket(bracketID)
	return result, nil
}

// GenerateRound pairs the given clans sequentially (1st vs 2nd, 3rd vs 4th,
// and so on) into wars of one round. A trailing unpaired clan is ignored.
func (s *tournamentService) GenerateRound(ctx context.Context, input GenerateRoundInput) ([]models.Match, error) {
	if len(input.TeamIDs) < 2 {
		return nil, ErrBracketTeamsRequired
	}
	if input.ScheduledAt.IsZero() {
		return nil, ErrBracketTimeRequired
	}

	bracketID := defaultBracket(input.BracketID)
	cfg := resolveWarConfig(input.WarType, input.Size, input.AttacksPerMember)
	round := input.Round
	if round == 0 {
		round = 1
	}

	toCreate := make([]*models.Match, 0, len(input.TeamIDs)/2)
	for i := 0; i+1 < len(input.TeamIDs); i += 2 {
		toCreate = append(toCreate, &models.Match{
			HomeTeamID:       input.TeamIDs[i],
			AwayTeamID:       input.TeamIDs[i+1],
			ScheduledAt:      input.ScheduledAt,
			Status:           models.StatusScheduled,
			Stage:            models.StageGroup,
			WarType:          cfg.warType,
			Size:             cfg.size,
			AttacksPerMember: cfg.attacksPerMember,
			Round:            round,
			BracketID:        bracketID,
		})
	}

	if err := s.matchRepo.CreateBatch(ctx, toCreate); err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.broadcastBracket(bracketID)
	return matchesToValues(toCreate), nil
}

// ensurePlaceholderTeam looks up the reserved TBD clan by name and creates it
// once if absent. A concurrent create losing the name-uniqueness race falls
// back to the winner's row, so callers always share one logical placeholder.
func (s *tournamentService) ensurePlaceholderTeam(ctx context.Context) (*models.Team, error) {
	team, err := s.teamRepo.GetByName(ctx, models.PlaceholderTeamName)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, repositories.ErrTeamNotFound) {
		return nil, err
	}

	tbd := &models.Team{
		Name:    models.PlaceholderTeamName,
		About:   "Placeholder team",
		Members: []models.Member{},
	}
	if createErr := s.teamRepo.Create(ctx, tbd); createErr != nil {
		if errors.Is(createErr, repositories.ErrTeamNameConflict) {
			return s.teamRepo.GetByName(ctx, models.PlaceholderTeamName)
		}
		return nil, createErr
	}
	return tbd, nil
}

func (s *tournamentService) listStageRound(ctx context.Context, bracketID string, stage models.MatchStage, round int) ([]*models.Match, error) {
	return s.matchRepo.List(ctx, repositories.MatchFilter{
		BracketID: &bracketID,
		Stage:     &stage,
		Round:     &round,
	})
}

func (s *tournamentService) reuseOrCreate(ctx context.Context, bracketID string, stage models.MatchStage, round int, build func() *models.Match) (*models.Match, error) {
	existing, err := s.listStageRound(ctx, bracketID, stage, round)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	match := build()
	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *tournamentService) broadcastBracket(bracketID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToRoom(bracketID, brackets.Message{
		Type:   brackets.MessageBracketUpdated,
		RoomID: bracketID,
	})
}

func pairExists(matches []*models.Match, teamA, teamB int) bool {
	for _, m := range matches {
		if m.SamePair(teamA, teamB) {
			return true
		}
	}
	return false
}

func slotExists(matches []*models.Match, stage models.MatchStage, round int) bool {
	for _, m := range matches {
		if m.Stage == stage && m.Round == round {
			return true
		}
	}
	return false
}

func hasDuplicates(ids []int) bool {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
