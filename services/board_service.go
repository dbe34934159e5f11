package services

import (
	"context"
	"fmt"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
	"github.com/clashcup/clanwar-tournament/standings"
	"github.com/clashcup/clanwar-tournament/storage"
	"golang.org/x/sync/errgroup"
)

// BracketRound is one round of a bracket view, matches in display order.
type BracketRound struct {
	Round   int            `json:"round"`
	Matches []models.Match `json:"matches"`
}

type BracketView struct {
	BracketID string         `json:"bracketId"`
	Rounds    []BracketRound `json:"rounds"`
}

// BoardService serves the public read views: leaderboard, schedule and the
// per-bracket round listing.
type BoardService interface {
	Leaderboard(ctx context.Context) ([]models.StandingRow, error)
	Schedule(ctx context.Context) ([]models.Match, error)
	Bracket(ctx context.Context, bracketID string) (*BracketView, error)
}

type boardService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	uploader  storage.FileUploader
}

func NewBoardService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) BoardService {
	return &boardService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		uploader:  uploader,
	}
}

// Leaderboard ranks every clan by all completed wars, whatever the stage.
func (s *boardService) Leaderboard(ctx context.Context) ([]models.StandingRow, error) {
	var teams []*models.Team
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gCtx, repositories.TeamFilter{})
		if err != nil {
			return fmt.Errorf("failed to list clans: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		status := models.StatusCompleted
		var err error
		matches, err = s.matchRepo.List(gCtx, repositories.MatchFilter{Status: &status})
		if err != nil {
			return fmt.Errorf("failed to list completed wars: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return standings.Compute(teamsToValues(teams), matchesToValues(matches)), nil
}

func (s *boardService) Schedule(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.List(ctx, repositories.MatchFilter{Order: repositories.OrderByScheduled})
	if err != nil {
		return nil, err
	}
	return matchesToValues(matches), nil
}

// Bracket groups the bracket's wars by round, rounds ascending.
func (s *boardService) Bracket(ctx context.Context, bracketID string) (*BracketView, error) {
	bracketID = defaultBracket(bracketID)
	matches, err := s.matchRepo.List(ctx, repositories.MatchFilter{
		BracketID: &bracketID,
		Order:     repositories.OrderByRound,
	})
	if err != nil {
		return nil, err
	}

	view := &BracketView{BracketID: bracketID, Rounds: []BracketRound{}}
	for _, m := range matches {
		if n := len(view.Rounds); n == 0 || view.Rounds[n-1].Round != m.Round {
			view.Rounds = append(view.Rounds, BracketRound{Round: m.Round, Matches: []models.Match{}})
		}
		last := &view.Rounds[len(view.Rounds)-1]
		last.Matches = append(last.Matches, *m)
	}
	return view, nil
}
