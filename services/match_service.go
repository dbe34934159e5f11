package services

import (
	"context"
	"time"

	"github.com/clashcup/clanwar-tournament/brackets"
	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
)

// BracketNotifier pushes live updates to websocket subscribers of a bracket.
type BracketNotifier interface {
	BroadcastToRoom(room string, message interface{})
}

type CreateMatchInput struct {
	HomeTeamID       int        `json:"homeTeam"`
	AwayTeamID       int        `json:"awayTeam"`
	ScheduledAt      time.Time  `json:"scheduledAt"`
	Status           string     `json:"status"`
	Stage            string     `json:"stage"`
	WarType          string     `json:"warType"`
	Size             int        `json:"size"`
	AttacksPerMember *int       `json:"attacksPerMember"`
	Round            int        `json:"round"`
	BracketID        string     `json:"bracketId"`
}

// UpdateMatchInput carries partial updates; nil fields keep the stored value.
type UpdateMatchInput struct {
	HomeTeamID       *int                `json:"homeTeam"`
	AwayTeamID       *int                `json:"awayTeam"`
	ScheduledAt      *time.Time          `json:"scheduledAt"`
	Status           *string             `json:"status"`
	Stage            *string             `json:"stage"`
	WarType          *string             `json:"warType"`
	Size             *int                `json:"size"`
	AttacksPerMember *int                `json:"attacksPerMember"`
	Round            *int                `json:"round"`
	BracketID        *string             `json:"bracketId"`
	Result           *models.MatchResult `json:"result"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error
}

type matchService struct {
	matchRepo repositories.MatchRepository
	notifier  BracketNotifier
}

func NewMatchService(matchRepo repositories.MatchRepository, notifier BracketNotifier) MatchService {
	return &matchService{matchRepo: matchRepo, notifier: notifier}
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == 0 || input.AwayTeamID == 0 || input.ScheduledAt.IsZero() {
		return nil, ErrMatchFieldsRequired
	}

	warType := models.WarTypeRegular
	if input.WarType != "" {
		warType = models.WarType(input.WarType)
	}

	// Unknown status strings fall back to the schema default.
	status := models.StatusScheduled
	if normalized, ok := models.NormalizeStatus(input.Status); ok {
		status = normalized
	}

	stage := models.StageGroup
	if parsed, ok := models.ValidStage(input.Stage); ok {
		stage = parsed
	}

	size := input.Size
	if size == 0 {
		size = 15
	}
	round := input.Round
	if round == 0 {
		round = 1
	}
	bracketID := input.BracketID
	if bracketID == "" {
		bracketID = "main"
	}

	match := &models.Match{
		HomeTeamID:       input.HomeTeamID,
		AwayTeamID:       input.AwayTeamID,
		ScheduledAt:      input.ScheduledAt,
		Status:           status,
		Stage:            stage,
		WarType:          warType,
		Size:             size,
		AttacksPerMember: derefInt(input.AttacksPerMember, models.DefaultAttacksPerMember(warType)),
		Round:            round,
		BracketID:        bracketID,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		return nil, mapMatchRepoError(err)
	}

	created, err := s.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	s.broadcastMatch(created)
	return created, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	if input.HomeTeamID != nil {
		match.HomeTeamID = *input.HomeTeamID
	}
	if input.AwayTeamID != nil {
		match.AwayTeamID = *input.AwayTeamID
	}
	if input.ScheduledAt != nil {
		match.ScheduledAt = *input.ScheduledAt
	}
	if input.Status != nil {
		// Unknown status strings leave the stored value untouched.
		if normalized, ok := models.NormalizeStatus(*input.Status); ok {
			match.Status = normalized
		}
	}
	if input.Stage != nil {
		if parsed, ok := models.ValidStage(*input.Stage); ok {
			match.Stage = parsed
		}
	}
	if input.WarType != nil {
		match.WarType = models.WarType(*input.WarType)
	}
	if input.Size != nil {
		match.Size = *input.Size
	}
	if input.AttacksPerMember != nil {
		match.AttacksPerMember = *input.AttacksPerMember
	}
	if input.Round != nil {
		match.Round = *input.Round
	}
	if input.BracketID != nil {
		match.BracketID = *input.BracketID
	}
	if input.Result != nil {
		match.Result = input.Result
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, mapMatchRepoError(err)
	}

	updated, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	s.broadcastMatch(updated)
	return updated, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return mapMatchRepoError(err)
	}
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		return mapMatchRepoError(err)
	}
	s.broadcast(match.BracketID, brackets.MessageBracketUpdated, map[string]int{"deleted": id})
	return nil
}

func (s *matchService) broadcastMatch(match *models.Match) {
	s.broadcast(match.BracketID, brackets.MessageMatchUpdated, match)
}

func (s *matchService) broadcast(bracketID, messageType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToRoom(bracketID, brackets.Message{
		Type:    messageType,
		RoomID:  bracketID,
		Payload: payload,
	})
}
