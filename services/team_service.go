package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
	"github.com/clashcup/clanwar-tournament/storage"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	Name      string          `json:"name"`
	ClanTag   string          `json:"clanTag"`
	Level     *int            `json:"level"`
	WarLeague string          `json:"warLeague"`
	Leader    string          `json:"leader"`
	About     string          `json:"about"`
	Group     *string         `json:"group"`
	Seed      *int            `json:"seed"`
	Members   []models.Member `json:"members"`
}

// UpdateTeamInput carries partial updates; nil fields keep the stored value.
type UpdateTeamInput struct {
	Name      *string          `json:"name"`
	ClanTag   *string          `json:"clanTag"`
	Level     *int             `json:"level"`
	WarLeague *string          `json:"warLeague"`
	Leader    *string          `json:"leader"`
	About     *string          `json:"about"`
	Group     *string          `json:"group"`
	Seed      *int             `json:"seed"`
	Members   *[]models.Member `json:"members"`
}

type MemberInput struct {
	Name    string              `json:"name"`
	Role    string              `json:"role"`
	THLevel *int                `json:"thLevel"`
	Heroes  *models.HeroLevels  `json:"heroes"`
	Stats   *models.MemberStats `json:"stats"`
}

// UpdateMemberInput carries partial member updates.
type UpdateMemberInput struct {
	Name    *string             `json:"name"`
	Role    *string             `json:"role"`
	THLevel *int                `json:"thLevel"`
	Heroes  *models.HeroLevels  `json:"heroes"`
	Stats   *models.MemberStats `json:"stats"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error

	AddMember(ctx context.Context, teamID int, input MemberInput) (*models.Team, error)
	UpdateMember(ctx context.Context, teamID int, memberID string, input UpdateMemberInput) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID int, memberID string) (*models.Team, error)

	UploadLogo(ctx context.Context, teamID int, contentType string, body io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo  repositories.TeamRepository
	matchRepo repositories.MatchRepository
	uploader  storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		uploader:  uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	members := input.Members
	if members == nil {
		members = []models.Member{}
	}
	for i := range members {
		if members[i].ID == "" {
			members[i].ID = uuid.NewString()
		}
	}

	team := &models.Team{
		Name:      name,
		ClanTag:   input.ClanTag,
		Level:     input.Level,
		WarLeague: input.WarLeague,
		Leader:    input.Leader,
		About:     input.About,
		Group:     input.Group,
		Seed:      input.Seed,
		Members:   members,
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{})
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		populateTeamLogoURL(t, s.uploader)
		t.MemberCount = len(t.Members)
	}
	return teamsToValues(teams), nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.ClanTag != nil {
		team.ClanTag = *input.ClanTag
	}
	if input.Level != nil {
		team.Level = input.Level
	}
	if input.WarLeague != nil {
		team.WarLeague = *input.WarLeague
	}
	if input.Leader != nil {
		team.Leader = *input.Leader
	}
	if input.About != nil {
		team.About = *input.About
	}
	if input.Group != nil {
		team.Group = input.Group
	}
	if input.Seed != nil {
		team.Seed = input.Seed
	}
	if input.Members != nil {
		members := *input.Members
		for i := range members {
			if members[i].ID == "" {
				members[i].ID = uuid.NewString()
			}
		}
		team.Members = members
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

// DeleteTeam removes the clan and every war it appears in, matching the old
// backend's cascading delete. Wars are removed first so the team row's
// foreign keys do not block the delete.
func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	if _, err := s.teamRepo.GetByID(ctx, id); err != nil {
		return mapTeamRepoError(err)
	}
	if err := s.matchRepo.DeleteByTeam(ctx, id); err != nil {
		return fmt.Errorf("failed to delete wars for clan %d: %w", id, err)
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func (s *teamService) AddMember(ctx context.Context, teamID int, input MemberInput) (*models.Team, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrMemberNameRequired
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	member := models.Member{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Role:    input.Role,
		THLevel: input.THLevel,
	}
	if input.Heroes != nil {
		member.Heroes = *input.Heroes
	}
	if input.Stats != nil {
		member.Stats = *input.Stats
	}

	team.Members = append(team.Members, member)
	if err := s.teamRepo.UpdateMembers(ctx, teamID, team.Members); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) UpdateMember(ctx context.Context, teamID int, memberID string, input UpdateMemberInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	idx := memberIndex(team.Members, memberID)
	if idx < 0 {
		return nil, ErrMemberNotFound
	}

	member := &team.Members[idx]
	if input.Name != nil {
		member.Name = *input.Name
	}
	if input.Role != nil {
		member.Role = *input.Role
	}
	if input.THLevel != nil {
		member.THLevel = input.THLevel
	}
	if input.Heroes != nil {
		member.Heroes = *input.Heroes
	}
	if input.Stats != nil {
		member.Stats = *input.Stats
	}

	if err := s.teamRepo.UpdateMembers(ctx, teamID, team.Members); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID int, memberID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	idx := memberIndex(team.Members, memberID)
	if idx < 0 {
		return nil, ErrMemberNotFound
	}

	team.Members = append(team.Members[:idx], team.Members[idx+1:]...)
	if err := s.teamRepo.UpdateMembers(ctx, teamID, team.Members); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, body io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrLogoUploadsUnavailable
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("teams/%d/logo-%s%s", teamID, uuid.NewString()[:8], ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, body); err != nil {
		return nil, fmt.Errorf("failed to upload logo for clan %d: %w", teamID, err)
	}

	oldKey := team.LogoKey
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, mapTeamRepoError(err)
	}
	if oldKey != nil && *oldKey != "" {
		// Old object removal is best effort.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	team.LogoKey = &key
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func memberIndex(members []models.Member, memberID string) int {
	for i := range members {
		if members[i].ID == memberID {
			return i
		}
	}
	return -1
}

func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrLogoContentType, contentType)
	}
}
