package services

import (
	"errors"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
	"github.com/clashcup/clanwar-tournament/storage"
)

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func teamsToValues(slice []*models.Team) []models.Team {
	result := make([]models.Team, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func matchesToValues(slice []*models.Match) []models.Match {
	result := make([]models.Match, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

// mapTeamRepoError translates repository sentinels into service sentinels.
func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	default:
		return err
	}
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTeamInvalid):
		return ErrMatchTeamInvalid
	case errors.Is(err, repositories.ErrMatchSlotConflict):
		return ErrBracketSlotConflict
	default:
		return err
	}
}
