package services

import "errors"

// Shared errors used across services and in the HTTP mapping.
var (
	// Not-found
	ErrNotFound       = errors.New("requested resource not found")
	ErrTeamNotFound   = errors.New("clan not found")
	ErrMatchNotFound  = errors.New("war not found")
	ErrMemberNotFound = errors.New("member not found")

	// Validation and business rules
	ErrTeamNameRequired       = errors.New("name required")
	ErrMemberNameRequired     = errors.New("member name required")
	ErrMatchFieldsRequired    = errors.New("homeTeam, awayTeam, scheduledAt required")
	ErrMatchTeamInvalid       = errors.New("referenced team does not exist")
	ErrGroupRequired          = errors.New("group is required")
	ErrGroupTeamCount         = errors.New("group stage requires exactly 4 team ids")
	ErrGroupScheduleRequired  = errors.New("scheduledAt required for group stage wars")
	ErrBracketTeamsRequired   = errors.New("teamIds array of length >= 2 required")
	ErrBracketTimeRequired    = errors.New("scheduledAt required for initial wars")
	ErrSeedNotEnoughTeams     = errors.New("at least 4 ranked teams required to seed the knockout")
	ErrAdvanceNotReady        = errors.New("knockout advancement requires exactly one completed round-1 semifinal and one completed round-1 eliminator")
	ErrAdvanceOnDraw          = errors.New("cannot advance a drawn war, record a decisive result first")
	ErrLogoUploadsUnavailable = errors.New("logo uploads are not configured")
	ErrLogoContentType        = errors.New("unsupported logo content type")

	// Conflicts
	ErrTeamNameConflict    = errors.New("clan name is already in use")
	ErrBracketSlotConflict = errors.New("a war already occupies this bracket slot")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid admin password")
)
