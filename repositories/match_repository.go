package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchTeamInvalid  = errors.New("match references a team that does not exist")
	ErrMatchSlotConflict = errors.New("a match already occupies this bracket slot")
)

// MatchOrder selects the sort used by List.
type MatchOrder int

const (
	OrderByCreated MatchOrder = iota
	OrderByScheduled
	OrderByRound
)

// MatchFilter narrows List results. Nil fields are ignored. TeamID matches
// either side of a match.
type MatchFilter struct {
	BracketID *string
	Stage     *models.MatchStage
	Round     *int
	Status    *models.MatchStatus
	TeamID    *int
	Order     MatchOrder
}

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	CreateBatch(ctx context.Context, matches []*models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
	DeleteByTeam(ctx context.Context, teamID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	m.id, m.home_team_id, m.away_team_id, m.scheduled_at, m.status, m.stage,
	m.war_type, m.size, m.attacks_per_member, m.round, m.bracket_id, m.result, m.created_at,
	h.name, a.name`

const matchJoins = `
	FROM matches m
	JOIN teams h ON h.id = m.home_team_id
	JOIN teams a ON a.id = m.away_team_id`

func encodeResult(result *models.MatchResult) (interface{}, error) {
	if result == nil {
		return nil, nil
	}
	return json.Marshal(result)
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	resultDoc, err := encodeResult(match.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches
			(home_team_id, away_team_id, scheduled_at, status, stage, war_type, size, attacks_per_member, round, bracket_id, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		match.HomeTeamID,
		match.AwayTeamID,
		match.ScheduledAt,
		match.Status,
		match.Stage,
		match.WarType,
		match.Size,
		match.AttacksPerMember,
		match.Round,
		match.BracketID,
		resultDoc,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

// CreateBatch inserts matches one by one. There is no wrapping transaction:
// a failure mid-batch leaves the earlier rows in place (see the bracket
// generation idempotency notes on the tournament service).
func (r *postgresMatchRepository) CreateBatch(ctx context.Context, matches []*models.Match) error {
	for _, match := range matches {
		if err := r.Create(ctx, match); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var rawResult []byte
	var homeName, awayName string

	err := rowScanner.Scan(
		&m.ID,
		&m.HomeTeamID,
		&m.AwayTeamID,
		&m.ScheduledAt,
		&m.Status,
		&m.Stage,
		&m.WarType,
		&m.Size,
		&m.AttacksPerMember,
		&m.Round,
		&m.BracketID,
		&rawResult,
		&m.CreatedAt,
		&homeName,
		&awayName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	if len(rawResult) > 0 {
		var result models.MatchResult
		if err := json.Unmarshal(rawResult, &result); err != nil {
			return nil, err
		}
		m.Result = &result
	}

	m.HomeTeam = &models.TeamRef{ID: m.HomeTeamID, Name: homeName}
	m.AwayTeam = &models.TeamRef{ID: m.AwayTeamID, Name: awayName}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+matchJoins+` WHERE m.id = $1`, id)
	return r.scanMatch(row)
}

func (r *postgresMatchRepository) List(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + matchJoins + ` WHERE 1=1`)

	args := make([]interface{}, 0, 5)
	placeholderIndex := 1

	addCondition := func(clause string, value interface{}) {
		queryBuilder.WriteString(" AND " + clause + " $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.BracketID != nil {
		addCondition("m.bracket_id =", *filter.BracketID)
	}
	if filter.Stage != nil {
		addCondition("m.stage =", *filter.Stage)
	}
	if filter.Round != nil {
		addCondition("m.round =", *filter.Round)
	}
	if filter.Status != nil {
		addCondition("m.status =", *filter.Status)
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND (m.home_team_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(" OR m.away_team_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(")")
		args = append(args, *filter.TeamID)
		placeholderIndex++
	}

	switch filter.Order {
	case OrderByScheduled:
		queryBuilder.WriteString(" ORDER BY m.scheduled_at ASC, m.created_at ASC")
	case OrderByRound:
		queryBuilder.WriteString(" ORDER BY m.round ASC, m.scheduled_at ASC, m.created_at ASC")
	default:
		queryBuilder.WriteString(" ORDER BY m.created_at ASC")
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	resultDoc, err := encodeResult(match.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE matches SET
			home_team_id = $1, away_team_id = $2, scheduled_at = $3, status = $4, stage = $5,
			war_type = $6, size = $7, attacks_per_member = $8, round = $9, bracket_id = $10, result = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		match.HomeTeamID,
		match.AwayTeamID,
		match.ScheduledAt,
		match.Status,
		match.Stage,
		match.WarType,
		match.Size,
		match.AttacksPerMember,
		match.Round,
		match.BracketID,
		resultDoc,
		match.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// DeleteByTeam removes every match the team appears in, on either side.
func (r *postgresMatchRepository) DeleteByTeam(ctx context.Context, teamID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE home_team_id = $1 OR away_team_id = $1`, teamID)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrMatchTeamInvalid
		case "23505": // unique_violation
			if pqErr.Constraint == "uniq_knockout_slot" {
				return ErrMatchSlotConflict
			}
		}
	}
	return err
}
