package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name already in use")
)

// TeamFilter narrows List results. Nil fields are ignored.
type TeamFilter struct {
	Group *string
	Name  *string
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByName(ctx context.Context, name string) (*models.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateMembers(ctx context.Context, teamID int, members []models.Member) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, clan_tag, level, war_league, leader, logo_key, about, group_label, seed, members, created_at`

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	membersDoc, err := models.EncodeMemberDocument(team.Members)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO teams
			(name, clan_tag, level, war_league, leader, logo_key, about, group_label, seed, members)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		team.Name,
		team.ClanTag,
		team.Level,
		team.WarLeague,
		team.Leader,
		team.LogoKey,
		team.About,
		team.Group,
		team.Seed,
		membersDoc,
	).Scan(&team.ID, &team.CreatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	var rawMembers []byte
	err := rowScanner.Scan(
		&t.ID,
		&t.Name,
		&t.ClanTag,
		&t.Level,
		&t.WarLeague,
		&t.Leader,
		&t.LogoKey,
		&t.About,
		&t.Group,
		&t.Seed,
		&rawMembers,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	// Legacy member shapes are normalized here and never leave the repository.
	members, err := models.DecodeMemberDocument(rawMembers)
	if err != nil {
		return nil, err
	}
	t.Members = members
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	return r.scanTeam(row)
}

func (r *postgresTeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+teamColumns+` FROM teams WHERE name = $1`, name)
	return r.scanTeam(row)
}

func (r *postgresTeamRepository) List(ctx context.Context, filter TeamFilter) ([]*models.Team, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + teamColumns + ` FROM teams WHERE 1=1`)

	args := make([]interface{}, 0, 2)
	placeholderIndex := 1

	if filter.Group != nil {
		queryBuilder.WriteString(" AND group_label = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Group)
		placeholderIndex++
	}
	if filter.Name != nil {
		queryBuilder.WriteString(" AND name = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Name)
		placeholderIndex++
	}

	queryBuilder.WriteString(" ORDER BY name ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, scanErr := r.scanTeam(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	membersDoc, err := models.EncodeMemberDocument(team.Members)
	if err != nil {
		return err
	}

	query := `
		UPDATE teams SET
			name = $1, clan_tag = $2, level = $3, war_league = $4, leader = $5,
			about = $6, group_label = $7, seed = $8, members = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.ClanTag,
		team.Level,
		team.WarLeague,
		team.Leader,
		team.About,
		team.Group,
		team.Seed,
		membersDoc,
		team.ID,
	)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateMembers(ctx context.Context, teamID int, members []models.Member) error {
	membersDoc, err := models.EncodeMemberDocument(members)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET members = $1 WHERE id = $2`, membersDoc, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
	}
	return err
}
