package services

import (
	"context"
	"sync"

	"github.com/clashcup/clanwar-tournament/models"
	"github.com/clashcup/clanwar-tournament/repositories"
)

// stubTeamRepository is an in-memory TeamRepository for service tests.
type stubTeamRepository struct {
	mu     sync.Mutex
	nextID int
	teams  map[int]*models.Team

	createErr error
}

func newStubTeamRepository() *stubTeamRepository {
	return &stubTeamRepository{teams: make(map[int]*models.Team)}
}

func (r *stubTeamRepository) seed(team models.Team) *models.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	if team.ID == 0 {
		r.nextID++
		team.ID = r.nextID
	} else if team.ID > r.nextID {
		r.nextID = team.ID
	}
	cp := team
	r.teams[cp.ID] = &cp
	return &cp
}

func (r *stubTeamRepository) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, t := range r.teams {
		if t.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	r.nextID++
	team.ID = r.nextID
	cp := *team
	r.teams[team.ID] = &cp
	return nil
}

func (r *stubTeamRepository) GetByID(_ context.Context, id int) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubTeamRepository) GetByName(_ context.Context, name string) (*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *stubTeamRepository) List(_ context.Context, filter repositories.TeamFilter) ([]*models.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Team, 0, len(r.teams))
	for id := 1; id <= r.nextID; id++ {
		t, ok := r.teams[id]
		if !ok {
			continue
		}
		if filter.Group != nil && (t.Group == nil || *t.Group != *filter.Group) {
			continue
		}
		if filter.Name != nil && t.Name != *filter.Name {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubTeamRepository) Update(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	cp := *team
	r.teams[team.ID] = &cp
	return nil
}

func (r *stubTeamRepository) UpdateMembers(_ context.Context, teamID int, members []models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Members = members
	return nil
}

func (r *stubTeamRepository) UpdateLogoKey(_ context.Context, teamID int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *stubTeamRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

// stubMatchRepository is an in-memory MatchRepository for service tests.
type stubMatchRepository struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match

	createErr error
}

func newStubMatchRepository() *stubMatchRepository {
	return &stubMatchRepository{matches: make(map[int]*models.Match)}
}

func (r *stubMatchRepository) all() []*models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0, len(r.matches))
	for id := 1; id <= r.nextID; id++ {
		if m, ok := r.matches[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func (r *stubMatchRepository) Create(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	match.ID = r.nextID
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *stubMatchRepository) CreateBatch(ctx context.Context, matches []*models.Match) error {
	for _, m := range matches {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubMatchRepository) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMatchRepository) List(_ context.Context, filter repositories.MatchFilter) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Match, 0, len(r.matches))
	for id := 1; id <= r.nextID; id++ {
		m, ok := r.matches[id]
		if !ok {
			continue
		}
		if filter.BracketID != nil && m.BracketID != *filter.BracketID {
			continue
		}
		if filter.Stage != nil && m.Stage != *filter.Stage {
			continue
		}
		if filter.Round != nil && m.Round != *filter.Round {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		if filter.TeamID != nil && m.HomeTeamID != *filter.TeamID && m.AwayTeamID != *filter.TeamID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubMatchRepository) Update(_ context.Context, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	r.matches[match.ID] = &cp
	return nil
}

func (r *stubMatchRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *stubMatchRepository) DeleteByTeam(_ context.Context, teamID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.matches {
		if m.HomeTeamID == teamID || m.AwayTeamID == teamID {
			delete(r.matches, id)
		}
	}
	return nil
}

// stubNotifier records broadcasts instead of pushing to websockets.
type stubNotifier struct {
	mu       sync.Mutex
	messages []struct {
		Room    string
		Message interface{}
	}
}

func (n *stubNotifier) BroadcastToRoom(room string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, struct {
		Room    string
		Message interface{}
	}{room, message})
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}
