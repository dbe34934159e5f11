package models

import (
	"encoding/json"
	"time"
)

// PlaceholderTeamName is the reserved name of the lazily created team that
// fills knockout slots before real teams are assigned.
const PlaceholderTeamName = "TBD"

type Team struct {
	ID        int       `json:"_id"`
	Name      string    `json:"name"`
	ClanTag   string    `json:"clanTag"`
	Level     *int      `json:"level"`
	WarLeague string    `json:"warLeague"`
	Leader    string    `json:"leader"`
	About     string    `json:"about"`
	Group     *string   `json:"group"`
	Seed      *int      `json:"seed"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`

	LogoKey *string `json:"-"`
	LogoURL *string `json:"logoUrl,omitempty"`

	// MemberCount is filled for list views only.
	MemberCount int `json:"memberCount,omitempty"`
}

type Member struct {
	ID      string      `json:"_id"`
	Name    string      `json:"name"`
	Role    string      `json:"role"`
	THLevel *int        `json:"thLevel"`
	Heroes  HeroLevels  `json:"heroes"`
	Stats   MemberStats `json:"stats"`
}

// HeroLevels tracks the four hero levels shown on the roster cards.
type HeroLevels struct {
	BK int `json:"bk"`
	AQ int `json:"aq"`
	GW int `json:"gw"`
	RC int `json:"rc"`
}

type MemberStats struct {
	Attacks        int     `json:"attacks"`
	Triples        int     `json:"triples"`
	Stars          int     `json:"stars"`
	AvgStars       float64 `json:"avgStars"`
	AvgDestruction float64 `json:"avgDestruction"`
}

// memberDoc is the wire shape of a stored member entry. Older exports use
// "position" where the current schema uses "role".
type memberDoc struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Role     string      `json:"role"`
	Position string      `json:"position"`
	THLevel  *int        `json:"thLevel"`
	Heroes   HeroLevels  `json:"heroes"`
	Stats    MemberStats `json:"stats"`
}

// DecodeMemberDocument normalizes a stored members document into the canonical
// Member shape. It accepts a plain array as well as the legacy object wrappers
// {"members": [...]} and {"players": [...]}. An empty or NULL document yields
// an empty slice. This is the only place legacy shapes are interpreted;
// nothing past the repository layer sees them.
func DecodeMemberDocument(raw []byte) ([]Member, error) {
	if len(raw) == 0 {
		return []Member{}, nil
	}

	var docs []memberDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		var wrapper struct {
			Members []memberDoc `json:"members"`
			Players []memberDoc `json:"players"`
		}
		if wrapErr := json.Unmarshal(raw, &wrapper); wrapErr != nil {
			return nil, err
		}
		docs = wrapper.Members
		if len(docs) == 0 {
			docs = wrapper.Players
		}
	}

	members := make([]Member, 0, len(docs))
	for _, d := range docs {
		role := d.Role
		if role == "" {
			role = d.Position
		}
		members = append(members, Member{
			ID:      d.ID,
			Name:    d.Name,
			Role:    role,
			THLevel: d.THLevel,
			Heroes:  d.Heroes,
			Stats:   d.Stats,
		})
	}
	return members, nil
}

// EncodeMemberDocument serializes members in the canonical shape.
func EncodeMemberDocument(members []Member) ([]byte, error) {
	if members == nil {
		members = []Member{}
	}
	return json.Marshal(members)
}
