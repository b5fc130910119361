// Package teams holds the tracked-team registry: which teams to follow, in
// which sports, and which colors and fixtures celebrate them.
package teams

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"sports-home-automation/game"
	"sports-home-automation/lights"
)

//go:embed teams.yaml
var defaultRegistry []byte

// Team is one tracked team. Name must equal the provider's team name (short
// name for college feeds, display name for pro feeds); Match is the fragment
// looked for in game titles and defaults to Name.
type Team struct {
	Name     string       `yaml:"name" validate:"required"`
	Match    string       `yaml:"match"`
	Sports   []game.Sport `yaml:"sports" validate:"required,min=1,dive,oneof=cfb mbb wbb nfl"`
	Palette  []string     `yaml:"palette" validate:"required,min=1,dive,required"`
	Fixtures []int        `yaml:"fixtures" validate:"required,min=1,dive,gt=0"`

	colors []lights.Color
}

// Colors returns the resolved palette.
func (t Team) Colors() []lights.Color {
	return append([]lights.Color(nil), t.colors...)
}

// Plays reports whether the team is tracked in sport.
func (t Team) Plays(sport game.Sport) bool {
	for _, s := range t.Sports {
		if s == sport {
			return true
		}
	}
	return false
}

type Registry struct {
	Teams []Team `yaml:"teams" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Parse decodes and validates a registry document.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode team registry: %w", err)
	}
	if err := validate.Struct(&reg); err != nil {
		return nil, fmt.Errorf("invalid team registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Teams))
	for i := range reg.Teams {
		team := &reg.Teams[i]
		if seen[team.Name] {
			return nil, fmt.Errorf("invalid team registry: duplicate team %q", team.Name)
		}
		seen[team.Name] = true
		if team.Match == "" {
			team.Match = team.Name
		}
		for _, name := range team.Palette {
			c, err := lights.ColorByName(name)
			if err != nil {
				return nil, fmt.Errorf("team %s palette: %w", team.Name, err)
			}
			team.colors = append(team.colors, c)
		}
	}
	return &reg, nil
}

// Load reads the registry at path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read team registry: %w", err)
	}
	return Parse(data)
}

func Default() (*Registry, error) {
	return Parse(defaultRegistry)
}

// ForSport lists the teams tracked in sport, in registry order.
func (r *Registry) ForSport(sport game.Sport) []Team {
	var out []Team
	for _, t := range r.Teams {
		if t.Plays(sport) {
			out = append(out, t)
		}
	}
	return out
}

func (r *Registry) Team(name string) (Team, bool) {
	for _, t := range r.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// PaletteFor resolves a team's colors. Unknown or empty names get the first
// team's palette so an anonymous win still lights up.
func (r *Registry) PaletteFor(name string) ([]lights.Color, error) {
	if t, ok := r.Team(name); ok {
		return t.Colors(), nil
	}
	if len(r.Teams) == 0 {
		return nil, fmt.Errorf("no teams registered")
	}
	return r.Teams[0].Colors(), nil
}

// FixtureGroup returns the fixtures for a team, with the same fallback as
// PaletteFor.
func (r *Registry) FixtureGroup(name string) []int {
	if t, ok := r.Team(name); ok {
		return append([]int(nil), t.Fixtures...)
	}
	if len(r.Teams) == 0 {
		return nil
	}
	return append([]int(nil), r.Teams[0].Fixtures...)
}
