// Package transition decides whether a before/after pair of game records is
// worth reacting to.
package transition

import (
	"sports-home-automation/game"
)

// Kind classifies a transition.
type Kind string

const (
	NoOp                    Kind = "noop"
	ScoreIncreased          Kind = "score_increased"
	GameJustWon             Kind = "game_just_won"
	GameJustWonSpecificTeam Kind = "game_just_won_team"
)

// Transition is the detector's verdict. Team is set for GameJustWonSpecificTeam
// and ScoreIncreased.
type Transition struct {
	Kind Kind   `json:"kind"`
	Team string `json:"team,omitempty"`
}

// Notable reports whether the transition should drive an external effect.
func (t Transition) Notable() bool {
	switch t.Kind {
	case ScoreIncreased, GameJustWon, GameJustWonSpecificTeam:
		return true
	}
	return false
}

// IsWin reports whether the transition is one of the win variants.
func (t Transition) IsWin() bool {
	return t.Kind == GameJustWon || t.Kind == GameJustWonSpecificTeam
}

// Snapshot is the part of the previous record the detector compares against.
type Snapshot struct {
	GamePeriod  string
	MyTeamScore int
}

// Context pairs the previous snapshot (nil on first observation) with the
// current record.
type Context struct {
	Previous *Snapshot
	Current  game.Record
}

// NewContext builds a Context from an old/new image pair. A nil old image
// yields a Context without a previous snapshot.
func NewContext(old *game.Record, current game.Record) Context {
	ctx := Context{Current: current}
	if old != nil {
		ctx.Previous = &Snapshot{
			GamePeriod:  old.GamePeriod,
			MyTeamScore: old.MyTeamScore,
		}
	}
	return ctx
}

// Classify is a pure function of its input.
func Classify(c Context) Transition {
	if c.Previous == nil {
		return Transition{Kind: NoOp}
	}

	current := c.Current
	scoreIncreased := current.MyTeamScore > c.Previous.MyTeamScore
	justEnded := !game.IsFinalPeriod(c.Previous.GamePeriod) && current.IsFinal()
	won := justEnded && current.MyTeamScore > current.OpposingTeamScore

	if won {
		if current.MyTeam == "" {
			return Transition{Kind: GameJustWon}
		}
		return Transition{Kind: GameJustWonSpecificTeam, Team: current.MyTeam}
	}

	// Basketball scores too often for a flash per basket.
	if current.Sport.IsFootball() && scoreIncreased {
		return Transition{Kind: ScoreIncreased, Team: current.MyTeam}
	}

	return Transition{Kind: NoOp}
}
