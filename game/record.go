package game

import (
	"fmt"
	"strings"
)

// FinalMarker is the token providers embed in the period once a game is over,
// sometimes with a suffix such as "FINAL/OT".
const FinalMarker = "FINAL"

// Sport identifies which score feed a game came from.
type Sport string

const (
	CollegeFootball  Sport = "cfb"
	MensBasketball   Sport = "mbb"
	WomensBasketball Sport = "wbb"
	ProFootball      Sport = "nfl"
)

// AllSports lists every supported sport in polling order.
var AllSports = []Sport{CollegeFootball, ProFootball, MensBasketball, WomensBasketball}

func (s Sport) Valid() bool {
	switch s {
	case CollegeFootball, MensBasketball, WomensBasketball, ProFootball:
		return true
	}
	return false
}

// IsFootball reports whether the sport belongs to the football family.
func (s Sport) IsFootball() bool {
	return s == CollegeFootball || s == ProFootball
}

func (s Sport) IsBasketball() bool {
	return s == MensBasketball || s == WomensBasketball
}

func (s Sport) DisplayName() string {
	switch s {
	case CollegeFootball:
		return "college football"
	case MensBasketball:
		return "men's basketball"
	case WomensBasketball:
		return "women's basketball"
	case ProFootball:
		return "pro football"
	}
	return string(s)
}

// Record is the canonical snapshot of one tracked game, keyed by GameID.
type Record struct {
	GameID            string `json:"gameId"`
	Sport             Sport  `json:"sport"`
	MyTeam            string `json:"myTeam"`
	MyTeamScore       int    `json:"myTeamScore"`
	OpposingTeam      string `json:"opposingTeam"`
	OpposingTeamScore int    `json:"opposingTeamScore"`
	GamePeriod        string `json:"gamePeriod"`
}

// IsFinal reports whether the period marks the game as over.
func (r Record) IsFinal() bool {
	return IsFinalPeriod(r.GamePeriod)
}

// IsFinalPeriod matches on substring since providers decorate the marker.
func IsFinalPeriod(period string) bool {
	return strings.Contains(period, FinalMarker)
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.GameID) == "" {
		return fmt.Errorf("game record: gameId is required")
	}
	if !r.Sport.Valid() {
		return fmt.Errorf("game record %s: unknown sport %q", r.GameID, r.Sport)
	}
	if r.MyTeamScore < 0 || r.OpposingTeamScore < 0 {
		return fmt.Errorf("game record %s: negative score %d-%d", r.GameID, r.MyTeamScore, r.OpposingTeamScore)
	}
	return nil
}

func (r Record) String() string {
	return fmt.Sprintf("%s %s %d - %s %d (%s)", r.Sport, r.MyTeam, r.MyTeamScore, r.OpposingTeam, r.OpposingTeamScore, r.GamePeriod)
}
