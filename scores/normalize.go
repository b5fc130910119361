// Package scores fetches provider scoreboards and maps them onto game records.
package scores

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"sports-home-automation/game"
)

var (
	// ErrSchemaMismatch marks a payload that is missing required fields or has
	// them in the wrong shape.
	ErrSchemaMismatch = crerr.New("score payload schema mismatch")
	// ErrNoData marks a provider response that carried nothing usable
	// (non-2xx, oversize body).
	ErrNoData = crerr.New("score provider returned no data")
	// ErrTeamNotInGame marks a located game where neither side carries the
	// tracked team's name.
	ErrTeamNotInGame = crerr.New("team is not a side of the game")
)

func IsSchemaMismatch(err error) bool {
	return crerr.Is(err, ErrSchemaMismatch)
}

func IsNoData(err error) bool {
	return crerr.Is(err, ErrNoData)
}

// Format names a provider payload shape.
type Format string

const (
	FormatNCAA Format = "ncaa"
	FormatESPN Format = "espn"
)

// Side is one team in a candidate game.
type Side struct {
	Name  string
	Score int
}

// Candidate is a provider game mapped into a common shape, before the tracked
// team is known. Err is set when this one game is malformed; the rest of the
// feed is still usable.
type Candidate struct {
	GameID    string
	Sport     game.Sport
	Title     string
	Home      Side
	Away      Side
	Period    string
	Completed bool
	StartTime time.Time
	Err       error
}

// Malformed counts candidates that carry an error.
func Malformed(cands []Candidate) int {
	n := 0
	for _, c := range cands {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Record resolves home/away against team. It fails when the game itself is
// malformed or when neither side carries the team's name. A completed game
// always gets the FINAL marker in its period.
func (c Candidate) Record(team string) (game.Record, error) {
	if c.Err != nil {
		return game.Record{}, c.Err
	}

	var mine, theirs Side
	switch team {
	case c.Home.Name:
		mine, theirs = c.Home, c.Away
	case c.Away.Name:
		mine, theirs = c.Away, c.Home
	default:
		return game.Record{}, fmt.Errorf("%w: %q is neither %q nor %q in game %s",
			ErrTeamNotInGame, team, c.Home.Name, c.Away.Name, c.GameID)
	}

	period := c.Period
	if c.Completed && !game.IsFinalPeriod(period) {
		period = game.FinalMarker
	}
	return game.Record{
		GameID:            c.GameID,
		Sport:             c.Sport,
		MyTeam:            team,
		MyTeamScore:       mine.Score,
		OpposingTeam:      theirs.Name,
		OpposingTeamScore: theirs.Score,
		GamePeriod:        period,
	}, nil
}

// Normalize decodes raw according to format.
func Normalize(raw []byte, format Format, sport game.Sport) ([]Candidate, error) {
	switch format {
	case FormatNCAA:
		return NormalizeNCAA(raw, sport)
	case FormatESPN:
		return NormalizeESPN(raw, sport)
	}
	return nil, fmt.Errorf("unknown score format %q", format)
}

// NormalizeNCAA maps the college aggregator's scoreboard. Only a payload that
// does not decode fails; a bad game is returned with Err set.
func NormalizeNCAA(raw []byte, sport game.Sport) ([]Candidate, error) {
	var resp NCAAResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode ncaa payload: %v", ErrSchemaMismatch, err)
	}

	cands := make([]Candidate, 0, len(resp.Games))
	for i, wrapper := range resp.Games {
		cands = append(cands, ncaaCandidate(wrapper.Game, i, sport))
	}
	return cands, nil
}

func ncaaCandidate(g NCAAGame, index int, sport game.Sport) Candidate {
	cand := Candidate{
		GameID:    g.GameID,
		Sport:     sport,
		Title:     g.Title,
		Home:      Side{Name: g.Home.Names.Short},
		Away:      Side{Name: g.Away.Names.Short},
		Period:    g.CurrentPeriod,
		Completed: g.GameState == "final" || game.IsFinalPeriod(g.CurrentPeriod),
	}
	if epoch, err := strconv.ParseInt(g.StartTimeEpoch, 10, 64); err == nil {
		cand.StartTime = time.Unix(epoch, 0).UTC()
	}

	if g.GameID == "" {
		cand.Err = fmt.Errorf("%w: games[%d] has no gameID", ErrSchemaMismatch, index)
		return cand
	}
	if cand.Home.Name == "" || cand.Away.Name == "" {
		cand.Err = fmt.Errorf("%w: game %s is missing a team name", ErrSchemaMismatch, g.GameID)
		return cand
	}
	var err error
	if cand.Home.Score, err = parseScore(g.Home.Score); err != nil {
		cand.Err = fmt.Errorf("game %s home score: %w", g.GameID, err)
		return cand
	}
	if cand.Away.Score, err = parseScore(g.Away.Score); err != nil {
		cand.Err = fmt.Errorf("game %s away score: %w", g.GameID, err)
	}
	return cand
}

// NormalizeESPN maps the pro-league scoreboard, with the same per-game error
// policy as NormalizeNCAA.
func NormalizeESPN(raw []byte, sport game.Sport) ([]Candidate, error) {
	var resp ESPNResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode espn payload: %v", ErrSchemaMismatch, err)
	}

	cands := make([]Candidate, 0, len(resp.Events))
	for i, event := range resp.Events {
		cands = append(cands, espnCandidate(event, i, sport))
	}
	return cands, nil
}

func espnCandidate(event Event, index int, sport game.Sport) Candidate {
	cand := Candidate{GameID: event.ID, Sport: sport, Title: event.Name, StartTime: event.Date.Time}

	if event.ID == "" {
		cand.Err = fmt.Errorf("%w: events[%d] has no id", ErrSchemaMismatch, index)
		return cand
	}
	if len(event.Competitions) == 0 {
		cand.Err = fmt.Errorf("%w: event %s has no competitions", ErrSchemaMismatch, event.ID)
		return cand
	}
	comp := event.Competitions[0]
	if !comp.Date.IsZero() {
		cand.StartTime = comp.Date.Time
	}

	status := comp.Status
	if status.Type.Name == "" {
		status = event.Status
	}
	cand.Period = espnPeriod(status.Type)
	cand.Completed = status.Type.Completed

	var home, away *Competitor
	for j := range comp.Competitors {
		switch comp.Competitors[j].HomeAway {
		case "home":
			home = &comp.Competitors[j]
		case "away":
			away = &comp.Competitors[j]
		}
	}
	if home == nil || away == nil {
		cand.Err = fmt.Errorf("%w: event %s lacks a home/away pair", ErrSchemaMismatch, event.ID)
		return cand
	}
	cand.Home.Name = home.Team.DisplayName
	cand.Away.Name = away.Team.DisplayName
	if cand.Title == "" {
		cand.Title = cand.Away.Name + " at " + cand.Home.Name
	}
	if cand.Home.Name == "" || cand.Away.Name == "" {
		cand.Err = fmt.Errorf("%w: event %s is missing a team name", ErrSchemaMismatch, event.ID)
		return cand
	}

	var err error
	if cand.Home.Score, err = parseScore(home.Score); err != nil {
		cand.Err = fmt.Errorf("event %s home score: %w", event.ID, err)
		return cand
	}
	if cand.Away.Score, err = parseScore(away.Score); err != nil {
		cand.Err = fmt.Errorf("event %s away score: %w", event.ID, err)
	}
	return cand
}

// espnPeriod keeps the FINAL marker contract: a completed game always carries
// "FINAL" in its period, whatever ESPN's casing.
func espnPeriod(st StatusType) string {
	if st.Completed {
		detail := strings.ToUpper(st.ShortDetail)
		if strings.Contains(detail, game.FinalMarker) {
			return detail
		}
		return game.FinalMarker
	}
	if st.ShortDetail != "" {
		return st.ShortDetail
	}
	return st.Name
}

// parseScore treats an empty score as a game that has not started.
func parseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: score %q is not an integer", ErrSchemaMismatch, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: score %d is negative", ErrSchemaMismatch, n)
	}
	return n, nil
}

// Locate returns the first candidate whose title mentions fragment. An empty
// fragment matches nothing.
func Locate(cands []Candidate, fragment string) (Candidate, bool) {
	if fragment == "" {
		return Candidate{}, false
	}
	for _, c := range cands {
		if strings.Contains(c.Title, fragment) {
			return c, true
		}
	}
	return Candidate{}, false
}
