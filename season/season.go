// Package season decides which sports are worth polling on a given date.
//
// Every function takes the date from the caller; nothing here reads the clock.
package season

import (
	"time"

	"sports-home-automation/game"
)

// Gate holds the calendar policy knobs.
type Gate struct {
	// FootballJanuaryLastDay ends football season on that day of January,
	// dropping February as well. Zero keeps the whole of January and February.
	FootballJanuaryLastDay int
}

// IsFootballSeason is August through February.
func IsFootballSeason(date time.Time) bool {
	return Gate{}.IsFootballSeason(date)
}

// IsBasketballSeason is October through April 15.
func IsBasketballSeason(date time.Time) bool {
	month, day := date.Month(), date.Day()
	switch {
	case month >= time.October:
		return true
	case month <= time.March:
		return true
	case month == time.April:
		return day <= 15
	}
	return false
}

func (g Gate) IsFootballSeason(date time.Time) bool {
	month, day := date.Month(), date.Day()
	if month >= time.August {
		return true
	}
	if g.FootballJanuaryLastDay > 0 {
		return month == time.January && day <= g.FootballJanuaryLastDay
	}
	return month <= time.February
}

func (g Gate) IsBasketballSeason(date time.Time) bool {
	return IsBasketballSeason(date)
}

// InSeason dispatches to the sport family's calendar.
func (g Gate) InSeason(sport game.Sport, date time.Time) bool {
	switch {
	case sport.IsFootball():
		return g.IsFootballSeason(date)
	case sport.IsBasketball():
		return g.IsBasketballSeason(date)
	}
	return false
}

// Sports returns the in-season sports in polling order.
func (g Gate) Sports(date time.Time) []game.Sport {
	var out []game.Sport
	for _, sport := range game.AllSports {
		if g.InSeason(sport, date) {
			out = append(out, sport)
		}
	}
	return out
}

// Any reports whether anything at all is in season.
func (g Gate) Any(date time.Time) bool {
	return g.IsFootballSeason(date) || g.IsBasketballSeason(date)
}
