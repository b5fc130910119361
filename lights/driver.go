package lights

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"sports-home-automation/transition"
)

const (
	DefaultHold       = 500 * time.Millisecond
	DefaultWinSteps   = 13
	DefaultScoreSteps = 6
)

// PaletteFunc resolves the ordered colors for a team. An empty team asks for
// the default palette.
type PaletteFunc func(team string) ([]Color, error)

// FixtureOutcome is the result of one PUT within a step.
type FixtureOutcome struct {
	FixtureID int    `json:"fixtureId"`
	Error     string `json:"error,omitempty"`
}

func (o FixtureOutcome) OK() bool { return o.Error == "" }

// StepResult records one color step across the whole fixture group.
type StepResult struct {
	Index    int              `json:"index"`
	Color    Color            `json:"color"`
	Outcomes []FixtureOutcome `json:"outcomes"`
}

// Failed counts fixtures that did not take the step's color.
func (s StepResult) Failed() int {
	n := 0
	for _, o := range s.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Driver runs light shows. Bridge is required; zero values elsewhere fall back
// to the defaults.
type Driver struct {
	Bridge     Bridge
	Hold       time.Duration
	WinSteps   int
	ScoreSteps int
	// MaxConcurrent bounds in-flight PUTs per step; zero means one per fixture.
	MaxConcurrent int
	Sleep         func(ctx context.Context, d time.Duration) error
	OnStep        func(StepResult)
	Logger        *slog.Logger
}

// StepsFor returns how many color steps a transition gets.
func (d *Driver) StepsFor(t transition.Transition) int {
	switch {
	case t.IsWin():
		if d.WinSteps > 0 {
			return d.WinSteps
		}
		return DefaultWinSteps
	case t.Kind == transition.ScoreIncreased:
		if d.ScoreSteps > 0 {
			return d.ScoreSteps
		}
		return DefaultScoreSteps
	}
	return 0
}

// Run cycles the team palette across fixtures. Steps are sequential with a
// hold between them; fixtures within a step are updated concurrently and each
// failure is recorded in the step's outcomes rather than stopping the show.
// The returned error is only for palette resolution or a cancelled context.
func (d *Driver) Run(ctx context.Context, t transition.Transition, fixtures []int, paletteFor PaletteFunc) ([]StepResult, error) {
	steps := d.StepsFor(t)
	if steps == 0 {
		return nil, nil
	}
	logger := d.logger()
	if len(fixtures) == 0 {
		logger.Warn("No fixtures configured for light show", "team", t.Team)
		return nil, nil
	}

	palette, err := paletteFor(t.Team)
	if err != nil {
		return nil, fmt.Errorf("resolve palette for %q: %w", t.Team, err)
	}
	if len(palette) == 0 {
		return nil, fmt.Errorf("palette for %q is empty", t.Team)
	}

	logger.Info("Starting light show", "kind", t.Kind, "team", t.Team, "steps", steps, "fixtures", len(fixtures))
	results := make([]StepResult, 0, steps)
	for i := 0; i < steps; i++ {
		color := palette[i%len(palette)]
		step := StepResult{Index: i, Color: color, Outcomes: d.fanOut(ctx, fixtures, color.State())}
		for _, o := range step.Outcomes {
			if !o.OK() {
				logger.Error("Light update failed", "step", i, "fixtureID", o.FixtureID, "color", color.Name, "error", o.Error)
			}
		}
		results = append(results, step)
		if d.OnStep != nil {
			d.OnStep(step)
		}

		if i == steps-1 {
			break
		}
		if err := d.sleep(ctx, d.hold()); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (d *Driver) fanOut(ctx context.Context, fixtures []int, state State) []FixtureOutcome {
	p := pool.NewWithResults[FixtureOutcome]()
	if d.MaxConcurrent > 0 {
		p = p.WithMaxGoroutines(d.MaxConcurrent)
	}
	for _, id := range fixtures {
		p.Go(func() FixtureOutcome {
			out := FixtureOutcome{FixtureID: id}
			if err := d.Bridge.SetState(ctx, id, state); err != nil {
				out.Error = err.Error()
			}
			return out
		})
	}
	outcomes := p.Wait()
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].FixtureID < outcomes[j].FixtureID })
	return outcomes
}

func (d *Driver) hold() time.Duration {
	if d.Hold > 0 {
		return d.Hold
	}
	return DefaultHold
}

func (d *Driver) sleep(ctx context.Context, dur time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
