package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/report"
)

// Runner drives a simulation forward quarter by quarter.
type Runner struct {
	Sim      *Simulation
	Quarters int           // quarters to run; 0 runs until the context ends
	Interval time.Duration // pause between quarters; 0 runs flat out

	// Decide supplies the quarter's decisions. Nil leaves every slot to
	// the AI, which only single-player games accept.
	Decide func(s *Simulation) []*decision.Decisions

	// Callbacks, populated during setup.
	OnQuarter func(res *StepResult)                             // every quarter
	OnYearEnd func(year int, reports []report.ManagementReport) // after each Q4
}

// NewRunner creates a runner for sim.
func NewRunner(sim *Simulation, quarters int) *Runner {
	return &Runner{Sim: sim, Quarters: quarters}
}

// Run steps the simulation until the quarter count is reached, the
// context is cancelled or a step fails.
func (r *Runner) Run(ctx context.Context) error {
	slog.Info("runner started", "quarters", r.Quarters, "interval", r.Interval)

	for i := 0; r.Quarters == 0 || i < r.Quarters; i++ {
		if err := ctx.Err(); err != nil {
			slog.Info("runner stopped", "completed", i)
			return err
		}

		if _, err := r.step(); err != nil {
			return fmt.Errorf("quarter %d: %w", i+1, err)
		}

		if r.Interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.Interval):
			}
		}
	}

	slog.Info("runner finished", "quarters", r.Quarters)
	return nil
}

// step advances one quarter and fires the callbacks.
func (r *Runner) step() (*StepResult, error) {
	var decisions []*decision.Decisions
	if r.Decide != nil {
		decisions = r.Decide(r.Sim)
	}

	res, err := r.Sim.Step(decisions)
	if err != nil {
		return nil, err
	}

	if r.OnQuarter != nil {
		r.OnQuarter(res)
	}
	if res.Quarter == 4 && r.OnYearEnd != nil {
		r.OnYearEnd(res.Year, res.Reports)
	}
	return res, nil
}

// QuarterLabel formats a quarter for logs and reports.
func QuarterLabel(quarter, year int) string {
	return fmt.Sprintf("Q%d Year %d", quarter, year)
}
