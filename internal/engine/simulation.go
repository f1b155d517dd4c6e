// Package engine orchestrates the quarterly turn: it gathers every
// company's decisions, runs the lifecycle, market, production and finance
// systems in a fixed order and advances the economy.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/competitor"
	"github.com/talgya/topaz-sim/internal/decision"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/entropy"
	"github.com/talgya/topaz-sim/internal/report"
)

// DefaultCompanies is the market size in single-player games.
const DefaultCompanies = 8

// ErrMissingDecision is returned when a human-run company has no decision
// for the quarter.
var ErrMissingDecision = errors.New("missing decision")

// Allocation selects how competing companies see each other when demand
// is shared out.
type Allocation string

const (
	// Simultaneous scores every company against the same pre-sales
	// snapshot of the market.
	Simultaneous Allocation = "simultaneous"
	// Sequential processes companies one at a time; each sees the closed
	// state of those before it and the opening state of those after it.
	Sequential Allocation = "sequential"
)

// Options configure a new simulation.
type Options struct {
	Players    int        // human-run companies; 1 means single player
	Seed       int64      // random seed
	Companies  int        // total companies in single-player games; 0 means DefaultCompanies
	Allocation Allocation // empty means Simultaneous
}

// Simulation holds the economy and every company, and advances them one
// quarter per Step.
type Simulation struct {
	Economy    *economy.Economy
	Companies  []*company.State
	Players    int
	Seed       int64
	Allocation Allocation
	Quarters   int // quarters completed

	// Events generated when the economy last advanced; they take effect
	// in the next Step.
	PendingEvents []economy.RandomEvent

	// Reports by quarter, oldest first.
	History [][]report.ManagementReport

	rng *entropy.Source
	ai  *competitor.Generator
}

// StepResult is the outcome of one quarter.
type StepResult struct {
	Quarter int                       `json:"quarter"`
	Year    int                       `json:"year"`
	Reports []report.ManagementReport `json:"reports"`
	Economy economy.Economy           `json:"economy"`
	Events  []economy.RandomEvent     `json:"randomEvents"`
}

// New creates a simulation in the opening position. Single-player games
// fill the market with AI companies assigned strategies in rotation;
// multiplayer games have exactly one company per player.
func New(opts Options) *Simulation {
	players := max(1, opts.Players)
	n := players
	if players == 1 {
		n = opts.Companies
		if n <= 0 {
			n = DefaultCompanies
		}
	}
	alloc := opts.Allocation
	if alloc == "" {
		alloc = Simultaneous
	}

	rng := entropy.New(opts.Seed)
	s := &Simulation{
		Economy:    economy.New(),
		Companies:  make([]*company.State, n),
		Players:    players,
		Seed:       opts.Seed,
		Allocation: alloc,
		rng:        rng,
		ai:         competitor.NewGenerator(opts.Seed, rng),
	}
	for i := range s.Companies {
		c := company.New(fmt.Sprintf("Company %d", i+1))
		if i >= players {
			c.Strategy = string(competitor.ForCompany(i))
		}
		s.Companies[i] = c
	}

	slog.Info("simulation created",
		"companies", n,
		"players", players,
		"seed", opts.Seed,
		"allocation", alloc,
	)
	return s
}

// Human reports whether the company at index i is run by a player.
func (s *Simulation) Human(i int) bool {
	return i < s.Players
}

// resolveDecisions pairs every company with a decision vector, generating
// AI decisions where a single-player game leaves a slot empty. It checks
// for missing multiplayer decisions before drawing anything, so a failed
// call leaves the simulation untouched.
func (s *Simulation) resolveDecisions(supplied []*decision.Decisions) ([]*decision.Decisions, error) {
	if s.Players > 1 {
		for i, c := range s.Companies {
			if i >= len(supplied) || supplied[i] == nil {
				return nil, fmt.Errorf("company %d (%s) with %d players: %w", i, c.Name, s.Players, ErrMissingDecision)
			}
		}
	}

	out := make([]*decision.Decisions, len(s.Companies))
	for i, c := range s.Companies {
		if i < len(supplied) && supplied[i] != nil {
			d := *supplied[i]
			out[i] = &d
			continue
		}
		strategy := competitor.Balanced
		if c.Strategy != "" {
			if st, err := competitor.Parse(c.Strategy); err == nil {
				strategy = st
			}
		}
		d := s.ai.Decide(c, strategy, i, s.Quarters)
		out[i] = &d
	}
	return out, nil
}

// Step runs one quarter for every company. The decisions slice is indexed
// by company; single-player games may leave AI slots nil or omit them.
func (s *Simulation) Step(decisions []*decision.Decisions) (*StepResult, error) {
	all, err := s.resolveDecisions(decisions)
	if err != nil {
		return nil, fmt.Errorf("step Q%d Y%d: %w", s.Economy.Quarter, s.Economy.Year, err)
	}

	q, y := s.Economy.Quarter, s.Economy.Year
	s.applyEvents()

	work := make([]*quarterWork, len(s.Companies))
	for i, c := range s.Companies {
		work[i] = newQuarterWork(i, c, all[i], s.PendingEvents)
	}

	switch s.Allocation {
	case Sequential:
		for _, w := range work {
			s.operate(w)
			s.settle(w, s.allocate(all)[w.index])
		}
	default:
		for _, w := range work {
			s.operate(w)
		}
		demand := s.allocate(all)
		for _, w := range work {
			s.settle(w, demand[w.index])
		}
	}

	reports := make([]report.ManagementReport, len(work))
	for i, w := range work {
		reports[i] = w.rep
		if len(w.rep.Warnings) > 0 && s.Human(i) {
			slog.Warn("decision warnings", "company", w.c.Name, "warnings", w.rep.Warnings)
		}
		slog.Debug("company closed",
			"company", w.c.Name,
			"revenue", w.rep.Revenue,
			"net_profit", w.rep.NetProfit,
			"cash", w.c.Cash,
			"share_price", w.c.SharePrice,
		)
	}
	s.History = append(s.History, reports)
	s.Quarters++

	s.PendingEvents = economy.Advance(s.Economy, s.rng, len(s.Companies))
	for _, ev := range s.PendingEvents {
		slog.Info("random event", "type", ev.Type, "severity", ev.Severity, "description", ev.Description)
	}

	slog.Info("quarter closed",
		"quarter", q,
		"year", y,
		"gdp", s.Economy.GDP,
		"strength", s.Economy.Strength,
		"companies", len(reports),
	)

	return &StepResult{
		Quarter: q,
		Year:    y,
		Reports: reports,
		Economy: *s.Economy,
		Events:  s.PendingEvents,
	}, nil
}

// applyEvents brings the pending events into force for this quarter.
func (s *Simulation) applyEvents() {
	economy.ApplyEvents(s.Economy, s.PendingEvents)
	for i, c := range s.Companies {
		c.CostModifier = 1
		c.StrikeWeeks = 0
		for _, ev := range s.PendingEvents {
			if !ev.Affects(i) {
				continue
			}
			c.CostModifier *= 1 + ev.Effects.CostModifier
			c.StrikeWeeks += ev.Effects.StrikeWeeks
		}
	}
}

// Reports returns the history of one company, oldest first.
func (s *Simulation) Reports(index int) []report.ManagementReport {
	var out []report.ManagementReport
	for _, quarter := range s.History {
		if index >= 0 && index < len(quarter) {
			out = append(out, quarter[index])
		}
	}
	return out
}
