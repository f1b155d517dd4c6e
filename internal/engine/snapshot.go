package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/competitor"
	"github.com/talgya/topaz-sim/internal/economy"
	"github.com/talgya/topaz-sim/internal/entropy"
)

// Snapshot is the complete resumable state of a simulation. Report
// history is not included; callers that need it store reports as they
// are produced.
type Snapshot struct {
	Seed          int64                 `json:"seed"`
	Players       int                   `json:"players"`
	Allocation    Allocation            `json:"allocation"`
	Quarters      int                   `json:"quarters"`
	RNGState      uint32                `json:"rng_state"`
	Economy       economy.Economy       `json:"economy"`
	Companies     []*company.State      `json:"companies"`
	PendingEvents []economy.RandomEvent `json:"pending_events,omitempty"`
}

// ErrEmptySnapshot is returned when restoring a snapshot with no companies.
var ErrEmptySnapshot = errors.New("snapshot has no companies")

// Snapshot captures the simulation's state. The result shares nothing
// with the live simulation.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Seed:          s.Seed,
		Players:       s.Players,
		Allocation:    s.Allocation,
		Quarters:      s.Quarters,
		RNGState:      s.rng.State(),
		Economy:       *s.Economy,
		Companies:     make([]*company.State, len(s.Companies)),
		PendingEvents: append([]economy.RandomEvent(nil), s.PendingEvents...),
	}
	for i, c := range s.Companies {
		snap.Companies[i] = c.Clone()
	}
	return snap
}

// Restore rebuilds a simulation from a snapshot. Stepping the result
// reproduces exactly what the snapshotted simulation would have done.
func Restore(snap Snapshot) (*Simulation, error) {
	if len(snap.Companies) == 0 {
		return nil, ErrEmptySnapshot
	}
	if snap.Players > len(snap.Companies) {
		return nil, fmt.Errorf("restore: %d players for %d companies", snap.Players, len(snap.Companies))
	}

	econ := snap.Economy
	rng := entropy.Restore(snap.RNGState)
	s := &Simulation{
		Economy:       &econ,
		Companies:     make([]*company.State, len(snap.Companies)),
		Players:       max(1, snap.Players),
		Seed:          snap.Seed,
		Allocation:    snap.Allocation,
		Quarters:      snap.Quarters,
		PendingEvents: append([]economy.RandomEvent(nil), snap.PendingEvents...),
		rng:           rng,
		ai:            competitor.NewGenerator(snap.Seed, rng),
	}
	if s.Allocation == "" {
		s.Allocation = Simultaneous
	}
	for i, c := range snap.Companies {
		if c == nil {
			return nil, fmt.Errorf("restore: company %d is missing", i)
		}
		s.Companies[i] = c.Clone()
	}
	return s, nil
}
