// Package competitor generates decisions for computer-run companies. Each
// company follows a fixed strategy; all randomness comes from the
// simulation's shared entropy source.
package competitor

import (
	"errors"
	"fmt"
)

// Strategy is an AI company's competitive posture.
type Strategy string

const (
	Aggressive     Strategy = "aggressive"
	Conservative   Strategy = "conservative"
	Balanced       Strategy = "balanced"
	QualityFocused Strategy = "quality_focused"
	CostLeader     Strategy = "cost_leader"
)

// Strategies lists every strategy in assignment order.
var Strategies = []Strategy{Aggressive, Conservative, Balanced, QualityFocused, CostLeader}

// ErrUnknownStrategy is returned by Parse for an unrecognised name.
var ErrUnknownStrategy = errors.New("unknown competitor strategy")

// Parse converts a strategy name.
func Parse(s string) (Strategy, error) {
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// ForCompany assigns strategies round-robin to AI companies 1..n.
func ForCompany(index int) Strategy {
	return Strategies[(max(1, index)-1)%len(Strategies)]
}
