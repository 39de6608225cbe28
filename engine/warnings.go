// Package engine computes stage and General Classification standings
// from raw results, a rider registry and a tour configuration. Every
// function is pure: the same inputs always produce the same standings,
// so whole-stage recomputation is safe to retry at any time.
package engine

import "fmt"

// Warning records a recoverable data-quality problem. Warnings are
// accumulated and returned alongside results; they never abort a run.
type Warning struct {
	RiderID string `json:"riderID,omitempty"`
	Stage   int    `json:"stage,omitempty"`
	Reason  string `json:"reason"`
}

// Warnings collects data-quality warnings during a computation.
type Warnings []Warning

func (ws *Warnings) addf(riderID string, stage int, format string, args ...any) {
	*ws = append(*ws, Warning{
		RiderID: riderID,
		Stage:   stage,
		Reason:  fmt.Sprintf(format, args...),
	})
}
