// Package solvor defines the result contract shared by all the solvers in
// this library. Each solver returns a Result carrying a solution (if any), an
// objective value, its work counters, and a terminal Status, so that callers
// can treat heterogeneous solvers uniformly.
package solvor

import "fmt"

// Status is the terminal outcome of a solve call.
type Status uint8

const (
	// Optimal indicates that a solution was found and proved optimal.
	Optimal Status = iota

	// Satisfiable indicates that a solution was found, with no optimality
	// claim. Pure satisfaction solvers (e.g. the SAT engine) report this
	// status for every solution.
	Satisfiable

	// Infeasible indicates that no solution exists. This is a first-class
	// outcome, not an error.
	Infeasible

	// Unbounded indicates that the objective can be improved without limit.
	Unbounded

	// LimitReached indicates that a work budget was exhausted before the
	// search could conclude. No solution is attached to such results.
	LimitReached
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Satisfiable:
		return "SATISFIABLE"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	case LimitReached:
		return "LIMIT_REACHED"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Result is the outcome of a solve call. The solution type S varies per
// solver (e.g. map[int]bool for the SAT engine, map[string]int for the CP
// model). Solution is only meaningful when Status is Optimal or Satisfiable;
// it is the zero value otherwise.
//
// Iterations and Evaluations are solver-specific work counters. The SAT
// engine reports its decision count as Iterations and its propagation count
// as Evaluations. Satisfaction-only solvers always report an Objective of 0.
type Result[S any] struct {
	Solution    S
	Objective   float64
	Iterations  int64
	Evaluations int64
	Status      Status
}
