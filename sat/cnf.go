package sat

import (
	"fmt"

	"github.com/solvor/solvor"
)

// LiteralError is returned by SolveCNF when a clause or assumption contains
// an invalid literal. DIMACS-style literals are nonzero signed integers:
// zero is reserved as the clause terminator and never denotes a variable.
type LiteralError struct {
	Literal int
}

func (e LiteralError) Error() string {
	return fmt.Sprintf("invalid literal %d: literals must be nonzero signed integers", e.Literal)
}

// SolveCNF solves a formula given as a list of clauses of DIMACS-style
// literals: a positive literal k means "variable k is true", a negative
// literal -k means "variable k is false", and variable numbering starts at 1.
// An empty clause makes the formula trivially unsatisfiable.
//
// The assumption literals are held true for this call only. The options'
// conflict and restart budgets bound the search; when one is exhausted the
// result's status is LimitReached and no solution is attached.
//
// The returned error reports configuration problems only (an invalid literal
// or a tautological clause). Infeasibility is not an error: it is reported
// as a result with status Infeasible. On success the solution maps every
// variable number to its value, Iterations counts decisions, and Evaluations
// counts propagations.
func SolveCNF(clauses [][]int, assumptions []int, opts Options) (solvor.Result[map[int]bool], error) {
	var zero solvor.Result[map[int]bool]

	nVars := 0
	for _, clause := range clauses {
		for _, l := range clause {
			if l == 0 {
				return zero, LiteralError{Literal: l}
			}
			if v := absInt(l); v > nVars {
				nVars = v
			}
		}
	}
	for _, l := range assumptions {
		if l == 0 {
			return zero, LiteralError{Literal: l}
		}
		if v := absInt(l); v > nVars {
			nVars = v
		}
	}

	s := NewSolver(opts)
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}

	buf := make([]Literal, 0, 8)
	for _, clause := range clauses {
		buf = buf[:0]
		for _, l := range clause {
			buf = append(buf, fromDIMACS(l))
		}
		if err := s.AddClause(buf); err != nil {
			return zero, err
		}
	}

	assumps := make([]Literal, len(assumptions))
	for i, l := range assumptions {
		assumps[i] = fromDIMACS(l)
	}

	status := s.Solve(assumps...)

	res := solvor.Result[map[int]bool]{
		Iterations:  s.Decisions,
		Evaluations: s.Propagations,
	}
	switch status {
	case True:
		res.Status = solvor.Satisfiable
		model := s.Models[len(s.Models)-1]
		solution := make(map[int]bool, len(model))
		for i, b := range model {
			solution[i+1] = b
		}
		res.Solution = solution
	case False:
		res.Status = solvor.Infeasible
	default:
		res.Status = solvor.LimitReached
	}
	return res, nil
}

// fromDIMACS converts a nonzero 1-based signed literal to the solver's
// 0-based literal encoding.
func fromDIMACS(l int) Literal {
	if l < 0 {
		return NegativeLiteral(-l - 1)
	}
	return PositiveLiteral(l - 1)
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
