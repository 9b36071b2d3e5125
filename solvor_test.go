package solvor_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/solvor/solvor"
	"github.com/solvor/solvor/sat"
)

func TestStatus_String(t *testing.T) {
	testCases := []struct {
		status solvor.Status
		want   string
	}{
		{solvor.Optimal, "OPTIMAL"},
		{solvor.Satisfiable, "SATISFIABLE"},
		{solvor.Infeasible, "INFEASIBLE"},
		{solvor.Unbounded, "UNBOUNDED"},
		{solvor.LimitReached, "LIMIT_REACHED"},
		{solvor.Status(42), "Status(42)"},
	}

	for _, tc := range testCases {
		if got := tc.status.String(); got != tc.want {
			t.Errorf("String(): got %q, want %q", got, tc.want)
		}
	}
}

// This test verifies that the engine finds the exact set of models of small
// instances by enumerating them with blocking clauses and comparing against
// an exhaustive truth-table reference.

// loadClauses declares nVars variables and adds the given DIMACS-style
// clauses to the solver.
func loadClauses(t *testing.T, s *sat.Solver, nVars int, clauses [][]int) {
	t.Helper()
	for i := 0; i < nVars; i++ {
		s.AddVariable()
	}
	for _, clause := range clauses {
		lits := make([]sat.Literal, len(clause))
		for i, l := range clause {
			if l < 0 {
				lits[i] = sat.NegativeLiteral(-l - 1)
			} else {
				lits[i] = sat.PositiveLiteral(l - 1)
			}
		}
		if err := s.AddClause(lits); err != nil {
			t.Fatalf("AddClause(%v): unexpected error %s", clause, err)
		}
	}
}

// solveAll returns an unordered list of all the instance's models.
func solveAll(s *sat.Solver) [][]bool {
	for s.Solve() == sat.True {
		// Add a clause forbidding the last model found. Note that literals
		// must be flipped: !(a ^ b ^ c) corresponds to (!a v !b v !c).
		modelClause := make([]sat.Literal, s.NumVariables())
		for i, b := range s.Models[len(s.Models)-1] {
			if b { // literals are flipped
				modelClause[i] = sat.NegativeLiteral(i)
			} else {
				modelClause[i] = sat.PositiveLiteral(i)
			}
		}
		s.AddClause(modelClause)
	}
	return s.Models
}

// bruteForceModels enumerates all assignments of nVars variables and keeps
// those satisfying every clause.
func bruteForceModels(nVars int, clauses [][]int) [][]bool {
	models := [][]bool{}
	for mask := 0; mask < 1<<nVars; mask++ {
		model := make([]bool, nVars)
		for i := range model {
			model[i] = mask>>i&1 == 1
		}

		ok := true
		for _, clause := range clauses {
			satisfied := false
			for _, l := range clause {
				if l > 0 && model[l-1] || l < 0 && !model[-l-1] {
					satisfied = true
					break
				}
			}
			if !satisfied {
				ok = false
				break
			}
		}
		if ok {
			models = append(models, model)
		}
	}
	return models
}

// toString returns a binary string representation of the given model. For
// example, model [true, false, false] results in string "100".
func toString(model []bool) string {
	s := make([]byte, 0, len(model))
	for _, b := range model {
		if b {
			s = append(s, '1')
		} else {
			s = append(s, '0')
		}
	}
	return string(s)
}

func toSet(models [][]bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

func TestSolveAll(t *testing.T) {
	testCases := []struct {
		nVars   int
		clauses [][]int
	}{
		{3, [][]int{{1, 2}, {-1, 3}, {-2, -3}}},
		{3, [][]int{{1, 2, 3}}},
		{1, [][]int{{1}, {-1}}},
		{4, [][]int{{1, 2}, {3, 4}, {-1, -3}}},
		{4, [][]int{{-1, 2}, {-2, 3}, {-3, 4}}},
	}

	for i, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("instance_%d", i), func(t *testing.T) {
			t.Parallel()

			opts := sat.DefaultOptions
			opts.MaxConflicts = -1
			opts.MaxRestarts = -1
			s := sat.NewSolver(opts)
			loadClauses(t, s, tc.nVars, tc.clauses)

			got := toSet(solveAll(s))
			want := toSet(bruteForceModels(tc.nVars, tc.clauses))

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Model mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
