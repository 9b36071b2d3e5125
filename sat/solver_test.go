package sat

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/solvor/solvor"
)

// unbounded returns options with no conflict or restart budget so that small
// instances are always solved to completion.
func unbounded() Options {
	opts := DefaultOptions
	opts.MaxConflicts = -1
	opts.MaxRestarts = -1
	return opts
}

// satisfies returns true if the assignment makes at least one literal true in
// every clause.
func satisfies(clauses [][]int, solution map[int]bool) bool {
	for _, clause := range clauses {
		ok := false
		for _, l := range clause {
			if l > 0 && solution[l] || l < 0 && !solution[-l] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// pigeonhole returns clauses placing each of nPigeons in one of nHoles with
// no two pigeons sharing a hole. Unsatisfiable whenever nPigeons > nHoles.
func pigeonhole(nPigeons, nHoles int) [][]int {
	varOf := func(p, h int) int { return p*nHoles + h + 1 }

	clauses := [][]int{}
	for p := 0; p < nPigeons; p++ {
		clause := []int{}
		for h := 0; h < nHoles; h++ {
			clause = append(clause, varOf(p, h))
		}
		clauses = append(clauses, clause)
	}
	for h := 0; h < nHoles; h++ {
		for p1 := 0; p1 < nPigeons; p1++ {
			for p2 := p1 + 1; p2 < nPigeons; p2++ {
				clauses = append(clauses, []int{-varOf(p1, h), -varOf(p2, h)})
			}
		}
	}
	return clauses
}

func TestSolveCNF(t *testing.T) {
	testCases := []struct {
		desc        string
		clauses     [][]int
		assumptions []int
		want        solvor.Status
	}{
		{
			desc:    "simple satisfiable",
			clauses: [][]int{{1, 2}, {-1, 3}, {-2, -3}},
			want:    solvor.Satisfiable,
		},
		{
			desc:    "unit contradiction",
			clauses: [][]int{{1}, {-1}},
			want:    solvor.Infeasible,
		},
		{
			desc:    "empty clause",
			clauses: [][]int{{}},
			want:    solvor.Infeasible,
		},
		{
			desc:    "no clauses",
			clauses: [][]int{},
			want:    solvor.Satisfiable,
		},
		{
			desc:    "implication chain",
			clauses: [][]int{{1}, {-1, 2}, {-2, 3}, {-3, 4}, {-4, 5}},
			want:    solvor.Satisfiable,
		},
		{
			desc:    "implication chain to contradiction",
			clauses: [][]int{{1}, {-1, 2}, {-2, 3}, {-3, -1}},
			want:    solvor.Infeasible,
		},
		{
			desc:    "pigeonhole 3 into 3",
			clauses: pigeonhole(3, 3),
			want:    solvor.Satisfiable,
		},
		{
			desc:    "pigeonhole 4 into 3",
			clauses: pigeonhole(4, 3),
			want:    solvor.Infeasible,
		},
		{
			desc:        "assumption selects branch",
			clauses:     [][]int{{1, 2}, {-1, 3}},
			assumptions: []int{1},
			want:        solvor.Satisfiable,
		},
		{
			desc:        "assumption contradicts unit",
			clauses:     [][]int{{1}},
			assumptions: []int{-1},
			want:        solvor.Infeasible,
		},
		{
			desc:        "contradicting assumptions",
			clauses:     [][]int{{1, 2}},
			assumptions: []int{1, -1},
			want:        solvor.Infeasible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := SolveCNF(tc.clauses, tc.assumptions, unbounded())

			if err != nil {
				t.Fatalf("SolveCNF(): unexpected error %s", err)
			}
			if got.Status != tc.want {
				t.Errorf("Status: got %s, want %s", got.Status, tc.want)
			}
			if got.Status != solvor.Satisfiable {
				if got.Solution != nil {
					t.Errorf("Solution should be nil, got %v", got.Solution)
				}
				return
			}
			if !satisfies(tc.clauses, got.Solution) {
				t.Errorf("Solution %v does not satisfy the clauses", got.Solution)
			}
			for _, a := range tc.assumptions {
				if a > 0 && !got.Solution[a] || a < 0 && got.Solution[-a] {
					t.Errorf("Solution %v violates assumption %d", got.Solution, a)
				}
			}
		})
	}
}

func TestSolveCNF_CompleteSolution(t *testing.T) {
	clauses := [][]int{{1, 2}, {-1, 3}, {-2, -3}}

	got, err := SolveCNF(clauses, nil, unbounded())

	if err != nil {
		t.Fatalf("SolveCNF(): unexpected error %s", err)
	}
	if len(got.Solution) != 3 {
		t.Errorf("Solution should assign all 3 variables, got %v", got.Solution)
	}
	if got.Iterations < 1 {
		t.Errorf("Iterations: got %d, want at least 1 decision", got.Iterations)
	}
	if got.Evaluations < 2 {
		t.Errorf("Evaluations: got %d, want at least 2 propagations", got.Evaluations)
	}
	if got.Objective != 0 {
		t.Errorf("Objective: got %f, want 0", got.Objective)
	}
}

func TestSolveCNF_Deterministic(t *testing.T) {
	clauses := pigeonhole(5, 5)
	clauses = append(clauses, [][]int{{-1, -7}, {-13, -19}, {2, 8, 14}}...)

	first, err := SolveCNF(clauses, nil, unbounded())
	if err != nil {
		t.Fatalf("SolveCNF(): unexpected error %s", err)
	}
	second, err := SolveCNF(clauses, nil, unbounded())
	if err != nil {
		t.Fatalf("SolveCNF(): unexpected error %s", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Two identical runs diverged (-first +second):\n%s", diff)
	}
}

func TestSolveCNF_ConflictBudget(t *testing.T) {
	opts := unbounded()
	opts.MaxConflicts = 1

	got, err := SolveCNF(pigeonhole(6, 5), nil, opts)

	if err != nil {
		t.Fatalf("SolveCNF(): unexpected error %s", err)
	}
	if got.Status != solvor.LimitReached {
		t.Errorf("Status: got %s, want %s", got.Status, solvor.LimitReached)
	}
	if got.Solution != nil {
		t.Errorf("Solution should be nil on LimitReached, got %v", got.Solution)
	}
}

func TestSolveCNF_RestartBudget(t *testing.T) {
	opts := unbounded()
	opts.MaxRestarts = 0

	got, err := SolveCNF(pigeonhole(8, 7), nil, opts)

	if err != nil {
		t.Fatalf("SolveCNF(): unexpected error %s", err)
	}
	if got.Status != solvor.LimitReached {
		t.Errorf("Status: got %s, want %s", got.Status, solvor.LimitReached)
	}
}

func TestSolveCNF_TautologyError(t *testing.T) {
	_, err := SolveCNF([][]int{{1, -1, 2}}, nil, unbounded())

	wantErr := TautologyError{}
	if !errors.As(err, &wantErr) {
		t.Fatalf("SolveCNF(): got error %v, want a TautologyError", err)
	}
	if wantErr.VarID != 0 {
		t.Errorf("TautologyError.VarID: got %d, want 0", wantErr.VarID)
	}
}

func TestSolveCNF_ZeroLiteral(t *testing.T) {
	testCases := []struct {
		desc        string
		clauses     [][]int
		assumptions []int
	}{
		{desc: "in clause", clauses: [][]int{{1, 0}}},
		{desc: "in assumptions", clauses: [][]int{{1}}, assumptions: []int{0}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := SolveCNF(tc.clauses, tc.assumptions, unbounded())

			wantErr := LiteralError{}
			if !errors.As(err, &wantErr) {
				t.Fatalf("SolveCNF(): got error %v, want a LiteralError", err)
			}
		})
	}
}

func TestSolver_AssumptionsDoNotPersist(t *testing.T) {
	s := NewSolver(unbounded())
	x := s.AddVariable()
	y := s.AddVariable()
	if err := s.AddClause([]Literal{PositiveLiteral(x), PositiveLiteral(y)}); err != nil {
		t.Fatalf("AddClause(): unexpected error %s", err)
	}

	if got := s.Solve(PositiveLiteral(x)); got != True {
		t.Fatalf("Solve(x): got %s, want true", got)
	}
	if model := s.Models[len(s.Models)-1]; !model[x] {
		t.Errorf("Solve(x): x should be true, model %v", model)
	}

	// The opposite assumption must succeed too: nothing learnt under the
	// first assumption may pin the variable.
	if got := s.Solve(NegativeLiteral(x)); got != True {
		t.Fatalf("Solve(!x): got %s, want true", got)
	}
	if model := s.Models[len(s.Models)-1]; model[x] || !model[y] {
		t.Errorf("Solve(!x): want x false and y true, model %v", model)
	}
}

func TestSolver_AddClauseNormalization(t *testing.T) {
	s := NewSolver(unbounded())
	x := s.AddVariable()
	y := s.AddVariable()

	// Duplicate literals collapse to a unit clause, directly enqueued.
	if err := s.AddClause([]Literal{PositiveLiteral(x), PositiveLiteral(x)}); err != nil {
		t.Fatalf("AddClause(): unexpected error %s", err)
	}
	if got := s.NumAssigns(); got != 1 {
		t.Errorf("NumAssigns(): got %d, want 1", got)
	}

	// Clauses already satisfied at the root level are dropped.
	if err := s.AddClause([]Literal{PositiveLiteral(x), PositiveLiteral(y)}); err != nil {
		t.Fatalf("AddClause(): unexpected error %s", err)
	}
	if got := s.NumConstraints(); got != 0 {
		t.Errorf("NumConstraints(): got %d, want 0", got)
	}

	if err := s.AddClause([]Literal{PositiveLiteral(y), NegativeLiteral(y)}); !errors.As(err, &TautologyError{}) {
		t.Errorf("AddClause(): got error %v, want a TautologyError", err)
	}
}

func TestSolver_UndeclaredVariable(t *testing.T) {
	s := NewDefaultSolver()
	s.AddVariable()

	if err := s.AddClause([]Literal{PositiveLiteral(1)}); err == nil {
		t.Errorf("AddClause() should reject literals over undeclared variables")
	}
}
