// Package cp solves models over bounded integer variables by compiling them
// to boolean clauses and running the sat package's CDCL engine. Each integer
// variable is one-hot encoded: one boolean variable per representable value,
// with an exactly-one-true clause set. Constraints compile deterministically
// to a fixed set of clauses over those value literals.
//
// The compiler is a pre/post-processing layer around a single engine
// invocation: every Solve call re-encodes the whole model from scratch and
// decodes the engine's model back to integer values. No learned clauses or
// search state survive between calls.
package cp

import (
	"fmt"

	"github.com/solvor/solvor"
	"github.com/solvor/solvor/sat"
)

// InvalidBoundsError is returned when an integer variable is declared with a
// lower bound greater than its upper bound.
type InvalidBoundsError struct {
	Lower, Upper int
}

func (e InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounds: lower bound %d exceeds upper bound %d", e.Lower, e.Upper)
}

// IntVar is an integer variable with an inclusive domain [Lower, Upper].
// Variables belong to the model that created them.
type IntVar struct {
	id   int
	name string
	lb   int
	ub   int
}

// Name returns the variable's name, or "" for anonymous variables.
func (v *IntVar) Name() string { return v.name }

// Lower returns the inclusive lower bound of the variable's domain.
func (v *IntVar) Lower() int { return v.lb }

// Upper returns the inclusive upper bound of the variable's domain.
func (v *IntVar) Upper() int { return v.ub }

// label returns a printable identifier even for anonymous variables.
func (v *IntVar) label() string {
	if v.name != "" {
		return v.name
	}
	return fmt.Sprintf("_v%d", v.id)
}

// Model is a set of integer variables and constraints over them.
type Model struct {
	vars        []*IntVar
	names       map[string]struct{}
	constraints []Constraint
}

func NewModel() *Model {
	return &Model{names: map[string]struct{}{}}
}

// IntVar declares an integer variable with the inclusive domain [lb, ub].
// Variables with a non-empty name appear in solutions under that name;
// anonymous variables (name == "") are solved for but never reported.
func (m *Model) IntVar(lb, ub int, name string) (*IntVar, error) {
	if lb > ub {
		return nil, InvalidBoundsError{Lower: lb, Upper: ub}
	}
	if name != "" {
		if _, ok := m.names[name]; ok {
			return nil, fmt.Errorf("duplicate variable name %q", name)
		}
		m.names[name] = struct{}{}
	}

	v := &IntVar{id: len(m.vars), name: name, lb: lb, ub: ub}
	m.vars = append(m.vars, v)
	return v, nil
}

// Add adds a constraint to the model. Constraints take effect at the next
// Solve call.
func (m *Model) Add(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// Solve compiles the model to clauses and runs the SAT engine once with the
// given options. The solution maps the name of every named variable to its
// value; anonymous variables and the compiler's internal auxiliaries are
// omitted. An Infeasible or LimitReached engine status is propagated
// unchanged, with no solution attached.
//
// Solving twice, with or without adding constraints in between, repeats the
// full compile-and-search from scratch.
func (m *Model) Solve(opts sat.Options) solvor.Result[map[string]int] {
	enc := newEncoder()
	enc.encodeModel(m)

	res, err := sat.SolveCNF(enc.clauses, nil, opts)
	if err != nil {
		// The encoder only emits well-formed clauses over variables it
		// allocated itself.
		panic(fmt.Sprintf("cp: compiled clauses rejected by the engine: %v", err))
	}

	out := solvor.Result[map[string]int]{
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Status:      res.Status,
	}
	if res.Status == solvor.Satisfiable {
		out.Solution = enc.decode(m, res.Solution)
	}
	return out
}
