package sat

import (
	"fmt"
	"strings"
)

// TautologyError is returned by AddClause when a clause contains a variable
// and its negation. Such clauses are always true and are rejected at
// construction rather than stored.
type TautologyError struct {
	VarID int
}

func (e TautologyError) Error() string {
	return fmt.Sprintf("tautological clause: variable %d occurs with both polarities", e.VarID)
}

// Clause is a disjunction of at least two distinct literals. The literals at
// positions 0 and 1 are the clause's two watched literals; propagation only
// ever inspects those two positions, an invariant that must hold after every
// reordering of the clause's literals.
type Clause struct {
	learnt   bool
	activity float64

	literals []Literal

	// Position at which the last search for a replacement watch stopped.
	// Restarting the scan from there avoids rescanning the (likely still
	// false) prefix of long clauses. Must always be in [2, len(literals)-1].
	prevPos int
}

// newClause creates a clause from at least two literals and registers it on
// the watch lists of its two watched literals. The literals are copied, so
// callers may reuse the input slice.
//
// For learnt clauses, the literal assigned at the highest decision level is
// moved to position 1. Position 0 holds the asserting literal, so after the
// backjump the clause directly forces it by unit propagation.
func newClause(s *Solver, tmpLiterals []Literal, learnt bool) *Clause {
	c := &Clause{
		learnt:   learnt,
		prevPos:  2,
		literals: make([]Literal, len(tmpLiterals)),
	}
	copy(c.literals, tmpLiterals)

	if learnt {
		maxLevel := -1
		wl := -1
		for i := 1; i < len(c.literals); i++ {
			if level := s.level[c.literals[i].VarID()]; level > maxLevel {
				maxLevel = level
				wl = i
			}
		}
		c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]

		s.bumpClaActivity(c)
		for _, l := range c.literals {
			s.bumpVarActivity(l)
		}
	}

	s.watch(c, c.literals[0].Opposite(), c.literals[1])
	s.watch(c, c.literals[1].Opposite(), c.literals[0])

	return c
}

// locked returns true if the clause is the reason of its first literal's
// assignment. Locked clauses must not be removed from the clause database.
func (c *Clause) locked(s *Solver) bool {
	return s.reason[c.literals[0].VarID()] == c
}

// remove detaches the clause from the watch lists of its watched literals.
func (c *Clause) remove(s *Solver) {
	s.unwatch(c, c.literals[0].Opposite())
	s.unwatch(c, c.literals[1].Opposite())
}

// simplify removes the clause's root-level false literals and returns true if
// the clause is satisfied at the root level. Only literals in positions >= 2
// can be removed: at a root-level fixpoint, no watched literal is false.
func (c *Clause) simplify(s *Solver) bool {
	k := 0
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return true
		case False:
			// discard the literal.
		case Unknown:
			c.literals[k] = l
			k++
		}
	}
	c.literals = c.literals[:k]
	return false
}

// propagate updates the clause after literal l became true. It returns false
// if the clause became conflicting.
func (c *Clause) propagate(s *Solver, l Literal) bool {
	// Make sure that the falsified literal is c.literals[1] so that
	// c.literals[0] is always the literal to be enqueued if all others are
	// false.
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0] = c.literals[1]
		c.literals[1] = opp
	}

	// If c.literals[0] is true, the clause is already satisfied.
	if s.LitValue(c.literals[0]) == True {
		s.watch(c, l, c.literals[0])
		return true
	}

	// Look for a replacement watch, starting from the position at which the
	// previous search stopped. The position might not be valid anymore if the
	// clause was shrunk by a root-level simplification.
	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i, lit := range c.literals[c.prevPos:] {
		if s.LitValue(lit) != False {
			c.prevPos += i
			c.literals[1] = lit
			c.literals[c.prevPos] = opp
			s.watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}
	for i, lit := range c.literals[2:c.prevPos] {
		if s.LitValue(lit) != False {
			c.prevPos = i + 2
			c.literals[1] = lit
			c.literals[c.prevPos] = opp
			s.watch(c, lit.Opposite(), c.literals[0])
			return true
		}
	}

	// All literals in c.literals[1:] are false: the first literal must be
	// true to satisfy the clause. Enqueue it, or signal the conflict.
	s.watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// explainConflict returns the literals that caused the clause to become
// conflicting. The returned slice is owned by the solver and only valid until
// the next explain call.
func (c *Clause) explainConflict(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	if c.learnt {
		s.bumpClaActivity(c)
	}
	return s.tmpReason
}

// explainAssign returns the literals that forced the assignment of the
// clause's first literal.
func (c *Clause) explainAssign(s *Solver) []Literal {
	s.tmpReason = s.tmpReason[:0]
	for _, l := range c.literals[1:] {
		s.tmpReason = append(s.tmpReason, l.Opposite())
	}
	if c.learnt {
		s.bumpClaActivity(c)
	}
	return s.tmpReason
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
