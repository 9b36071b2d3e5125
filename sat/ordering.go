package sat

import (
	"github.com/rhartert/yagh"
)

// varOrder selects the next decision variable. Variables are kept in a
// min-heap ordered by negated activity, so the most-recently-conflicted
// variable is popped first. Ties are broken deterministically by the heap
// structure: two searches over the same formula select the same variables in
// the same order.
type varOrder struct {
	size        int
	solver      *Solver
	phase       []LBool
	phaseSaving bool
	heap        *yagh.IntMap[float64]
}

func newVarOrder(s *Solver, nVar int) *varOrder {
	vo := &varOrder{
		size:   nVar,
		solver: s,
		phase:  make([]LBool, nVar),
		heap:   yagh.New[float64](nVar),
	}

	vo.updateAll()
	return vo
}

func (vo *varOrder) update(varID int) {
	if vo.heap.Contains(varID) {
		vo.undo(varID)
	}
}

func (vo *varOrder) updateAll() {
	for i := 0; i < vo.size; i++ {
		vo.undo(i)
	}
}

// undo re-inserts an unassigned variable in the heap with its current
// activity, saving its last value as the preferred phase if phase saving is
// enabled.
func (vo *varOrder) undo(varID int) {
	if vo.phaseSaving {
		vo.phase[varID] = vo.solver.VarValue(varID)
	}

	act := vo.solver.activities[varID]
	vo.heap.Put(varID, -act)
}

// selectLiteral pops the unassigned variable with the highest activity and
// returns it with its preferred polarity (true unless phase saving recorded
// a previous value of false). Must not be called when all variables are
// assigned.
func (vo *varOrder) selectLiteral() Literal {
	for {
		next, ok := vo.heap.Pop()
		if !ok {
			panic("variable selection on a fully assigned problem")
		}
		if vo.solver.VarValue(next.Elem) != Unknown {
			continue // already assigned
		}

		if vo.phase[next.Elem] == False {
			return NegativeLiteral(next.Elem)
		}
		return PositiveLiteral(next.Elem)
	}
}
