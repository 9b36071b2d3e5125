// Package sat implements a conflict-driven clause learning (CDCL) solver for
// boolean satisfiability. Formulas are conjunctions of clauses over variables
// identified by dense integer IDs. The solver propagates assignments with
// two-watched-literal lists, learns a first-UIP clause on each conflict, and
// restarts on a geometric schedule. Search is bounded by deterministic
// conflict and restart budgets rather than wall-clock time.
package sat

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Number of conflicts before the first restart. The threshold grows
// geometrically after each restart.
const restartInitialConflicts = 100

// Options configures a Solver.
type Options struct {
	// ClauseDecay and VariableDecay control how fast clause and variable
	// activities fade after each conflict.
	ClauseDecay   float64
	VariableDecay float64

	// MaxConflicts is the total number of conflicts allowed in one Solve
	// call before the search gives up. Negative means no limit.
	MaxConflicts int64

	// MaxRestarts is the total number of restarts allowed in one Solve call
	// before the search gives up. Negative means no limit.
	MaxRestarts int64

	// PhaseSaving makes decisions reuse the last value a variable had before
	// it was unassigned. When off, decisions default to true.
	PhaseSaving bool

	// Logger, if non-nil, receives search statistics on each restart and at
	// the end of the search. The solver is silent otherwise.
	Logger logrus.FieldLogger
}

// DefaultOptions are the options used by NewDefaultSolver.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	MaxConflicts:  100,
	MaxRestarts:   100,
	PhaseSaving:   false,
}

// Solver is a CDCL SAT solver. All of its search state (trail, watch lists,
// learnt clauses) belongs to a single Solve call; only the original clauses,
// root-level facts, and variable activities survive between calls.
type Solver struct {
	// Clause database.
	constraints []*Clause
	learnts     []*Clause
	clauseInc   float64
	clauseDecay float64

	// Variable ordering.
	activities  []float64
	varInc      float64
	varDecay    float64
	order       *varOrder
	phaseSaving bool

	// Propagation and watchers.
	watchers  [][]watcher
	propQueue *queue[Literal]

	// Value assigned to each literal.
	assigns []LBool

	// Trail. trailLim[i] is the position in trail at which decision level
	// i+1 starts.
	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	// Assumptions of the current Solve call, assigned at decision levels
	// 1..len(assumptions) before any free decision is made.
	assumptions []Literal

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Search statistics, reset at the start of each Solve call.
	Decisions    int64
	Propagations int64
	Conflicts    int64
	Restarts     int64

	// Budgets (negative = unlimited).
	maxConflicts int64
	maxRestarts  int64

	logger     logrus.FieldLogger
	learntSize ema

	// Models found by successive Solve calls. The last entry is the model of
	// the last successful call.
	Models [][]bool

	// Shared by operations that need to put variables in a set and empty
	// that set efficiently.
	seenVar *resetSet

	// Temporary slices reused across calls to avoid re-allocating them on
	// the hot path.
	tmpWatchers []watcher
	tmpLearnts  []Literal
	tmpReason   []Literal
}

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	// The watching clause to be propagated when the watched literal becomes
	// true.
	clause *Clause

	// Guard is one of the clause's literals, different from the watched one.
	// If the guard is true the clause is satisfied and does not need to be
	// propagated. Checking it avoids loading clauses that cannot conflict.
	guard Literal
}

// NewDefaultSolver returns a solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns an empty solver configured with the given options.
func NewSolver(ops Options) *Solver {
	return &Solver{
		clauseDecay:  ops.ClauseDecay,
		varDecay:     ops.VariableDecay,
		clauseInc:    1,
		varInc:       1,
		propQueue:    newQueue[Literal](128),
		maxConflicts: ops.MaxConflicts,
		maxRestarts:  ops.MaxRestarts,
		phaseSaving:  ops.PhaseSaving,
		logger:       ops.Logger,
		seenVar:      &resetSet{},
	}
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

// VarValue returns the current value of the given variable.
func (s *Solver) VarValue(varID int) LBool {
	return s.assigns[PositiveLiteral(varID)]
}

// LitValue returns the current value of the given literal.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// Level returns the decision level at which the given variable was assigned,
// or -1 if it is unassigned.
func (s *Solver) Level(varID int) int {
	if s.VarValue(varID) == Unknown {
		return -1
	}
	return s.level[varID]
}

// AddVariable declares a new variable and returns its ID. Variable IDs are
// dense and allocated in increasing order starting from 0.
func (s *Solver) AddVariable() int {
	index := s.NumVariables()
	s.watchers = append(s.watchers, nil, nil) // one list per literal
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.activities = append(s.activities, 0)
	s.seenVar.expand()
	return index
}

// AddClause adds a clause over previously declared variables. Duplicate
// literals are merged and root-level false literals are dropped. A clause
// containing a variable and its negation is rejected with a TautologyError.
// Adding the empty clause is legal and marks the formula unsatisfiable.
func (s *Solver) AddClause(literals []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("clauses can only be added at the root level")
	}
	for _, l := range literals {
		if l < 0 || l.VarID() >= s.NumVariables() {
			return fmt.Errorf("literal %s refers to an undeclared variable", l)
		}
	}

	seen := make(map[Literal]struct{}, len(literals))
	kept := make([]Literal, 0, len(literals))
	satisfied := false
	tautVar := -1
	for _, l := range literals {
		if _, ok := seen[l.Opposite()]; ok && tautVar < 0 {
			tautVar = l.VarID()
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}

		switch s.LitValue(l) {
		case True:
			satisfied = true // already true at the root level
		case False:
			// drop the literal.
		default:
			kept = append(kept, l)
		}
	}
	if tautVar >= 0 {
		return TautologyError{VarID: tautVar}
	}
	if satisfied {
		return nil
	}

	switch len(kept) {
	case 0:
		s.unsat = true // empty clause: trivially unsatisfiable
	case 1:
		if !s.enqueue(kept[0], nil) {
			s.unsat = true
		}
	default:
		s.constraints = append(s.constraints, newClause(s, kept, false))
	}
	return nil
}

// watch registers clause c to be propagated when literal watched becomes
// true.
func (s *Solver) watch(c *Clause, watched Literal, guard Literal) {
	s.watchers[watched] = append(s.watchers[watched], watcher{
		clause: c,
		guard:  guard,
	})
}

// unwatch removes clause c from the watch list of the given literal.
func (s *Solver) unwatch(c *Clause, watched Literal) {
	j := 0
	for i := 0; i < len(s.watchers[watched]); i++ {
		if s.watchers[watched][i].clause != c {
			s.watchers[watched][j] = s.watchers[watched][i]
			j++
		}
	}
	s.watchers[watched] = s.watchers[watched][:j]
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// Solve searches for a model of the clauses added so far, with the given
// assumption literals held true for the duration of this call. It returns
// True if a model was found (recorded in Models), False if the formula is
// unsatisfiable under the assumptions, and Unknown if a budget was exhausted
// first.
//
// Each call starts from the original clause database only: learnt clauses
// and the trail of a previous call are discarded, and the assumptions are
// not persisted.
func (s *Solver) Solve(assumptions ...Literal) LBool {
	s.assumptions = append(s.assumptions[:0], assumptions...)
	s.Decisions, s.Propagations, s.Conflicts, s.Restarts = 0, 0, 0, 0
	s.learntSize = newEMA(0.999)
	s.clearLearnts()

	s.order = newVarOrder(s, s.NumVariables())
	s.order.phaseSaving = s.phaseSaving

	conflictLimit := restartInitialConflicts
	learntLimit := s.NumConstraints() / 3

	var status LBool
	for {
		status = s.search(conflictLimit, learntLimit)
		if status != Unknown {
			break
		}
		if s.maxConflicts >= 0 && s.Conflicts >= s.maxConflicts {
			break // conflict budget exhausted
		}
		s.Restarts++
		if s.maxRestarts >= 0 && s.Restarts > s.maxRestarts {
			break // restart budget exhausted
		}
		conflictLimit += conflictLimit / 10
		learntLimit += learntLimit / 20
		s.logStats("restart")
	}

	s.cancelUntil(0)
	s.logStats("search finished")
	return status
}

// clearLearnts discards every learnt clause. Root-level facts derived in a
// previous call are kept, but their reasons are cut so that no removed
// clause stays referenced.
func (s *Solver) clearLearnts() {
	for _, c := range s.learnts {
		c.remove(s)
	}
	s.learnts = s.learnts[:0]
	for _, l := range s.trail {
		s.reason[l.VarID()] = nil
	}
}

// search runs one restart-delimited segment of the search. It returns True
// or False on a definitive answer, and Unknown when the segment's conflict
// limit or the solver's conflict budget is reached.
func (s *Solver) search(conflictLimit, learntLimit int) LBool {
	if s.unsat {
		return False
	}

	conflictCount := 0
	for {
		if conflict := s.propagate(); conflict != nil {
			s.Conflicts++
			conflictCount++

			if s.decisionLevel() == 0 {
				// The conflict does not depend on any decision.
				s.unsat = true
				return False
			}

			learnt, backtrackLevel := s.analyze(conflict)
			s.cancelUntil(backtrackLevel)
			s.record(learnt)

			s.decayClaActivity()
			s.decayVarActivity()

			if s.maxConflicts >= 0 && s.Conflicts >= s.maxConflicts {
				s.cancelUntil(0)
				return Unknown
			}
			if conflictCount >= conflictLimit {
				s.cancelUntil(0) // restart
				return Unknown
			}
			continue
		}

		// No conflict.

		if s.decisionLevel() == 0 && !s.simplifyDB() {
			return False
		}

		if learntLimit > 0 && len(s.learnts)-s.NumAssigns() >= learntLimit {
			s.reduceDB()
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			s.cancelUntil(0)
			return True
		}

		if !s.decide() {
			s.cancelUntil(0)
			return False // contradicted assumption
		}
	}
}

// decide extends the trail by one decision level: the next unassigned
// assumption if any remains, a free decision otherwise. It returns false if
// an assumption is contradicted by the current assignment.
func (s *Solver) decide() bool {
	for s.decisionLevel() < len(s.assumptions) {
		l := s.assumptions[s.decisionLevel()]
		switch s.LitValue(l) {
		case False:
			return false
		case True:
			// Already implied. Open an empty level so that assumption i
			// stays at decision level i+1.
			s.trailLim = append(s.trailLim, len(s.trail))
		default:
			s.assume(l)
			return true
		}
	}

	s.Decisions++
	s.assume(s.order.selectLiteral())
	return true
}

// propagate derives the consequences of the enqueued assignments until
// fixpoint or conflict. It returns the conflicting clause, or nil if the
// fixpoint was reached.
func (s *Solver) propagate() *Clause {
	for s.propQueue.len() > 0 {
		l := s.propQueue.pop()

		s.tmpWatchers = s.tmpWatchers[:0]
		s.tmpWatchers = append(s.tmpWatchers, s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			// No need to propagate the clause if its guard is true. This
			// alters the order in which clauses are propagated and can thus
			// yield different conflicts and learnt clauses, but it avoids
			// loading clauses that cannot propagate anything.
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}

			if w.clause.propagate(s, l) {
				continue
			}

			// The clause is conflicting: copy the remaining watchers back
			// and report it.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQueue.clear()
			return s.tmpWatchers[i].clause
		}
	}

	return nil
}

// enqueue records the assignment of literal l on the trail. It returns false
// if l is already false, which is the conflict signal interpreted by the
// caller; assigning an already true literal is a no-op.
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = s.decisionLevel()
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.propQueue.push(l)
		if from != nil {
			s.Propagations++
		}
		return true
	}
}

func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		return c.explainConflict(s)
	}
	return c.explainAssign(s)
}

// analyze walks backward over the current decision level's implications to
// derive a learnt clause asserting the negation of the first unique
// implication point (FUIP). It returns the learnt clause, with the FUIP
// literal first, and the backjump level: the second-highest decision level
// among the clause's literals (0 if the clause is unit).
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	// Number of unexplained implication nodes at the current decision level.
	// The exploration has converged to a single implication point when it
	// drops to zero.
	nImplicationPoints := 0

	// The first slot is reserved for the FUIP, set at the end.
	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, -1)

	// Next trail entry to look at. Walking the trail by index bounds the
	// analysis independently of the implication graph's shape.
	nextLiteral := len(s.trail) - 1

	l := Literal(-1) // sentinel: explain the conflict itself first
	s.seenVar.clear()
	backtrackLevel := 0

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.contains(v) {
				continue
			}

			s.seenVar.add(v)
			if s.level[v] == s.decisionLevel() {
				nImplicationPoints++
				continue
			}

			s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			if level := s.level[v]; level > backtrackLevel {
				backtrackLevel = level
			}
		}

		// Select the next marked literal on the trail.
		for {
			l = s.trail[nextLiteral]
			nextLiteral--
			confl = s.reason[l.VarID()]
			if s.seenVar.contains(l.VarID()) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
	}

	s.tmpLearnts[0] = l.Opposite()

	return s.tmpLearnts, backtrackLevel
}

// record learns the given clause and enqueues its asserting literal. The
// clause must be asserting: its first literal is unassigned and all others
// are false at the current (post-backjump) level.
func (s *Solver) record(literals []Literal) {
	s.learntSize.add(float64(len(literals)))

	var c *Clause
	if len(literals) > 1 {
		c = newClause(s, literals, true)
		s.learnts = append(s.learnts, c)
	}
	s.enqueue(literals[0], c)
}

// assume opens a new decision level and assigns l within it.
func (s *Solver) assume(l Literal) {
	s.trailLim = append(s.trailLim, len(s.trail))
	s.enqueue(l, nil)
}

func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.undo(v) // saves the phase, so before the unassignment
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

func (s *Solver) cancel() {
	c := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; c != 0; c-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// cancelUntil undoes every assignment above the given decision level.
func (s *Solver) cancelUntil(level int) {
	for s.decisionLevel() > level {
		s.cancel()
	}
}

// simplifyDB removes clauses that are satisfied at the root level and strips
// root-level false literals from the others. Must be called at the root
// level with an empty propagation queue.
func (s *Solver) simplifyDB() bool {
	if l := s.decisionLevel(); l != 0 {
		panic(fmt.Sprintf("simplifyDB called at level %d", l))
	}
	if s.propQueue.len() != 0 {
		panic("simplifyDB called with a non-empty propagation queue")
	}

	if s.unsat || s.propagate() != nil {
		s.unsat = true
		return false
	}

	s.simplifyClauses(&s.learnts)
	s.simplifyClauses(&s.constraints)

	return true
}

func (s *Solver) simplifyClauses(clausesPtr *[]*Clause) {
	clauses := *clausesPtr
	j := 0
	for i := 0; i < len(clauses); i++ {
		if clauses[i].simplify(s) {
			clauses[i].remove(s)
		} else {
			clauses[j] = clauses[i]
			j++
		}
	}
	*clausesPtr = clauses[:j]
}

// reduceDB halves the learnt clause database, keeping the most active
// clauses and every clause that is the reason of a current assignment.
func (s *Solver) reduceDB() {
	lim := s.clauseInc / float64(len(s.learnts))

	sort.Slice(s.learnts, func(i, j int) bool {
		return s.learnts[i].activity < s.learnts[j].activity
	})

	i, j := 0, 0
	for ; i < len(s.learnts)/2; i++ {
		if s.learnts[i].locked(s) {
			s.learnts[j] = s.learnts[i]
			j++
		} else {
			s.learnts[i].remove(s)
		}
	}

	for ; i < len(s.learnts); i++ {
		if !s.learnts[i].locked(s) && s.learnts[i].activity < lim {
			s.learnts[i].remove(s)
		} else {
			s.learnts[j] = s.learnts[i]
			j++
		}
	}

	s.learnts = s.learnts[:j]
}

func (s *Solver) bumpClaActivity(c *Clause) {
	c.activity += s.clauseInc

	if c.activity > 1e100 {
		s.clauseInc *= 1e-100 // important to keep proportions
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) bumpVarActivity(l Literal) {
	vid := l.VarID()
	s.activities[vid] += s.varInc

	if s.activities[vid] > 1e100 {
		s.varInc *= 1e-100 // important to keep proportions
		for i := range s.activities {
			s.activities[i] *= 1e-100
		}
	}

	s.order.update(vid)
}

func (s *Solver) decayClaActivity() {
	s.clauseInc *= s.clauseDecay
}

func (s *Solver) decayVarActivity() {
	s.varInc *= s.varDecay
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			panic("not a model")
		}
		model[i] = lb == True
	}
	s.Models = append(s.Models, model)
}

func (s *Solver) logStats(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"decisions":       s.Decisions,
		"propagations":    s.Propagations,
		"conflicts":       s.Conflicts,
		"restarts":        s.Restarts,
		"learnts":         len(s.learnts),
		"avg_learnt_size": s.learntSize.val(),
	}).Info(msg)
}
