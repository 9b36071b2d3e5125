package cp

// encVar is the one-hot encoding of an integer variable: one boolean
// variable per domain value, numbered from 1 as the sat package expects.
type encVar struct {
	lb, ub int
	lits   []int
}

// lit returns the boolean literal asserting "the variable takes value val".
// The value must be within the variable's domain.
func (ev encVar) lit(val int) int {
	return ev.lits[val-ev.lb]
}

func (ev encVar) contains(val int) bool {
	return ev.lb <= val && val <= ev.ub
}

// encoder compiles a model into clauses. Model variables occupy the first
// entries of vars, in declaration order; sum-chain auxiliaries are appended
// after them. A fresh encoder is used for every solve, so boolean variable
// numbering is reproducible and nothing leaks between calls.
type encoder struct {
	clauses [][]int
	nextLit int
	vars    []encVar
}

func newEncoder() *encoder {
	return &encoder{nextLit: 1}
}

func (e *encoder) encodeModel(m *Model) {
	for _, v := range m.vars {
		e.newVar(v.lb, v.ub)
	}
	for _, c := range m.constraints {
		e.encodeConstraint(c)
	}
}

// newVar allocates the one-hot encoding of a variable with domain [lb, ub]
// and emits its exactly-one-true clause set. It returns the variable's index
// in e.vars.
func (e *encoder) newVar(lb, ub int) int {
	ev := encVar{lb: lb, ub: ub, lits: make([]int, 0, ub-lb+1)}
	for val := lb; val <= ub; val++ {
		ev.lits = append(ev.lits, e.nextLit)
		e.nextLit++
	}
	e.vars = append(e.vars, ev)

	// At least one value is true.
	e.clauses = append(e.clauses, append([]int(nil), ev.lits...))
	// No two values are both true.
	e.atMostOne(ev.lits)

	return len(e.vars) - 1
}

func (e *encoder) atMostOne(lits []int) {
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			e.clauses = append(e.clauses, []int{-lits[i], -lits[j]})
		}
	}
}

// fail emits the empty clause, making the compiled formula trivially
// unsatisfiable. Used when a constraint can be refuted at compile time, e.g.
// an equality with a value outside the variable's domain.
func (e *encoder) fail() {
	e.clauses = append(e.clauses, []int{})
}

// encodeConstraint is the single dispatch point over the closed constraint
// set.
func (e *encoder) encodeConstraint(c Constraint) {
	switch c.kind {
	case kindEqConst:
		e.eqConst(c.vars[0].id, c.k)
	case kindEqVar:
		e.eqVar(c.vars[0].id, c.vars[1].id)
	case kindNeConst:
		e.neConst(c.vars[0].id, c.k)
	case kindNeVar:
		e.neVar(c.vars[0].id, c.vars[1].id)
	case kindAllDifferent:
		e.allDifferent(c.vars)
	case kindSumEq, kindSumLe, kindSumGe:
		ids := make([]int, len(c.vars))
		for i, v := range c.vars {
			ids[i] = v.id
		}
		e.sum(ids, c.k, c.kind)
	default:
		panic("cp: unknown constraint kind")
	}
}

func (e *encoder) eqConst(vi, k int) {
	ev := e.vars[vi]
	if !ev.contains(k) {
		e.fail()
		return
	}
	// The at-most-one clauses force every other value literal false.
	e.clauses = append(e.clauses, []int{ev.lit(k)})
}

func (e *encoder) neConst(vi, k int) {
	ev := e.vars[vi]
	if ev.contains(k) {
		e.clauses = append(e.clauses, []int{-ev.lit(k)})
	}
}

// eqVar makes two variables agree on every common value, and forbids the
// values only one of them can take.
func (e *encoder) eqVar(ai, bi int) {
	a, b := e.vars[ai], e.vars[bi]
	for val := a.lb; val <= a.ub; val++ {
		if b.contains(val) {
			e.clauses = append(e.clauses, []int{-a.lit(val), b.lit(val)})
			e.clauses = append(e.clauses, []int{a.lit(val), -b.lit(val)})
		} else {
			e.clauses = append(e.clauses, []int{-a.lit(val)})
		}
	}
	for val := b.lb; val <= b.ub; val++ {
		if !a.contains(val) {
			e.clauses = append(e.clauses, []int{-b.lit(val)})
		}
	}
}

func (e *encoder) neVar(ai, bi int) {
	a, b := e.vars[ai], e.vars[bi]
	for val := a.lb; val <= a.ub; val++ {
		if b.contains(val) {
			e.clauses = append(e.clauses, []int{-a.lit(val), -b.lit(val)})
		}
	}
}

// allDifferent emits, for every value in the union of the domains, an
// at-most-one constraint over the variables that can take it. This is the
// pairwise encoding: quadratic in the number of variables per value.
func (e *encoder) allDifferent(vars []*IntVar) {
	if len(vars) < 2 {
		return
	}

	lo, hi := vars[0].lb, vars[0].ub
	for _, v := range vars[1:] {
		lo = min(lo, v.lb)
		hi = max(hi, v.ub)
	}

	lits := make([]int, 0, len(vars))
	for val := lo; val <= hi; val++ {
		lits = lits[:0]
		for _, v := range vars {
			ev := e.vars[v.id]
			if ev.contains(val) {
				lits = append(lits, ev.lit(val))
			}
		}
		if len(lits) > 1 {
			e.atMostOne(lits)
		}
	}
}

// sum compiles sum(vars) kind target through a left fold of auxiliary
// partial-sum variables: each step encodes "accumulated + next = new
// accumulated" as implications over value literals, and the final
// accumulated variable is constrained against the target. Auxiliary domains
// are clamped to the partial sums that remain feasible given the bounds of
// the remaining operands, which keeps the chain from materializing values
// that could never reach the target.
func (e *encoder) sum(ids []int, target int, kind constraintKind) {
	if len(ids) == 0 {
		feasible := true
		switch kind {
		case kindSumEq:
			feasible = target == 0
		case kindSumLe:
			feasible = target >= 0
		case kindSumGe:
			feasible = target <= 0
		}
		if !feasible {
			e.fail()
		}
		return
	}

	// remMin[i] and remMax[i] bound the sum of the operands after index i.
	n := len(ids)
	remMin := make([]int, n)
	remMax := make([]int, n)
	for i := n - 2; i >= 0; i-- {
		remMin[i] = remMin[i+1] + e.vars[ids[i+1]].lb
		remMax[i] = remMax[i+1] + e.vars[ids[i+1]].ub
	}

	acc := ids[0]
	for i := 1; i < n; i++ {
		av, bv := e.vars[acc], e.vars[ids[i]]

		lo := av.lb + bv.lb
		hi := av.ub + bv.ub
		switch kind {
		case kindSumEq:
			lo = max(lo, target-remMax[i])
			hi = min(hi, target-remMin[i])
		case kindSumLe:
			hi = min(hi, target-remMin[i])
		case kindSumGe:
			lo = max(lo, target-remMax[i])
		}
		if lo > hi {
			e.fail()
			return
		}

		aux := e.newVar(lo, hi)
		auxv := e.vars[aux]
		for a := av.lb; a <= av.ub; a++ {
			for b := bv.lb; b <= bv.ub; b++ {
				if s := a + b; auxv.contains(s) {
					e.clauses = append(e.clauses,
						[]int{-av.lit(a), -bv.lit(b), auxv.lit(s)})
				} else {
					e.clauses = append(e.clauses,
						[]int{-av.lit(a), -bv.lit(b)})
				}
			}
		}
		acc = aux
	}

	switch kind {
	case kindSumEq:
		e.eqConst(acc, target)
	case kindSumLe:
		e.atMostConst(acc, target)
	case kindSumGe:
		e.atLeastConst(acc, target)
	}
}

func (e *encoder) atMostConst(vi, k int) {
	ev := e.vars[vi]
	if ev.lb > k {
		e.fail()
		return
	}
	for val := k + 1; val <= ev.ub; val++ {
		e.clauses = append(e.clauses, []int{-ev.lit(val)})
	}
}

func (e *encoder) atLeastConst(vi, k int) {
	ev := e.vars[vi]
	if ev.ub < k {
		e.fail()
		return
	}
	for val := ev.lb; val < k; val++ {
		e.clauses = append(e.clauses, []int{-ev.lit(val)})
	}
}

// decode reads the value of every named model variable off the engine's
// model: the unique domain value whose literal is true.
func (e *encoder) decode(m *Model, solution map[int]bool) map[string]int {
	out := make(map[string]int, len(m.names))
	for i, v := range m.vars {
		if v.name == "" {
			continue
		}
		ev := e.vars[i]
		for val := ev.lb; val <= ev.ub; val++ {
			if solution[ev.lit(val)] {
				out[v.name] = val
				break
			}
		}
	}
	return out
}
