package cp

import (
	"fmt"
	"strings"
)

type constraintKind uint8

const (
	kindEqConst constraintKind = iota
	kindEqVar
	kindNeConst
	kindNeVar
	kindAllDifferent
	kindSumEq
	kindSumLe
	kindSumGe
)

// Constraint is one of a closed set of structural constraints over integer
// variables. Values are built with this package's constructor functions and
// compiled into clauses when the model is solved. The set of kinds is fixed:
// the compiler handles them with a single exhaustive switch.
type Constraint struct {
	kind constraintKind
	vars []*IntVar
	k    int
}

// Equals constrains x to take the value k.
func Equals(x *IntVar, k int) Constraint {
	return Constraint{kind: kindEqConst, vars: []*IntVar{x}, k: k}
}

// EqualsVar constrains x and y to take the same value.
func EqualsVar(x, y *IntVar) Constraint {
	return Constraint{kind: kindEqVar, vars: []*IntVar{x, y}}
}

// NotEquals constrains x to take any value other than k.
func NotEquals(x *IntVar, k int) Constraint {
	return Constraint{kind: kindNeConst, vars: []*IntVar{x}, k: k}
}

// NotEqualsVar constrains x and y to take different values.
func NotEqualsVar(x, y *IntVar) Constraint {
	return Constraint{kind: kindNeVar, vars: []*IntVar{x, y}}
}

// AllDifferent constrains every pair of the given variables to take
// different values. The encoding is quadratic in the number of variables,
// which is acceptable at puzzle scale.
func AllDifferent(vars ...*IntVar) Constraint {
	return Constraint{kind: kindAllDifferent, vars: append([]*IntVar(nil), vars...)}
}

// SumEquals constrains the sum of the given variables to equal k.
func SumEquals(vars []*IntVar, k int) Constraint {
	return Constraint{kind: kindSumEq, vars: append([]*IntVar(nil), vars...), k: k}
}

// SumAtMost constrains the sum of the given variables to be at most k.
func SumAtMost(vars []*IntVar, k int) Constraint {
	return Constraint{kind: kindSumLe, vars: append([]*IntVar(nil), vars...), k: k}
}

// SumAtLeast constrains the sum of the given variables to be at least k.
func SumAtLeast(vars []*IntVar, k int) Constraint {
	return Constraint{kind: kindSumGe, vars: append([]*IntVar(nil), vars...), k: k}
}

func (c Constraint) String() string {
	names := make([]string, len(c.vars))
	for i, v := range c.vars {
		names[i] = v.label()
	}

	switch c.kind {
	case kindEqConst:
		return fmt.Sprintf("%s == %d", names[0], c.k)
	case kindEqVar:
		return fmt.Sprintf("%s == %s", names[0], names[1])
	case kindNeConst:
		return fmt.Sprintf("%s != %d", names[0], c.k)
	case kindNeVar:
		return fmt.Sprintf("%s != %s", names[0], names[1])
	case kindAllDifferent:
		return fmt.Sprintf("allDifferent(%s)", strings.Join(names, ", "))
	case kindSumEq:
		return fmt.Sprintf("sum(%s) == %d", strings.Join(names, ", "), c.k)
	case kindSumLe:
		return fmt.Sprintf("sum(%s) <= %d", strings.Join(names, ", "), c.k)
	case kindSumGe:
		return fmt.Sprintf("sum(%s) >= %d", strings.Join(names, ", "), c.k)
	default:
		return fmt.Sprintf("Constraint(%d)", c.kind)
	}
}
