package solver

import (
	"tsolve/pkg/types"
)

// opBudget is the operation counter one top-level query shares between
// its judge and its evaluator. The two engines recurse into each other,
// so a per-engine counter would reset on every crossing and never trip.
type opBudget struct {
	ops int
	max int
}

func newBudget() *opBudget {
	return &opBudget{max: types.MaxOperations}
}

func (b *opBudget) spend(n int) bool {
	b.ops += n
	return b.ops <= b.max
}

// RecursionGuard bounds one engine within a top-level query: a
// stack-depth ceiling, a visiting set for true-cycle detection, and the
// query's shared operation budget. Exceeding any bound degrades the
// query's result to a provisional value; it never panics. Guards are
// per-query state, reset by creating a fresh one, and are not shared
// between goroutines.
type RecursionGuard struct {
	depth    int
	maxDepth int
	budget   *opBudget
	visiting map[types.TypeId]struct{}
}

func newEvalGuard(b *opBudget) *RecursionGuard {
	return &RecursionGuard{maxDepth: types.MaxEvaluationDepth, budget: b}
}

func newJudgeGuard(b *opBudget) *RecursionGuard {
	return &RecursionGuard{maxDepth: types.MaxSubtypeDepth, budget: b}
}

// Enter pushes one recursion level. It reports false when the depth
// ceiling or the operation budget is exhausted; the caller must degrade
// instead of recursing.
func (g *RecursionGuard) Enter() bool {
	if !g.budget.spend(1) || g.depth >= g.maxDepth {
		return false
	}
	g.depth++
	return true
}

// Leave pops one recursion level.
func (g *RecursionGuard) Leave() { g.depth-- }

// Spend consumes n operations from the budget without recursing,
// for loops whose work is proportional to a fan-out.
func (g *RecursionGuard) Spend(n int) bool {
	return g.budget.spend(n)
}

// Visit marks id as in-flight. It reports false if id is already being
// visited (a true cycle) or the visiting set is saturated.
func (g *RecursionGuard) Visit(id types.TypeId) bool {
	if g.visiting == nil {
		g.visiting = make(map[types.TypeId]struct{})
	}
	if _, ok := g.visiting[id]; ok {
		return false
	}
	if len(g.visiting) >= types.MaxInProgressPairs {
		return false
	}
	g.visiting[id] = struct{}{}
	return true
}

// Unvisit clears the in-flight mark.
func (g *RecursionGuard) Unvisit(id types.TypeId) { delete(g.visiting, id) }

// Exhausted reports whether the budget has run out.
func (g *RecursionGuard) Exhausted() bool { return g.budget.ops > g.budget.max }
