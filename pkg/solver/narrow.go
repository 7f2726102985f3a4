package solver

import (
	"tsolve/pkg/types"
)

// TypeGuard describes one runtime test a control-flow branch learned
// about a value. Narrow applies a guard to a declared type, producing
// the branch-local type.
type TypeGuard interface {
	typeGuard()
}

// TypeofGuard is `typeof x === Tag`.
type TypeofGuard struct{ Tag string }

// InstanceofGuard is `x instanceof C` where Constructor is C's type.
type InstanceofGuard struct{ Constructor types.TypeId }

// LiteralEqualityGuard is `x === v` for a unit value.
type LiteralEqualityGuard struct{ Value types.TypeId }

// NullishEqualityGuard is loose `x == null`, covering both null and
// undefined.
type NullishEqualityGuard struct{}

// TruthyGuard is a bare condition position, `if (x)`.
type TruthyGuard struct{}

// DiscriminantGuard is `x.k === v` (or a deeper path) over a
// discriminated union.
type DiscriminantGuard struct {
	Path  []string
	Value types.TypeId
}

// InPropertyGuard is `"name" in x`.
type InPropertyGuard struct{ Name string }

// PredicateGuard applies a user-defined type predicate's declared type.
type PredicateGuard struct{ Pred types.Predicate }

// IsArrayGuard is `Array.isArray(x)`.
type IsArrayGuard struct{}

// ArrayElementGuard is `xs.every(pred)` where Elem is the element type
// the predicate establishes.
type ArrayElementGuard struct{ Elem types.TypeId }

func (TypeofGuard) typeGuard()          {}
func (InstanceofGuard) typeGuard()      {}
func (LiteralEqualityGuard) typeGuard() {}
func (NullishEqualityGuard) typeGuard() {}
func (TruthyGuard) typeGuard()          {}
func (DiscriminantGuard) typeGuard()    {}
func (InPropertyGuard) typeGuard()      {}
func (PredicateGuard) typeGuard()       {}
func (IsArrayGuard) typeGuard()         {}
func (ArrayElementGuard) typeGuard()    {}

// Narrow refines id under the guard. sense selects the branch: true for
// the branch where the test passed, false for where it failed. The
// result is always the union of the surviving members of the declared
// type, so narrowing never invents types the declaration did not admit.
func (s *Solver) Narrow(id types.TypeId, guard TypeGuard, sense bool) types.TypeId {
	id = s.Evaluate(id)

	// An asserts-style predicate that failed leaves the branch
	// unreachable.
	if pg, ok := guard.(PredicateGuard); ok && pg.Pred.Asserts && !sense {
		return types.Never
	}

	members := s.unionMembers(id)
	var kept []types.TypeId
	for _, m := range members {
		kept = append(kept, s.narrowMember(m, guard, sense)...)
	}
	out := types.NewUnion(s.in, kept...)
	s.logNarrow.Debug("narrowed", "from", s.Sprint(id), "to", s.Sprint(out), "sense", sense)
	return out
}

// unionMembers explodes a type into the members narrowing filters over.
// boolean splits into its two literals so equality and truthiness tests
// can discard half of it.
func (s *Solver) unionMembers(id types.TypeId) []types.TypeId {
	if id == types.Boolean {
		return []types.TypeId{types.True, types.False}
	}
	if u, ok := s.in.Lookup(id).(*types.UnionKey); ok {
		var out []types.TypeId
		for _, m := range u.Members {
			out = append(out, s.unionMembers(m)...)
		}
		return out
	}
	return []types.TypeId{id}
}

// narrowMember filters one union member, returning the pieces of it
// that survive the branch.
func (s *Solver) narrowMember(m types.TypeId, guard TypeGuard, sense bool) []types.TypeId {
	switch g := guard.(type) {
	case TypeofGuard:
		return s.narrowTypeof(m, g.Tag, sense)

	case TruthyGuard:
		switch types.TruthinessOf(s.in, m) {
		case types.TruthyAlways:
			if sense {
				return one(m)
			}
			return nil
		case types.TruthyNever:
			if sense {
				return nil
			}
			return one(m)
		}
		// Could go either way at runtime; keep the member, except
		// when a falsy unit form can be carved out.
		if sense {
			if m == types.Undefined || m == types.Null {
				return nil
			}
		}
		return one(m)

	case LiteralEqualityGuard:
		if sense {
			// Only members the tested value could inhabit survive.
			if s.quietAssignable(g.Value, m) {
				if isUnit(s.in, m) {
					return one(m)
				}
				// A primitive member collapses to the literal.
				return one(g.Value)
			}
			return nil
		}
		// The failed comparison removes only exact unit members.
		if m == g.Value {
			return nil
		}
		return one(m)

	case NullishEqualityGuard:
		nullish := m == types.Null || m == types.Undefined
		if nullish == sense {
			return one(m)
		}
		if !sense && (m == types.Any || m == types.Unknown) {
			return one(m)
		}
		if sense && (m == types.Any || m == types.Unknown) {
			return []types.TypeId{types.Null, types.Undefined}
		}
		return nil

	case DiscriminantGuard:
		return s.narrowDiscriminant(m, g, sense)

	case InPropertyGuard:
		has := s.memberHasProperty(m, g.Name)
		if m == types.Any || m == types.Unknown {
			return one(m)
		}
		if has == sense {
			return one(m)
		}
		return nil

	case InstanceofGuard:
		inst := s.instanceShape(g.Constructor)
		if sense {
			if inst == types.NoType {
				return one(m)
			}
			if s.quietAssignable(m, inst) {
				return one(m)
			}
			if s.quietAssignable(inst, m) {
				return one(inst)
			}
			return nil
		}
		if inst != types.NoType && s.quietAssignable(m, inst) {
			return nil
		}
		return one(m)

	case PredicateGuard:
		pt := g.Pred.Type
		if pt == types.NoType {
			return one(m)
		}
		if sense {
			if s.quietAssignable(m, pt) {
				return one(m)
			}
			if s.quietAssignable(pt, m) || m == types.Any || m == types.Unknown {
				return one(pt)
			}
			return nil
		}
		if s.quietAssignable(m, pt) {
			return nil
		}
		return one(m)

	case IsArrayGuard:
		isArr := types.IsArrayLike(s.in, m)
		if m == types.Any || m == types.Unknown {
			if sense {
				return one(types.NewReadonlyArray(s.in, types.Unknown))
			}
			return one(m)
		}
		if isArr == sense {
			return one(m)
		}
		return nil

	case ArrayElementGuard:
		arr, ok := s.in.Lookup(m).(*types.ArrayKey)
		if !ok {
			return one(m)
		}
		if sense {
			if s.quietAssignable(arr.Elem, g.Elem) {
				return one(m)
			}
			if s.quietAssignable(g.Elem, arr.Elem) {
				na := s.in.Intern(&types.ArrayKey{Elem: g.Elem, Readonly: arr.Readonly})
				return one(na)
			}
			// An empty array passes every element predicate, so the
			// member survives with its declared type.
			return one(m)
		}
		// Some element failed the predicate; the element type is
		// unchanged.
		return one(m)
	}
	return one(m)
}

func one(id types.TypeId) []types.TypeId { return []types.TypeId{id} }

func isUnit(in types.Interning, id types.TypeId) bool {
	switch id {
	case types.Null, types.Undefined, types.True, types.False:
		return true
	}
	_, ok := in.Lookup(id).(*types.LiteralKey)
	return ok
}

func (s *Solver) quietAssignable(src, tgt types.TypeId) bool {
	return s.IsAssignable(src, tgt)
}

func (s *Solver) narrowTypeof(m types.TypeId, tag string, sense bool) []types.TypeId {
	// any and unknown narrow to the tag's primitive in the passing
	// branch and survive unchanged in the failing one.
	if m == types.Any || m == types.Unknown {
		if !sense {
			return one(m)
		}
		if prim := typeofPrimitive(tag); prim != types.NoType {
			return one(prim)
		}
		return one(m)
	}
	mt, known := types.TypeofTagOf(s.in, m)
	if !known {
		// Structural members with ambiguous tags stay in both
		// branches.
		return one(m)
	}
	if (mt == tag) == sense {
		return one(m)
	}
	return nil
}

func typeofPrimitive(tag string) types.TypeId {
	switch tag {
	case "string":
		return types.String
	case "number":
		return types.Number
	case "boolean":
		return types.Boolean
	case "bigint":
		return types.Bigint
	case "symbol":
		return types.SymbolPrim
	case "undefined":
		return types.Undefined
	case "object":
		return types.ObjectPrim
	case "function":
		return types.FunctionPrim
	}
	return types.NoType
}

// narrowDiscriminant keeps or drops union members by a tag property at
// the guard's path.
func (s *Solver) narrowDiscriminant(m types.TypeId, g DiscriminantGuard, sense bool) []types.TypeId {
	pt := s.propertyAtPath(m, g.Path)
	if pt == types.NoType {
		// Members without the discriminant survive both branches.
		return one(m)
	}
	pt = s.Evaluate(pt)
	if sense {
		// Keep members whose tag could still equal the tested value.
		if s.quietAssignable(g.Value, pt) || s.quietAssignable(pt, g.Value) {
			return one(m)
		}
		return nil
	}
	// The failing branch removes a member only when its tag always
	// equals the value.
	if isUnit(s.in, pt) && s.quietAssignable(pt, g.Value) {
		return nil
	}
	return one(m)
}

func (s *Solver) propertyAtPath(m types.TypeId, path []string) types.TypeId {
	cur := m
	for _, name := range path {
		cur = s.Evaluate(cur)
		if ref, ok := s.in.Lookup(cur).(*types.RefKey); ok {
			cur = s.defs.Resolve(ref.Def)
		}
		obj, ok := s.in.Lookup(cur).(*types.ObjectKey)
		if !ok {
			return types.NoType
		}
		p, ok := obj.Prop(name)
		if !ok {
			return types.NoType
		}
		cur = p.Type
	}
	return cur
}

func (s *Solver) memberHasProperty(m types.TypeId, name string) bool {
	m = s.Evaluate(m)
	if ref, ok := s.in.Lookup(m).(*types.RefKey); ok {
		m = s.defs.Resolve(ref.Def)
	}
	switch k := s.in.Lookup(m).(type) {
	case *types.ObjectKey:
		if _, ok := k.Prop(name); ok {
			return true
		}
		return k.StringIndex != nil
	case *types.IntersectionKey:
		for _, mm := range k.Members {
			if s.memberHasProperty(mm, name) {
				return true
			}
		}
	}
	return false
}

// instanceShape maps a constructor type to the instance type its
// construct signature produces.
func (s *Solver) instanceShape(ctor types.TypeId) types.TypeId {
	for _, sig := range types.ConstructSignaturesOf(s.in, ctor) {
		return sig.Return
	}
	return types.NoType
}
