package solver

import (
	"math"
	"sort"

	"github.com/xtgo/set"

	"tsolve/pkg/types"
)

// evalIndexedAccess reduces T[K]. Unions distribute on both sides; Refs
// resolve through the store.
func (ev *evaluator) evalIndexedAccess(obj, idx types.TypeId) types.TypeId {
	if !ev.guard.Spend(1) {
		return types.Unknown
	}
	if obj == types.Any || idx == types.Any {
		return types.Any
	}

	switch ok := ev.s.in.Lookup(obj).(type) {
	case *types.UnionKey:
		out := make([]types.TypeId, len(ok.Members))
		for i, m := range ok.Members {
			out[i] = ev.evalIndexedAccess(m, idx)
		}
		return types.NewUnion(ev.s.in, out...)
	case *types.RefKey:
		return ev.evalIndexedAccess(ev.s.defs.Resolve(ok.Def), idx)
	case *types.EnumKey:
		return ev.evalIndexedAccess(ok.Members, idx)
	}

	if ik, ok := ev.s.in.Lookup(idx).(*types.UnionKey); ok {
		out := make([]types.TypeId, len(ik.Members))
		for i, m := range ik.Members {
			out[i] = ev.evalIndexedAccess(obj, m)
		}
		return types.NewUnion(ev.s.in, out...)
	}

	switch k := ev.s.in.Lookup(obj).(type) {
	case *types.ObjectKey:
		return ev.objectAccess(k, idx)
	case *types.ArrayKey:
		switch ik := ev.s.in.Lookup(idx).(type) {
		case *types.IntrinsicKey:
			if ik.Kind == types.KindNumber {
				return k.Elem
			}
		case *types.LiteralKey:
			switch ik.Value.Kind {
			case types.LiteralNumber:
				return k.Elem
			case types.LiteralString:
				if ik.Value.Str == "length" {
					return types.Number
				}
			}
		}
	case *types.TupleKey:
		switch ik := ev.s.in.Lookup(idx).(type) {
		case *types.IntrinsicKey:
			if ik.Kind == types.KindNumber {
				elems := make([]types.TypeId, 0, len(k.Elems))
				for _, te := range k.Elems {
					t := te.Type
					if te.Rest {
						if arr, ok := ev.s.in.Lookup(te.Type).(*types.ArrayKey); ok {
							t = arr.Elem
						}
					}
					elems = append(elems, t)
				}
				return types.NewUnion(ev.s.in, elems...)
			}
		case *types.LiteralKey:
			switch ik.Value.Kind {
			case types.LiteralNumber:
				i := int(ik.Value.Num)
				if float64(i) != ik.Value.Num || math.Signbit(ik.Value.Num) {
					return types.Undefined
				}
				if i < k.FixedCount() {
					return k.Elems[i].Type
				}
				if rest := k.RestElem(); rest != types.NoType {
					if arr, ok := ev.s.in.Lookup(rest).(*types.ArrayKey); ok {
						return arr.Elem
					}
				}
				return types.Undefined
			case types.LiteralString:
				if ik.Value.Str == "length" {
					if k.RestElem() == types.NoType {
						return types.NewNumberLiteral(ev.s.in, float64(len(k.Elems)))
					}
					return types.Number
				}
			}
		}
	}
	ev.s.logEval.Debug("indexed access does not resolve", "object", uint32(obj), "index", uint32(idx))
	return types.ErrorType
}

func (ev *evaluator) objectAccess(k *types.ObjectKey, idx types.TypeId) types.TypeId {
	switch ik := ev.s.in.Lookup(idx).(type) {
	case *types.LiteralKey:
		name := ""
		switch ik.Value.Kind {
		case types.LiteralString:
			name = ik.Value.Str
		case types.LiteralNumber:
			if k.NumberIndex != nil {
				return k.NumberIndex.Value
			}
			name = literalPropertyName(ik.Value)
		default:
			return types.ErrorType
		}
		if p, ok := k.Prop(name); ok {
			if p.Optional {
				return types.NewUnion(ev.s.in, p.Type, types.Undefined)
			}
			return p.Type
		}
		if k.StringIndex != nil {
			return k.StringIndex.Value
		}
		return types.ErrorType
	case *types.IntrinsicKey:
		switch ik.Kind {
		case types.KindString:
			if k.StringIndex != nil {
				return k.StringIndex.Value
			}
			// string-keyed access over a closed object reads any of its
			// property types.
			out := make([]types.TypeId, 0, len(k.Properties))
			for _, p := range k.Properties {
				out = append(out, p.Type)
			}
			if len(out) == 0 {
				return types.Never
			}
			return types.NewUnion(ev.s.in, out...)
		case types.KindNumber:
			if k.NumberIndex != nil {
				return k.NumberIndex.Value
			}
		}
	}
	return types.ErrorType
}

// evalKeyof reduces keyof T: a union of the known key literals, with
// index signatures contributing their key primitive. keyof a union is
// the intersection of the member key sets; keyof an intersection is
// their union.
func (ev *evaluator) evalKeyof(operand types.TypeId) types.TypeId {
	if !ev.guard.Spend(1) {
		return types.Unknown
	}
	switch k := ev.s.in.Lookup(operand).(type) {
	case *types.ObjectKey:
		out := make([]types.TypeId, 0, len(k.Properties)+2)
		for _, p := range k.Properties {
			out = append(out, types.NewStringLiteral(ev.s.in, p.Name))
		}
		if k.StringIndex != nil {
			out = append(out, types.String)
		}
		if k.NumberIndex != nil {
			out = append(out, types.Number)
		}
		if len(out) == 0 {
			return types.Never
		}
		return types.NewUnion(ev.s.in, out...)
	case *types.ArrayKey, *types.TupleKey:
		return types.Number
	case *types.RefKey:
		return ev.evalKeyof(ev.s.defs.Resolve(k.Def))
	case *types.UnionKey:
		return ev.intersectKeySets(k.Members)
	case *types.IntersectionKey:
		out := make([]types.TypeId, len(k.Members))
		for i, m := range k.Members {
			out[i] = ev.evalKeyof(m)
		}
		return types.NewUnion(ev.s.in, out...)
	case *types.IntrinsicKey:
		switch k.Kind {
		case types.KindAny:
			return types.NewUnion(ev.s.in, types.String, types.Number, types.SymbolPrim)
		case types.KindString:
			return types.Number // index positions; "length" et al. live on the wrapper
		}
	case *types.EnumKey:
		return ev.evalKeyof(k.Members)
	case *types.ModuleNamespaceKey:
		// Namespace member names live in the store's export table.
		return types.String
	}
	return types.Never
}

// intersectKeySets computes keyof (A | B) = keyof A & keyof B over the
// canonical sorted member representation.
func (ev *evaluator) intersectKeySets(members []types.TypeId) types.TypeId {
	acc := sortedKeySet(ev.s.in, ev.evalKeyof(members[0]))
	for _, m := range members[1:] {
		next := sortedKeySet(ev.s.in, ev.evalKeyof(m))
		// set.Inter wants the two sorted sets concatenated at the
		// pivot; re-sorting the concatenation would move elements
		// across it.
		merged := append(append([]types.TypeId{}, acc...), next...)
		n := set.Inter(typeIDSlice(merged), len(acc))
		acc = merged[:n]
		if len(acc) == 0 {
			return types.Never
		}
	}
	return types.NewUnion(ev.s.in, acc...)
}

func sortedKeySet(in types.Interning, id types.TypeId) []types.TypeId {
	members := append([]types.TypeId{}, types.UnionMembers(in, id)...)
	if id == types.Never {
		return nil
	}
	sort.Sort(typeIDSlice(members))
	return members
}

// typeIDSlice adapts a handle slice to sort.Interface for xtgo/set.
type typeIDSlice []types.TypeId

func (s typeIDSlice) Len() int           { return len(s) }
func (s typeIDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s typeIDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
