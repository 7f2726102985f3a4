package types

import (
	"sort"

	"github.com/xtgo/set"
)

// --- Intersection Types ---

// IntersectionKey is the TypeKey for A & B & C. Members are canonical:
// sorted by handle, deduplicated, flattened, at least two entries.
type IntersectionKey struct {
	Members []TypeId
}

func (k *IntersectionKey) typeKey() {}

func (k *IntersectionKey) appendHash(b []byte) []byte {
	b = append(b, tagIntersection)
	return appendIDs(b, k.Members)
}

func (k *IntersectionKey) equalKey(other TypeKey) bool {
	o, ok := other.(*IntersectionKey)
	return ok && sameIDs(k.Members, o.Members)
}

// NewIntersection builds the canonical intersection: nested
// intersections are flattened, `any` absorbs everything, `never`
// propagates, `unknown` is the identity and is dropped, duplicates are
// removed, and an intersection of disjoint primitives collapses to
// Never. An empty result is Unknown; a singleton result is the member.
func NewIntersection(in Interning, members ...TypeId) TypeId {
	flat := make(typeIDs, 0, len(members))
	var collect func(id TypeId)
	collect = func(id TypeId) {
		switch id {
		case NoType, Unknown:
			return
		}
		if ix, ok := in.Lookup(id).(*IntersectionKey); ok {
			for _, m := range ix.Members {
				collect(m)
			}
			return
		}
		flat = append(flat, id)
	}
	for _, m := range members {
		collect(m)
	}

	for _, m := range flat {
		if m == Any {
			return Any
		}
	}
	for _, m := range flat {
		if m == Never {
			return Never
		}
	}

	sort.Sort(flat)
	flat = flat[:set.Uniq(flat)]

	if len(flat) <= MaxDisjointCheckSize && hasDisjointPrimitives(in, flat) {
		return Never
	}

	switch len(flat) {
	case 0:
		return Unknown
	case 1:
		return flat[0]
	}
	return in.Intern(&IntersectionKey{Members: flat})
}

// hasDisjointPrimitives reports whether two members are primitives (or
// literals of primitives) that no value can satisfy simultaneously.
// Object-shaped members are left to the Judge, which reports the
// incompatible property instead of collapsing early.
func hasDisjointPrimitives(in Interning, ids typeIDs) bool {
	kindOf := func(id TypeId) (IntrinsicKind, bool) {
		switch k := in.Lookup(id).(type) {
		case *IntrinsicKey:
			switch k.Kind {
			case KindBoolean, KindNumber, KindString, KindBigint, KindSymbol, KindNull, KindUndefined, KindVoid:
				return k.Kind, true
			}
		case *LiteralKey:
			return k.Value.BaseKind(), true
		}
		return KindError, false
	}
	seen := KindError
	have := false
	for _, id := range ids {
		kind, ok := kindOf(id)
		if !ok {
			continue
		}
		if have && kind != seen {
			return true
		}
		seen, have = kind, true
	}
	// Two different literals of one primitive are also uninhabitable
	// (e.g. 1 & 2): distinct handles, same base kind.
	litCount := 0
	for _, id := range ids {
		if _, ok := in.Lookup(id).(*LiteralKey); ok {
			litCount++
		}
	}
	return litCount > 1
}
