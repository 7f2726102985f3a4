package types

import (
	"sort"

	"github.com/xtgo/set"
)

// --- Union Types ---

// UnionKey is the TypeKey for A | B | C. Members are canonical: sorted
// by handle, deduplicated, flattened, with at least two entries.
type UnionKey struct {
	Members []TypeId
}

func (k *UnionKey) typeKey() {}

func (k *UnionKey) appendHash(b []byte) []byte {
	b = append(b, tagUnion)
	return appendIDs(b, k.Members)
}

func (k *UnionKey) equalKey(other TypeKey) bool {
	o, ok := other.(*UnionKey)
	return ok && sameIDs(k.Members, o.Members)
}

// typeIDs adapts a handle slice to sort.Interface for xtgo/set.
type typeIDs []TypeId

func (s typeIDs) Len() int           { return len(s) }
func (s typeIDs) Less(i, j int) bool { return s[i] < s[j] }
func (s typeIDs) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// NewUnion builds the canonical union of the given members: nested
// unions are flattened, Never is dropped, duplicates are removed
// (O(1) on handles thanks to interning), a literal next to its base
// primitive is absorbed, and true | false collapses to boolean. An
// empty result is Never; a singleton result is the member itself.
func NewUnion(in Interning, members ...TypeId) TypeId {
	flat := make(typeIDs, 0, len(members))
	var collect func(id TypeId)
	collect = func(id TypeId) {
		switch id {
		case NoType, Never:
			return
		}
		if u, ok := in.Lookup(id).(*UnionKey); ok {
			for _, m := range u.Members {
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
		if m == Unknown {
			return Unknown
		}
	}

	sort.Sort(flat)
	flat = flat[:set.Uniq(flat)]

	if len(flat) <= MaxUnionReductionSize {
		flat = absorbLiterals(in, flat)
	}

	switch len(flat) {
	case 0:
		return Never
	case 1:
		return flat[0]
	}
	return in.Intern(&UnionKey{Members: flat})
}

// absorbLiterals removes literal members whose base primitive is also a
// member, and collapses true | false to boolean.
func absorbLiterals(in Interning, ids typeIDs) typeIDs {
	hasTrue, hasFalse := false, false
	bases := make(map[TypeId]bool)
	for _, id := range ids {
		switch id {
		case True:
			hasTrue = true
		case False:
			hasFalse = true
		default:
			if _, ok := in.Lookup(id).(*IntrinsicKey); ok {
				bases[id] = true
			}
		}
	}
	out := ids[:0]
	for _, id := range ids {
		if lit, ok := in.Lookup(id).(*LiteralKey); ok {
			if bases[lit.Value.BaseKind().TypeId()] {
				continue
			}
			if (id == True || id == False) && hasTrue && hasFalse {
				if id == True {
					out = append(out, Boolean)
				}
				continue
			}
		}
		out = append(out, id)
	}
	// The boolean substitution may have broken the sort order or
	// introduced a duplicate.
	sort.Sort(out)
	return out[:set.Uniq(out)]
}

// UnionMembers returns the member handles of a union, or the type
// itself as a single-element view for non-unions. Callers must not
// mutate the result.
func UnionMembers(in Interning, id TypeId) []TypeId {
	if u, ok := in.Lookup(id).(*UnionKey); ok {
		return u.Members
	}
	return []TypeId{id}
}
