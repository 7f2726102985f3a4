package types

// --- Type Widening ---

// Widened converts a type to its widened form: literal types become
// their base primitive, fresh object literals lose the fresh marker
// (and with it excess-property checking), and composite types widen
// element-wise. Already-widened types return unchanged, same handle.
func Widened(in Interning, id TypeId) TypeId {
	return widen(in, id, 0)
}

// WidenedShallow removes only the fresh marker, preserving literal
// property types. This is the assignment-hop widening of the freshness
// rule; contextual typing wants it separate from literal widening.
func WidenedShallow(in Interning, id TypeId) TypeId {
	obj, ok := in.Lookup(id).(*ObjectKey)
	if !ok || !obj.IsFresh() {
		return id
	}
	clone := *obj
	clone.Flags &^= FlagFresh
	return in.Intern(&clone)
}

func widen(in Interning, id TypeId, depth int) TypeId {
	if depth > MaxWidenDepth {
		return id
	}
	switch k := in.Lookup(id).(type) {
	case *LiteralKey:
		return k.Value.BaseKind().TypeId()
	case *ObjectKey:
		changed := k.IsFresh()
		props := make([]Property, len(k.Properties))
		for i, p := range k.Properties {
			w := widen(in, p.Type, depth+1)
			if w != p.Type {
				changed = true
			}
			props[i] = p
			props[i].Type = w
		}
		if !changed {
			return id
		}
		clone := *k
		clone.Flags &^= FlagFresh
		clone.Properties = props
		return in.Intern(&clone)
	case *ArrayKey:
		w := widen(in, k.Elem, depth+1)
		if w == k.Elem {
			return id
		}
		return in.Intern(&ArrayKey{Elem: w, Readonly: k.Readonly})
	case *TupleKey:
		changed := false
		elems := make([]TupleElement, len(k.Elems))
		for i, e := range k.Elems {
			w := widen(in, e.Type, depth+1)
			if w != e.Type {
				changed = true
			}
			elems[i] = e
			elems[i].Type = w
		}
		if !changed {
			return id
		}
		return in.Intern(&TupleKey{Elems: elems, Readonly: k.Readonly})
	case *UnionKey:
		changed := false
		members := make([]TypeId, len(k.Members))
		for i, m := range k.Members {
			members[i] = widen(in, m, depth+1)
			if members[i] != m {
				changed = true
			}
		}
		if !changed {
			return id
		}
		return NewUnion(in, members...)
	default:
		return id
	}
}
