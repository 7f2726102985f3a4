package types

// --- Array and Tuple Types ---

// ArrayKey is the TypeKey for T[] / readonly T[].
type ArrayKey struct {
	Elem     TypeId
	Readonly bool
}

func (k *ArrayKey) typeKey() {}

func (k *ArrayKey) appendHash(b []byte) []byte {
	b = append(b, tagArray)
	b = appendID(b, k.Elem)
	return appendBool(b, k.Readonly)
}

func (k *ArrayKey) equalKey(other TypeKey) bool {
	o, ok := other.(*ArrayKey)
	return ok && *k == *o
}

// TupleElement is one element of a tuple type.
type TupleElement struct {
	Type     TypeId
	Name     string // optional label ([x: number]); not part of identity
	Optional bool
	Rest     bool // ...T[]; Type is the array type of the rest elements
}

// TupleKey is the TypeKey for a tuple type with fixed, optional and
// rest elements.
type TupleKey struct {
	Elems    []TupleElement
	Readonly bool
}

func (k *TupleKey) typeKey() {}

func (k *TupleKey) appendHash(b []byte) []byte {
	b = append(b, tagTuple)
	b = appendBool(b, k.Readonly)
	b = appendU32(b, uint32(len(k.Elems)))
	for _, e := range k.Elems {
		b = appendID(b, e.Type)
		b = appendBool(b, e.Optional)
		b = appendBool(b, e.Rest)
	}
	return b
}

func (k *TupleKey) equalKey(other TypeKey) bool {
	o, ok := other.(*TupleKey)
	if !ok || k.Readonly != o.Readonly || len(k.Elems) != len(o.Elems) {
		return false
	}
	for i, e := range k.Elems {
		oe := o.Elems[i]
		// Labels are documentation; identity is positional.
		if e.Type != oe.Type || e.Optional != oe.Optional || e.Rest != oe.Rest {
			return false
		}
	}
	return true
}

// FixedCount returns the number of non-rest elements.
func (k *TupleKey) FixedCount() int {
	n := len(k.Elems)
	if n > 0 && k.Elems[n-1].Rest {
		return n - 1
	}
	return n
}

// RequiredCount returns the number of elements that are neither
// optional nor rest.
func (k *TupleKey) RequiredCount() int {
	count := 0
	for _, e := range k.Elems {
		if !e.Optional && !e.Rest {
			count++
		}
	}
	return count
}

// RestElem returns the array type of the trailing rest element, or
// NoType if the tuple has none.
func (k *TupleKey) RestElem() TypeId {
	if n := len(k.Elems); n > 0 && k.Elems[n-1].Rest {
		return k.Elems[n-1].Type
	}
	return NoType
}
