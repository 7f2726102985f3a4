package types

import "sort"

// --- Object Types ---

// ObjectFlags carries object-level markers that participate in
// structural identity.
type ObjectFlags uint32

const (
	// FlagFresh marks an object-literal type that has not yet been
	// widened. Fresh objects are subject to excess-property checking.
	// The flag is part of the hash/equality so a fresh literal and its
	// widened shape get distinct TypeIds.
	FlagFresh ObjectFlags = 1 << iota
)

// Property is one named member of an object type. Properties are kept
// sorted by name so structurally equal objects encode identically.
type Property struct {
	Name     string
	Type     TypeId
	Optional bool
	Readonly bool
}

// IndexSignature describes `[key: string]: T` or `[key: number]: T`.
type IndexSignature struct {
	Value    TypeId
	Readonly bool
}

// ObjectKey is the TypeKey for an object shape: ordered properties,
// index signatures and call/construct signatures. A non-zero Nominal
// DefId gives the shape nominal identity (class instances), preventing
// distinct classes from interning to one handle.
type ObjectKey struct {
	Flags       ObjectFlags
	Properties  []Property // sorted by Name
	StringIndex *IndexSignature
	NumberIndex *IndexSignature
	Calls       []Signature
	Constructs  []Signature
	Nominal     DefId
}

func (k *ObjectKey) typeKey() {}

func (k *ObjectKey) appendHash(b []byte) []byte {
	b = append(b, tagObject)
	b = appendU32(b, uint32(k.Flags))
	b = appendU32(b, uint32(len(k.Properties)))
	for _, p := range k.Properties {
		b = appendStr(b, p.Name)
		b = appendID(b, p.Type)
		b = appendBool(b, p.Optional)
		b = appendBool(b, p.Readonly)
	}
	for _, idx := range []*IndexSignature{k.StringIndex, k.NumberIndex} {
		if idx == nil {
			b = append(b, 0xff)
		} else {
			b = appendID(b, idx.Value)
			b = appendBool(b, idx.Readonly)
		}
	}
	b = appendU32(b, uint32(len(k.Calls)))
	for i := range k.Calls {
		b = k.Calls[i].appendHash(b)
	}
	b = appendU32(b, uint32(len(k.Constructs)))
	for i := range k.Constructs {
		b = k.Constructs[i].appendHash(b)
	}
	return appendU32(b, uint32(k.Nominal))
}

func (k *ObjectKey) equalKey(other TypeKey) bool {
	o, ok := other.(*ObjectKey)
	if !ok {
		return false
	}
	if k.Flags != o.Flags || k.Nominal != o.Nominal {
		return false
	}
	if len(k.Properties) != len(o.Properties) {
		return false
	}
	for i, p := range k.Properties {
		if p != o.Properties[i] {
			return false
		}
	}
	if !sameIndex(k.StringIndex, o.StringIndex) || !sameIndex(k.NumberIndex, o.NumberIndex) {
		return false
	}
	if len(k.Calls) != len(o.Calls) || len(k.Constructs) != len(o.Constructs) {
		return false
	}
	for i := range k.Calls {
		if !k.Calls[i].equalSig(&o.Calls[i]) {
			return false
		}
	}
	for i := range k.Constructs {
		if !k.Constructs[i].equalSig(&o.Constructs[i]) {
			return false
		}
	}
	return true
}

func sameIndex(a, b *IndexSignature) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Prop returns the property with the given name, if present.
func (k *ObjectKey) Prop(name string) (Property, bool) {
	i := sort.Search(len(k.Properties), func(i int) bool {
		return k.Properties[i].Name >= name
	})
	if i < len(k.Properties) && k.Properties[i].Name == name {
		return k.Properties[i], true
	}
	return Property{}, false
}

// IsFresh reports whether the object carries the fresh-literal flag.
func (k *ObjectKey) IsFresh() bool { return k.Flags&FlagFresh != 0 }

// IsCallable reports whether the object has call signatures.
func (k *ObjectKey) IsCallable() bool { return len(k.Calls) > 0 }

// IsConstructable reports whether the object has construct signatures.
func (k *ObjectKey) IsConstructable() bool { return len(k.Constructs) > 0 }

// --- Object Builder ---

// ObjectBuilder accumulates an object shape and interns it. The
// zero-ish builder from NewObject constructs a plain, non-fresh object.
type ObjectBuilder struct {
	key ObjectKey
}

// NewObject starts a new object shape.
func NewObject() *ObjectBuilder {
	return &ObjectBuilder{}
}

// WithProperty adds a required property.
func (ob *ObjectBuilder) WithProperty(name string, t TypeId) *ObjectBuilder {
	ob.key.Properties = append(ob.key.Properties, Property{Name: name, Type: t})
	return ob
}

// WithOptionalProperty adds an optional property.
func (ob *ObjectBuilder) WithOptionalProperty(name string, t TypeId) *ObjectBuilder {
	ob.key.Properties = append(ob.key.Properties, Property{Name: name, Type: t, Optional: true})
	return ob
}

// WithReadonlyProperty adds a readonly property.
func (ob *ObjectBuilder) WithReadonlyProperty(name string, t TypeId) *ObjectBuilder {
	ob.key.Properties = append(ob.key.Properties, Property{Name: name, Type: t, Readonly: true})
	return ob
}

// WithProp adds a fully-specified property.
func (ob *ObjectBuilder) WithProp(p Property) *ObjectBuilder {
	ob.key.Properties = append(ob.key.Properties, p)
	return ob
}

// WithStringIndex adds a `[key: string]: T` index signature.
func (ob *ObjectBuilder) WithStringIndex(value TypeId, readonly bool) *ObjectBuilder {
	ob.key.StringIndex = &IndexSignature{Value: value, Readonly: readonly}
	return ob
}

// WithNumberIndex adds a `[key: number]: T` index signature.
func (ob *ObjectBuilder) WithNumberIndex(value TypeId, readonly bool) *ObjectBuilder {
	ob.key.NumberIndex = &IndexSignature{Value: value, Readonly: readonly}
	return ob
}

// WithCallSignature adds a call signature.
func (ob *ObjectBuilder) WithCallSignature(sig *Signature) *ObjectBuilder {
	ob.key.Calls = append(ob.key.Calls, *sig)
	return ob
}

// WithConstructSignature adds a construct signature.
func (ob *ObjectBuilder) WithConstructSignature(sig *Signature) *ObjectBuilder {
	ob.key.Constructs = append(ob.key.Constructs, *sig)
	return ob
}

// Fresh marks the shape as a fresh object literal.
func (ob *ObjectBuilder) Fresh() *ObjectBuilder {
	ob.key.Flags |= FlagFresh
	return ob
}

// Nominal gives the shape class identity.
func (ob *ObjectBuilder) Nominal(def DefId) *ObjectBuilder {
	ob.key.Nominal = def
	return ob
}

// Intern sorts the property list and interns the shape.
func (ob *ObjectBuilder) Intern(in Interning) TypeId {
	sort.SliceStable(ob.key.Properties, func(i, j int) bool {
		return ob.key.Properties[i].Name < ob.key.Properties[j].Name
	})
	return in.Intern(&ob.key)
}
