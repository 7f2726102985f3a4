package types

// --- Type-Level Computations ---
//
// These variants describe computations the Evaluator reduces to normal
// form: conditional types, mapped types, template literals, indexed
// access and keyof. A normal-form type contains none of them outside
// generic bodies.

// ConditionalKey is the TypeKey for `Check extends Extends ? True : False`.
// Infer binders appear as InferKey handles inside Extends; the branch
// types may reference them as TypeParameterKey occurrences by name.
type ConditionalKey struct {
	Check   TypeId
	Extends TypeId
	True    TypeId
	False   TypeId
	// Distributive is set when Check was written as a naked type
	// parameter, making the conditional distribute over unions.
	Distributive bool
}

func (k *ConditionalKey) typeKey() {}

func (k *ConditionalKey) appendHash(b []byte) []byte {
	b = append(b, tagConditional)
	b = appendID(b, k.Check)
	b = appendID(b, k.Extends)
	b = appendID(b, k.True)
	b = appendID(b, k.False)
	return appendBool(b, k.Distributive)
}

func (k *ConditionalKey) equalKey(other TypeKey) bool {
	o, ok := other.(*ConditionalKey)
	return ok && *k == *o
}

// MappedModifier is a +/- modifier on a mapped type.
type MappedModifier uint8

const (
	ModifierNone MappedModifier = iota
	ModifierAdd
	ModifierRemove
)

// MappedKey is the TypeKey for `{ [P in Constraint as NameTemplate]: Template }`
// with optional readonly/optional modifiers.
type MappedKey struct {
	ParamName    string // the P binder
	Constraint   TypeId // the key set being iterated
	NameTemplate TypeId // NoType when there is no `as` clause
	Template     TypeId // the value template, may reference P
	ReadonlyMod  MappedModifier
	OptionalMod  MappedModifier
}

func (k *MappedKey) typeKey() {}

func (k *MappedKey) appendHash(b []byte) []byte {
	b = append(b, tagMapped)
	b = appendStr(b, k.ParamName)
	b = appendID(b, k.Constraint)
	b = appendID(b, k.NameTemplate)
	b = appendID(b, k.Template)
	return append(b, byte(k.ReadonlyMod), byte(k.OptionalMod))
}

func (k *MappedKey) equalKey(other TypeKey) bool {
	o, ok := other.(*MappedKey)
	return ok && *k == *o
}

// IsHomomorphic reports whether the mapped type preserves the source
// shape (no key remapping). Homomorphic mapped types over arrays and
// tuples keep array/tuple-ness instead of flattening to an object.
func (k *MappedKey) IsHomomorphic() bool { return k.NameTemplate == NoType }

// TemplateSpan is one segment of a template literal type: either fixed
// text or an interpolated type slot.
type TemplateSpan struct {
	Text string
	Type TypeId // NoType for a text span
}

// IsText reports whether the span is fixed text.
func (s TemplateSpan) IsText() bool { return s.Type == NoType }

// TemplateLiteralKey is the TypeKey for a template literal type such as
// `id-${number}`.
type TemplateLiteralKey struct {
	Spans []TemplateSpan
}

func (k *TemplateLiteralKey) typeKey() {}

func (k *TemplateLiteralKey) appendHash(b []byte) []byte {
	b = append(b, tagTemplateLiteral)
	b = appendU32(b, uint32(len(k.Spans)))
	for _, s := range k.Spans {
		b = appendStr(b, s.Text)
		b = appendID(b, s.Type)
	}
	return b
}

func (k *TemplateLiteralKey) equalKey(other TypeKey) bool {
	o, ok := other.(*TemplateLiteralKey)
	if !ok || len(k.Spans) != len(o.Spans) {
		return false
	}
	for i, s := range k.Spans {
		if s != o.Spans[i] {
			return false
		}
	}
	return true
}

// IndexedAccessKey is the TypeKey for T[K].
type IndexedAccessKey struct {
	Object TypeId
	Index  TypeId
}

func (k *IndexedAccessKey) typeKey() {}

func (k *IndexedAccessKey) appendHash(b []byte) []byte {
	b = append(b, tagIndexedAccess)
	b = appendID(b, k.Object)
	return appendID(b, k.Index)
}

func (k *IndexedAccessKey) equalKey(other TypeKey) bool {
	o, ok := other.(*IndexedAccessKey)
	return ok && *k == *o
}

// KeyofKey is the TypeKey for keyof T.
type KeyofKey struct {
	Operand TypeId
}

func (k *KeyofKey) typeKey() {}

func (k *KeyofKey) appendHash(b []byte) []byte {
	b = append(b, tagKeyof)
	return appendID(b, k.Operand)
}

func (k *KeyofKey) equalKey(other TypeKey) bool {
	o, ok := other.(*KeyofKey)
	return ok && *k == *o
}

// StringIntrinsicKind identifies a string-manipulation intrinsic.
type StringIntrinsicKind uint8

const (
	IntrinsicUppercase StringIntrinsicKind = iota
	IntrinsicLowercase
	IntrinsicCapitalize
	IntrinsicUncapitalize
)

// String returns the intrinsic's name.
func (k StringIntrinsicKind) String() string {
	switch k {
	case IntrinsicUppercase:
		return "Uppercase"
	case IntrinsicLowercase:
		return "Lowercase"
	case IntrinsicCapitalize:
		return "Capitalize"
	case IntrinsicUncapitalize:
		return "Uncapitalize"
	default:
		return "unknown"
	}
}

// StringIntrinsicKey is the TypeKey for Uppercase<T> and friends.
type StringIntrinsicKey struct {
	Kind StringIntrinsicKind
	Arg  TypeId
}

func (k *StringIntrinsicKey) typeKey() {}

func (k *StringIntrinsicKey) appendHash(b []byte) []byte {
	b = append(b, tagStringIntrinsic, byte(k.Kind))
	return appendID(b, k.Arg)
}

func (k *StringIntrinsicKey) equalKey(other TypeKey) bool {
	o, ok := other.(*StringIntrinsicKey)
	return ok && *k == *o
}
