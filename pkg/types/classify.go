package types

// Classifier queries. External layers branch on a type's semantic
// category through these instead of pattern matching the TypeKey
// variant set, so adding a variant does not ripple through callers.

// PrimitiveFlags is a bitset of primitive-ness categories.
type PrimitiveFlags uint16

const (
	FlagNumberLike PrimitiveFlags = 1 << iota
	FlagStringLike
	FlagBooleanLike
	FlagBigintLike
	FlagSymbolLike
	FlagNullish
	FlagObjectLike
	FlagFunctionLike
	FlagVoidLike
)

// PrimitiveFlagsOf computes the primitive-ness categories of a type.
// Unions return the union of their members' flags.
func PrimitiveFlagsOf(in Interning, id TypeId) PrimitiveFlags {
	switch k := in.Lookup(id).(type) {
	case *IntrinsicKey:
		switch k.Kind {
		case KindNumber:
			return FlagNumberLike
		case KindString:
			return FlagStringLike
		case KindBoolean:
			return FlagBooleanLike
		case KindBigint:
			return FlagBigintLike
		case KindSymbol:
			return FlagSymbolLike
		case KindNull, KindUndefined:
			return FlagNullish
		case KindVoid:
			return FlagVoidLike
		case KindObject:
			return FlagObjectLike
		case KindFunction:
			return FlagFunctionLike
		}
	case *LiteralKey:
		switch k.Value.Kind {
		case LiteralNumber:
			return FlagNumberLike
		case LiteralString:
			return FlagStringLike
		case LiteralBoolean:
			return FlagBooleanLike
		case LiteralBigint:
			return FlagBigintLike
		case LiteralUniqueSymbol:
			return FlagSymbolLike
		}
	case *TemplateLiteralKey, *StringIntrinsicKey:
		return FlagStringLike
	case *ObjectKey:
		if k.IsCallable() {
			return FlagObjectLike | FlagFunctionLike
		}
		return FlagObjectLike
	case *FunctionKey:
		return FlagObjectLike | FlagFunctionLike
	case *ArrayKey, *TupleKey:
		return FlagObjectLike
	case *EnumKey:
		return PrimitiveFlagsOf(in, k.Members)
	case *UnionKey:
		var flags PrimitiveFlags
		for _, m := range k.Members {
			flags |= PrimitiveFlagsOf(in, m)
		}
		return flags
	}
	return 0
}

// CallSignaturesOf returns the call signatures of a type: one for a
// function type, the call list for a callable object, the concatenation
// for an intersection. Nil means the type is not callable.
func CallSignaturesOf(in Interning, id TypeId) []*Signature {
	switch k := in.Lookup(id).(type) {
	case *FunctionKey:
		if !k.IsConstructor {
			return []*Signature{&k.Sig}
		}
	case *ObjectKey:
		sigs := make([]*Signature, 0, len(k.Calls))
		for i := range k.Calls {
			sigs = append(sigs, &k.Calls[i])
		}
		return sigs
	case *IntersectionKey:
		var sigs []*Signature
		for _, m := range k.Members {
			sigs = append(sigs, CallSignaturesOf(in, m)...)
		}
		return sigs
	}
	return nil
}

// ConstructSignaturesOf mirrors CallSignaturesOf for `new` signatures.
func ConstructSignaturesOf(in Interning, id TypeId) []*Signature {
	switch k := in.Lookup(id).(type) {
	case *FunctionKey:
		if k.IsConstructor {
			return []*Signature{&k.Sig}
		}
	case *ObjectKey:
		sigs := make([]*Signature, 0, len(k.Constructs))
		for i := range k.Constructs {
			sigs = append(sigs, &k.Constructs[i])
		}
		return sigs
	case *IntersectionKey:
		var sigs []*Signature
		for _, m := range k.Members {
			sigs = append(sigs, ConstructSignaturesOf(in, m)...)
		}
		return sigs
	}
	return nil
}

// IsCallable reports whether the type has at least one call signature.
func IsCallable(in Interning, id TypeId) bool {
	return len(CallSignaturesOf(in, id)) > 0
}

// IsArrayLike reports whether the type is an array, a tuple, or a
// union of array-likes.
func IsArrayLike(in Interning, id TypeId) bool {
	switch k := in.Lookup(id).(type) {
	case *ArrayKey, *TupleKey:
		return true
	case *UnionKey:
		for _, m := range k.Members {
			if !IsArrayLike(in, m) {
				return false
			}
		}
		return true
	}
	return false
}

// IterableElementOf returns the element type an iteration over the
// type yields, if the type is statically iterable: arrays yield their
// element, tuples the union of their elements, strings yield string.
func IterableElementOf(in Interning, id TypeId) (TypeId, bool) {
	switch k := in.Lookup(id).(type) {
	case *ArrayKey:
		return k.Elem, true
	case *TupleKey:
		elems := make([]TypeId, 0, len(k.Elems))
		for _, e := range k.Elems {
			t := e.Type
			if e.Rest {
				if arr, ok := in.Lookup(e.Type).(*ArrayKey); ok {
					t = arr.Elem
				}
			}
			elems = append(elems, t)
		}
		return NewUnion(in, elems...), true
	case *LiteralKey:
		if k.Value.Kind == LiteralString {
			return String, true
		}
	case *IntrinsicKey:
		if k.Kind == KindString {
			return String, true
		}
	case *UnionKey:
		elems := make([]TypeId, 0, len(k.Members))
		for _, m := range k.Members {
			e, ok := IterableElementOf(in, m)
			if !ok {
				return NoType, false
			}
			elems = append(elems, e)
		}
		return NewUnion(in, elems...), true
	}
	return NoType, false
}

// Truthiness is the statically-known boolean coercion of a type.
type Truthiness uint8

const (
	// TruthyUnknown: the type has both truthy and falsy inhabitants.
	TruthyUnknown Truthiness = iota
	// TruthyAlways: every inhabitant is truthy.
	TruthyAlways
	// TruthyNever: every inhabitant is falsy.
	TruthyNever
)

// TruthinessOf computes whether a type's truthiness is statically
// known. Objects, functions, arrays and non-falsy literals are always
// truthy; null, undefined, false, 0, "" and NaN are always falsy.
func TruthinessOf(in Interning, id TypeId) Truthiness {
	switch k := in.Lookup(id).(type) {
	case *IntrinsicKey:
		switch k.Kind {
		case KindNull, KindUndefined, KindVoid:
			return TruthyNever
		case KindObject, KindFunction:
			return TruthyAlways
		}
	case *LiteralKey:
		if literalIsFalsy(k.Value) {
			return TruthyNever
		}
		return TruthyAlways
	case *ObjectKey, *FunctionKey, *ArrayKey, *TupleKey:
		return TruthyAlways
	case *UnionKey:
		first := TruthinessOf(in, k.Members[0])
		for _, m := range k.Members[1:] {
			if TruthinessOf(in, m) != first {
				return TruthyUnknown
			}
		}
		return first
	}
	return TruthyUnknown
}

// literalIsFalsy reports whether a literal value coerces to false.
func literalIsFalsy(v LiteralValue) bool {
	switch v.Kind {
	case LiteralString:
		return v.Str == ""
	case LiteralNumber:
		return v.Num == 0 || v.Num != v.Num // 0, -0 or NaN
	case LiteralBoolean:
		return !v.Bool
	case LiteralBigint:
		return v.Str == "0" || v.Str == ""
	default:
		return false
	}
}

// DiscriminantProperties returns the names of properties that can
// discriminate a union of object types: present in every member with a
// unit type (literal, enum member, null or undefined) in each.
func DiscriminantProperties(in Interning, id TypeId) []string {
	u, ok := in.Lookup(id).(*UnionKey)
	if !ok {
		return nil
	}
	objs := make([]*ObjectKey, 0, len(u.Members))
	for _, m := range u.Members {
		obj, ok := in.Lookup(m).(*ObjectKey)
		if !ok {
			return nil
		}
		objs = append(objs, obj)
	}
	var names []string
	for _, p := range objs[0].Properties {
		unit := true
		for _, obj := range objs {
			op, ok := obj.Prop(p.Name)
			if !ok || !isUnitType(in, op.Type) {
				unit = false
				break
			}
		}
		if unit {
			names = append(names, p.Name)
		}
	}
	return names
}

// isUnitType reports whether the type has exactly one inhabitant.
func isUnitType(in Interning, id TypeId) bool {
	switch k := in.Lookup(id).(type) {
	case *LiteralKey:
		return true
	case *IntrinsicKey:
		return k.Kind == KindNull || k.Kind == KindUndefined
	}
	return false
}

// TypeofTagOf returns the runtime `typeof` tag of the type when it is
// statically known ("string", "number", ...), used for typeof
// narrowing. Unions with mixed tags report false.
func TypeofTagOf(in Interning, id TypeId) (string, bool) {
	switch k := in.Lookup(id).(type) {
	case *IntrinsicKey:
		switch k.Kind {
		case KindNumber:
			return "number", true
		case KindString:
			return "string", true
		case KindBoolean:
			return "boolean", true
		case KindBigint:
			return "bigint", true
		case KindSymbol:
			return "symbol", true
		case KindUndefined, KindVoid:
			return "undefined", true
		case KindNull, KindObject:
			return "object", true
		case KindFunction:
			return "function", true
		}
	case *LiteralKey:
		switch k.Value.Kind {
		case LiteralNumber:
			return "number", true
		case LiteralString:
			return "string", true
		case LiteralBoolean:
			return "boolean", true
		case LiteralBigint:
			return "bigint", true
		case LiteralUniqueSymbol:
			return "symbol", true
		}
	case *TemplateLiteralKey, *StringIntrinsicKey:
		return "string", true
	case *FunctionKey:
		return "function", true
	case *ObjectKey:
		if k.IsCallable() {
			return "function", true
		}
		return "object", true
	case *ArrayKey, *TupleKey:
		return "object", true
	case *EnumKey:
		return TypeofTagOf(in, k.Members)
	}
	return "", false
}
