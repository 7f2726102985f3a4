package types

// --- Intrinsic Types ---

// IntrinsicKind identifies one of the built-in singleton types.
type IntrinsicKind uint8

const (
	KindError IntrinsicKind = iota
	KindCyclic
	KindNever
	KindUnknown
	KindAny
	KindVoid
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindBigint
	KindSymbol
	KindObject
	KindFunction
)

// String returns the TypeScript spelling of the intrinsic.
func (k IntrinsicKind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindCyclic:
		return "(cyclic)"
	case KindNever:
		return "never"
	case KindUnknown:
		return "unknown"
	case KindAny:
		return "any"
	case KindVoid:
		return "void"
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBigint:
		return "bigint"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	case KindFunction:
		return "Function"
	default:
		return "unknown"
	}
}

// TypeId returns the fixed sentinel handle for the intrinsic.
func (k IntrinsicKind) TypeId() TypeId {
	switch k {
	case KindError:
		return ErrorType
	case KindCyclic:
		return Cyclic
	case KindNever:
		return Never
	case KindUnknown:
		return Unknown
	case KindAny:
		return Any
	case KindVoid:
		return Void
	case KindUndefined:
		return Undefined
	case KindNull:
		return Null
	case KindBoolean:
		return Boolean
	case KindNumber:
		return Number
	case KindString:
		return String
	case KindBigint:
		return Bigint
	case KindSymbol:
		return SymbolPrim
	case KindObject:
		return ObjectPrim
	case KindFunction:
		return FunctionPrim
	default:
		return ErrorType
	}
}

// IntrinsicKey is the TypeKey for a built-in singleton type.
type IntrinsicKey struct {
	Kind IntrinsicKind
}

func (k *IntrinsicKey) typeKey() {}

func (k *IntrinsicKey) appendHash(b []byte) []byte {
	return append(b, tagIntrinsic, byte(k.Kind))
}

func (k *IntrinsicKey) equalKey(other TypeKey) bool {
	o, ok := other.(*IntrinsicKey)
	return ok && k.Kind == o.Kind
}
