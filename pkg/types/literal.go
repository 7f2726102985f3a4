package types

import (
	"fmt"
	"math"
	"strconv"
)

// --- Literal Types ---

// LiteralKind identifies the primitive a literal type belongs to.
type LiteralKind uint8

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralBigint
	LiteralUniqueSymbol
)

// LiteralValue holds the value of a literal type. Numbers compare by
// bit pattern so NaN literals intern consistently.
type LiteralValue struct {
	Kind LiteralKind
	Str  string  // string literal text, or bigint digits
	Num  float64 // numeric literal value
	Bool bool    // boolean literal value
	Sym  uint32  // unique-symbol identity
}

// StringValue builds a string literal value.
func StringValue(s string) LiteralValue { return LiteralValue{Kind: LiteralString, Str: s} }

// NumberValue builds a numeric literal value.
func NumberValue(n float64) LiteralValue { return LiteralValue{Kind: LiteralNumber, Num: n} }

// BoolValue builds a boolean literal value.
func BoolValue(v bool) LiteralValue { return LiteralValue{Kind: LiteralBoolean, Bool: v} }

// BigintValue builds a bigint literal value from its digit string.
func BigintValue(digits string) LiteralValue { return LiteralValue{Kind: LiteralBigint, Str: digits} }

// UniqueSymbolValue builds a unique-symbol literal value.
func UniqueSymbolValue(sym uint32) LiteralValue {
	return LiteralValue{Kind: LiteralUniqueSymbol, Sym: sym}
}

// BaseKind returns the intrinsic the literal widens to.
func (v LiteralValue) BaseKind() IntrinsicKind {
	switch v.Kind {
	case LiteralString:
		return KindString
	case LiteralNumber:
		return KindNumber
	case LiteralBoolean:
		return KindBoolean
	case LiteralBigint:
		return KindBigint
	case LiteralUniqueSymbol:
		return KindSymbol
	default:
		return KindError
	}
}

// Equal reports value equality. Numbers compare by bit pattern.
func (v LiteralValue) Equal(o LiteralValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case LiteralString, LiteralBigint:
		return v.Str == o.Str
	case LiteralNumber:
		return math.Float64bits(v.Num) == math.Float64bits(o.Num)
	case LiteralBoolean:
		return v.Bool == o.Bool
	case LiteralUniqueSymbol:
		return v.Sym == o.Sym
	default:
		return false
	}
}

// String returns the TypeScript spelling of the literal type.
func (v LiteralValue) String() string {
	switch v.Kind {
	case LiteralString:
		return strconv.Quote(v.Str)
	case LiteralNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case LiteralBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case LiteralBigint:
		return v.Str + "n"
	case LiteralUniqueSymbol:
		return fmt.Sprintf("unique symbol #%d", v.Sym)
	default:
		return "<bad literal>"
	}
}

// LiteralKey is the TypeKey for a literal type.
type LiteralKey struct {
	Value LiteralValue
}

func (k *LiteralKey) typeKey() {}

func (k *LiteralKey) appendHash(b []byte) []byte {
	b = append(b, tagLiteral, byte(k.Value.Kind))
	switch k.Value.Kind {
	case LiteralString, LiteralBigint:
		b = appendStr(b, k.Value.Str)
	case LiteralNumber:
		b = appendF64(b, k.Value.Num)
	case LiteralBoolean:
		b = appendBool(b, k.Value.Bool)
	case LiteralUniqueSymbol:
		b = appendU32(b, k.Value.Sym)
	}
	return b
}

func (k *LiteralKey) equalKey(other TypeKey) bool {
	o, ok := other.(*LiteralKey)
	return ok && k.Value.Equal(o.Value)
}
