package types

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// TypeKey is the structural description of a type, the unit the
// interner exchanges for a TypeId. The variant set is closed: every
// implementation lives in this package. Keys are immutable once
// interned; composite keys reference components by TypeId only, never
// by pointer, so a key is meaningful only together with the interner
// that issued its component handles.
type TypeKey interface {
	// appendHash appends the key's canonical byte encoding, starting
	// with a per-variant tag byte. Equal keys encode identically.
	appendHash(b []byte) []byte
	// equalKey reports structural equality with another key. It is the
	// collision-resolving complement of the hash.
	equalKey(other TypeKey) bool
	typeKey()
}

// Per-variant tag bytes. Each appendHash encoding starts with one so
// different variants never hash-collide by sharing a byte layout.
const (
	tagIntrinsic byte = iota + 1
	tagLiteral
	tagObject
	tagFunction
	tagArray
	tagTuple
	tagUnion
	tagIntersection
	tagRef
	tagApplication
	tagConditional
	tagMapped
	tagTemplateLiteral
	tagIndexedAccess
	tagKeyof
	tagTypeParameter
	tagInfer
	tagStringIntrinsic
	tagEnum
	tagModuleNamespace
)

// hashKey hashes a key's canonical encoding.
func hashKey(key TypeKey) uint64 {
	var buf [128]byte
	return xxh3.Hash(key.appendHash(buf[:0]))
}

func appendU32(b []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, v)
}

func appendID(b []byte, id TypeId) []byte {
	return appendU32(b, uint32(id))
}

func appendIDs(b []byte, ids []TypeId) []byte {
	b = appendU32(b, uint32(len(ids)))
	for _, id := range ids {
		b = appendID(b, id)
	}
	return b
}

func appendF64(b []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// appendStr length-prefixes the string so adjacent fields cannot alias.
func appendStr(b []byte, s string) []byte {
	b = appendU32(b, uint32(len(s)))
	return append(b, s...)
}

func sameIDs(a, b []TypeId) bool {
	if len(a) != len(b) {
		return false
	}
	for i, id := range a {
		if id != b[i] {
			return false
		}
	}
	return true
}
