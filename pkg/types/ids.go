package types

// TypeId is an opaque handle to an interned type. Handles are the
// currency of the whole algebra: structural equality of types is
// integer equality of handles, and composite keys reference their
// components by handle only.
//
// The id space is partitioned by the most significant bit: global
// handles (MSB clear) live in the process-wide Interner and are stable
// for its lifetime; local handles (MSB set) live in a per-request
// Scoped interner and die with it.
type TypeId uint32

// Sentinel handles. These are pre-registered in every Interner so the
// common intrinsics never allocate and compare as constants.
const (
	// NoType is the zero handle, "absent". It is never a valid type.
	NoType TypeId = iota
	// ErrorType is the poison type produced by invalid construction or
	// resolution failure. It propagates instead of panicking.
	ErrorType
	// Cyclic is the provisional result of a definition currently being
	// resolved; it appears only while a resolution cycle is in flight.
	Cyclic
	Never
	Unknown
	Any
	Void
	Undefined
	Null
	Boolean
	Number
	String
	Bigint
	SymbolPrim
	ObjectPrim
	True
	False
	FunctionPrim
)

// FirstUserTypeId is the first handle the interner allocates; ids below
// it are sentinels.
const FirstUserTypeId TypeId = 32

// LocalMask is the partition bit: set for per-request local handles.
const LocalMask TypeId = 1 << 31

// IsIntrinsic reports whether the handle is a pre-registered sentinel.
func (id TypeId) IsIntrinsic() bool { return id < FirstUserTypeId }

// IsLocal reports whether the handle lives in a per-request partition.
func (id TypeId) IsLocal() bool { return id&LocalMask != 0 }

// IsGlobal reports whether the handle lives in the process-wide
// partition (sentinels included).
func (id TypeId) IsGlobal() bool { return !id.IsLocal() }

// DefId identifies a named declaration in the Definition Store. Type
// keys reference declarations by DefId only; the store owns name,
// body and laziness.
type DefId uint32

// NoDef is the absent DefId.
const NoDef DefId = 0
