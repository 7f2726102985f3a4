// Package solver implements the query surface of the type algebra: the
// Evaluator, the Subtype Judge, the Inference Engine and the Narrowing
// Engine. They live in one package because evaluation and subtyping are
// mutually recursive (conditional types consult the Judge; the Judge
// evaluates computed types before comparing).
package solver

// Relation selects which compatibility relation a query decides.
type Relation uint8

const (
	// Assignable is the permissive everyday relation: any flows both
	// ways, methods compare bivariantly.
	Assignable Relation = iota
	// Subtype is the strict structural relation used internally and by
	// strict-mode callers.
	Subtype
)

// AnyMode controls how `any` interacts with the relations.
type AnyMode uint8

const (
	// AnyStandard lets any flow in both directions: it suppresses the
	// check entirely wherever it appears, nested included.
	AnyStandard AnyMode = iota
	// AnySound treats any as top-only: everything is assignable to it,
	// it is assignable only to top types.
	AnySound
)

// Config carries the behavior switches of a Solver. The flags are part
// of relation-cache keys, so two solvers over one interner may differ
// in configuration without cross-contaminating verdicts.
type Config struct {
	// StrictNullChecks removes null/undefined from every type's
	// implicit domain. When off, null and undefined are assignable to
	// anything but never/unknown-free targets.
	StrictNullChecks bool

	// StrictFunctionTypes compares standalone function parameters
	// contravariantly. Off means bivariant everywhere, matching the
	// reference language's legacy mode.
	StrictFunctionTypes bool

	// MethodBivariance keeps the method-position carve-out even under
	// StrictFunctionTypes.
	MethodBivariance bool

	// Any selects standard or sound any flow.
	Any AnyMode

	// StickyFreshness keeps the fresh marker through widening hops, an
	// opt-in strictness extension. The baseline is single-hop.
	StickyFreshness bool
}

// DefaultConfig mirrors the reference checker's defaults: strict nulls
// and function types on, methods bivariant, standard any.
func DefaultConfig() Config {
	return Config{
		StrictNullChecks:    true,
		StrictFunctionTypes: true,
		MethodBivariance:    true,
		Any:                 AnyStandard,
	}
}

// cacheBits folds the verdict-relevant flags into a relation-cache key
// component.
func (c Config) cacheBits() uint8 {
	var bits uint8
	if c.StrictNullChecks {
		bits |= 1 << 0
	}
	if c.StrictFunctionTypes {
		bits |= 1 << 1
	}
	if c.MethodBivariance {
		bits |= 1 << 2
	}
	if c.Any == AnySound {
		bits |= 1 << 3
	}
	if c.StickyFreshness {
		bits |= 1 << 4
	}
	return bits
}
