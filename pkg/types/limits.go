package types

// Resource ceilings. Every recursive or expanding operation in the
// algebra is bounded by one of these; crossing a bound degrades the
// result (ErrorType, Unknown, or a provisional verdict) rather than
// diverging. Values follow the reference checker's observed limits.

const (
	// ShardBits is the number of shard-selector bits folded into each
	// allocated handle.
	ShardBits = 6
	// ShardCount is the number of interner shards.
	ShardCount = 1 << ShardBits
	// ShardMask extracts the shard selector from a hash or handle.
	ShardMask = ShardCount - 1

	// MaxInternedTypes is the global interner's saturation ceiling.
	MaxInternedTypes = 500_000

	// MaxSubtypeDepth bounds structural recursion in the Judge.
	MaxSubtypeDepth = 100
	// MaxEvaluationDepth bounds recursive type evaluation.
	MaxEvaluationDepth = 50
	// MaxInstantiationDepth bounds generic instantiation nesting.
	MaxInstantiationDepth = 50
	// MaxOperations is the per-query total work budget.
	MaxOperations = 100_000
	// MaxTailEvaluationCount bounds the tail-recursive conditional loop.
	MaxTailEvaluationCount = 1000
	// MaxInProgressPairs bounds the Judge's in-flight pair set.
	MaxInProgressPairs = 10_000

	// TemplateLiteralExpansionLimit is the largest cross product a
	// template literal expands to; beyond it the template stays symbolic.
	TemplateLiteralExpansionLimit = 2000
	// MaxMappedKeys bounds mapped-type key fan-out.
	MaxMappedKeys = 250
	// MaxUnionReductionSize bounds literal-absorption work in NewUnion.
	MaxUnionReductionSize = 25
	// MaxDisjointCheckSize bounds the disjointness scan in NewIntersection.
	MaxDisjointCheckSize = 25
	// MaxDistributionSize bounds conditional distribution over a union.
	MaxDistributionSize = 100
	// MaxWidenDepth bounds recursive literal widening.
	MaxWidenDepth = 10
)
