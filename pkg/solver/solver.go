package solver

import (
	"log/slog"

	ilog "tsolve/internal/log"
	"tsolve/pkg/defs"
	"tsolve/pkg/types"
)

// Solver is the query surface the checker talks to. It owns no type
// state of its own beyond the relation cache; all type identity lives
// in the interner and all declarations in the store. A Solver is safe
// for concurrent use; each query allocates its own recursion state.
type Solver struct {
	in    types.Interning
	defs  *defs.Store
	cfg   Config
	cache *relationCache

	logEval   *slog.Logger
	logJudge  *slog.Logger
	logInfer  *slog.Logger
	logNarrow *slog.Logger
}

// New creates a solver over the given interner and definition store.
func New(in types.Interning, store *defs.Store, cfg Config) *Solver {
	return &Solver{
		in:        in,
		defs:      store,
		cfg:       cfg,
		cache:     newRelationCache(),
		logEval:   ilog.DefaultLogger.With("section", "evaluate"),
		logJudge:  ilog.DefaultLogger.With("section", "judge"),
		logInfer:  ilog.DefaultLogger.With("section", "infer"),
		logNarrow: ilog.DefaultLogger.With("section", "narrow"),
	}
}

// Interner returns the solver's interning view.
func (s *Solver) Interner() types.Interning { return s.in }

// Config returns the solver's configuration.
func (s *Solver) Config() Config { return s.cfg }

// IsAssignable decides TypeScript's everyday compatibility relation.
func (s *Solver) IsAssignable(src, tgt types.TypeId) bool {
	return s.related(src, tgt, Assignable)
}

// IsSubtype decides the strict structural relation.
func (s *Solver) IsSubtype(src, tgt types.TypeId) bool {
	return s.related(src, tgt, Subtype)
}

func (s *Solver) related(src, tgt types.TypeId, rel Relation) bool {
	if src == tgt {
		return true
	}
	key := relKey{src: src, tgt: tgt, rel: rel, bits: s.cfg.cacheBits()}
	if v, ok := s.cache.get(key); ok {
		return v
	}
	j, _ := newQuery(s, rel, false)
	v := j.check(src, tgt)
	if j.degraded || j.guard.Exhausted() {
		// Bound-degraded verdicts are provisional; caching them would
		// freeze an artifact of one query's budget.
		s.logJudge.Debug("provisional verdict", "src", uint32(src), "tgt", uint32(tgt))
	} else {
		s.cache.put(key, v)
	}
	return v
}

// Explain re-runs an assignability check in explanation mode and
// returns the failure chain, or nil when the relation holds.
func (s *Solver) Explain(src, tgt types.TypeId) *Failure {
	j, _ := newQuery(s, Assignable, true)
	if j.check(src, tgt) {
		return nil
	}
	if j.failure == nil {
		return newFailure(src, tgt, "")
	}
	return j.failure
}

// Evaluate reduces a type to normal form. Idempotent: a type already in
// normal form comes back unchanged, same handle.
func (s *Solver) Evaluate(id types.TypeId) types.TypeId {
	_, ev := newQuery(s, Assignable, false)
	return ev.eval(id, emptyEnv())
}

// Sprint renders a type through the solver's interner.
func (s *Solver) Sprint(id types.TypeId) string { return types.Sprint(s.in, id) }

// Classifier pass-throughs, so the checker never imports the variant
// set directly.

// IsCallable reports whether the type has call signatures.
func (s *Solver) IsCallable(id types.TypeId) bool { return types.IsCallable(s.in, id) }

// CallSignatureCount returns the number of call signatures.
func (s *Solver) CallSignatureCount(id types.TypeId) int {
	return len(types.CallSignaturesOf(s.in, id))
}

// IterableElement returns the element type iteration yields, if known.
func (s *Solver) IterableElement(id types.TypeId) (types.TypeId, bool) {
	return types.IterableElementOf(s.in, s.Evaluate(id))
}

// PrimitiveFlags returns the type's primitive-ness categories.
func (s *Solver) PrimitiveFlags(id types.TypeId) types.PrimitiveFlags {
	return types.PrimitiveFlagsOf(s.in, id)
}

// Truthiness reports whether the type's boolean coercion is statically
// known.
func (s *Solver) Truthiness(id types.TypeId) types.Truthiness {
	return types.TruthinessOf(s.in, id)
}

// IsArrayLike reports whether the type is an array or tuple shape.
func (s *Solver) IsArrayLike(id types.TypeId) bool {
	return types.IsArrayLike(s.in, s.Evaluate(id))
}

// DiscriminantProperties returns the union's discriminant property
// names.
func (s *Solver) DiscriminantProperties(id types.TypeId) []string {
	return types.DiscriminantProperties(s.in, s.Evaluate(id))
}
