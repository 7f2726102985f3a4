package solver

import (
	"strconv"

	"tsolve/pkg/types"
)

type pairKey struct{ src, tgt types.TypeId }
type defPairKey struct{ src, tgt types.DefId }

// judge is the per-query state of one relation check: the recursion
// guard, the in-flight pair sets for coinduction, and the failure chain
// under explanation mode. A bound firing sets degraded; degraded
// verdicts are provisional and never cached.
type judge struct {
	s        *Solver
	ev       *evaluator
	relation Relation
	guard    *RecursionGuard
	pairs    map[pairKey]struct{}
	defPairs map[defPairKey]struct{}
	explain  bool
	failure  *Failure
	degraded bool
}

// newQuery sets up the state for one top-level query: a judge and an
// evaluator that point at each other and draw on one operation budget.
// The two engines are mutually recursive (the judge reduces computed
// forms, the evaluator decides conditional branches), so neither bound
// holds unless the pair shares its in-flight state.
func newQuery(s *Solver, rel Relation, explain bool) (*judge, *evaluator) {
	b := newBudget()
	j := &judge{
		s:        s,
		relation: rel,
		guard:    newJudgeGuard(b),
		pairs:    make(map[pairKey]struct{}),
		defPairs: make(map[defPairKey]struct{}),
		explain:  explain,
	}
	ev := &evaluator{s: s, j: j, guard: newEvalGuard(b)}
	j.ev = ev
	return j, ev
}

// fail records a failure reason in explanation mode. It always returns
// false so call sites read `return j.fail(...)`.
func (j *judge) fail(f *Failure) bool {
	if j.explain {
		j.failure = f
	}
	return false
}

// provisional degrades the verdict: a bound fired, so answer true
// conservatively rather than report an error the budget invented.
func (j *judge) provisional() bool {
	j.degraded = true
	return true
}

// check decides src ⟶ tgt for the judge's relation.
func (j *judge) check(src, tgt types.TypeId) bool {
	if src == tgt {
		return true
	}
	// Poison and provisional sentinels compare compatible in both
	// directions; degradation must not cascade into diagnostics.
	if src == types.ErrorType || tgt == types.ErrorType || src == types.Cyclic || tgt == types.Cyclic {
		return true
	}

	// any is a propagated comparison flag, handled at this single
	// dispatch point for every nesting level.
	if src == types.Any || tgt == types.Any {
		if j.s.cfg.Any == AnyStandard {
			return true
		}
		if tgt == types.Any || tgt == types.Unknown {
			return true
		}
		return j.fail(newFailure(src, tgt, "any is top-only in sound mode"))
	}
	if tgt == types.Unknown {
		return true
	}
	if src == types.Never {
		return true
	}
	if src == types.Unknown {
		return j.fail(newFailure(src, tgt, "unknown flows only to top types"))
	}
	if !j.s.cfg.StrictNullChecks && (src == types.Null || src == types.Undefined) && tgt != types.Never {
		return true
	}

	if !j.guard.Enter() {
		return j.provisional()
	}
	defer j.guard.Leave()

	pk := pairKey{src, tgt}
	if _, ok := j.pairs[pk]; ok {
		// Coinduction: an in-flight pair holds provisionally.
		return true
	}
	if len(j.pairs) >= types.MaxInProgressPairs {
		return j.provisional()
	}
	j.pairs[pk] = struct{}{}
	defer delete(j.pairs, pk)

	sk := j.s.in.Lookup(src)
	tk := j.s.in.Lookup(tgt)

	// Reduce computed forms before structural dispatch.
	if isComputed(sk) {
		return j.check(j.ev.eval(src, emptyEnv()), tgt)
	}
	if isComputed(tk) {
		return j.check(src, j.ev.eval(tgt, emptyEnv()))
	}

	// Named references: nominal fast path on the DefId, then resolve
	// under the (DefId, DefId) cycle guard so recursive generic aliases
	// terminate.
	if sr, ok := sk.(*types.RefKey); ok {
		if tr, ok := tk.(*types.RefKey); ok {
			if sr.Def == tr.Def {
				return true
			}
			dp := defPairKey{sr.Def, tr.Def}
			if _, ok := j.defPairs[dp]; ok {
				return true
			}
			j.defPairs[dp] = struct{}{}
			defer delete(j.defPairs, dp)
			return j.check(j.s.defs.Resolve(sr.Def), j.s.defs.Resolve(tr.Def))
		}
		return j.check(j.s.defs.Resolve(sr.Def), tgt)
	}
	if tr, ok := tk.(*types.RefKey); ok {
		return j.check(src, j.s.defs.Resolve(tr.Def))
	}

	// Source union: every member must flow to the target.
	if su, ok := sk.(*types.UnionKey); ok {
		for i, m := range su.Members {
			if !j.check(m, tgt) {
				return j.fail(newFailure(src, tgt, "union member incompatible").withElement(i).because(j.failure))
			}
		}
		return true
	}
	// boolean behaves as true | false against a union target.
	if src == types.Boolean {
		if _, ok := tk.(*types.UnionKey); ok {
			return j.check(types.True, tgt) && j.check(types.False, tgt)
		}
	}
	// Target union: some member must accept the source.
	if tu, ok := tk.(*types.UnionKey); ok {
		for _, m := range tu.Members {
			if j.checkQuiet(src, m) {
				return true
			}
		}
		return j.fail(newFailure(src, tgt, "no union member accepts the source"))
	}
	// Target intersection: every member must accept the source.
	if ti, ok := tk.(*types.IntersectionKey); ok {
		for i, m := range ti.Members {
			if !j.check(src, m) {
				return j.fail(newFailure(src, tgt, "intersection member rejects the source").withElement(i).because(j.failure))
			}
		}
		return true
	}
	// Source intersection: any member flowing to the target suffices.
	if si, ok := sk.(*types.IntersectionKey); ok {
		for _, m := range si.Members {
			if j.checkQuiet(m, tgt) {
				return true
			}
		}
		return j.fail(newFailure(src, tgt, "no intersection member flows to the target"))
	}

	// Enums are nominal: identity by DefId, with the member union
	// carrying enum-to-primitive flow.
	if se, ok := sk.(*types.EnumKey); ok {
		if te, ok := tk.(*types.EnumKey); ok {
			if se.Def == te.Def {
				return true
			}
			return j.fail(newFailure(src, tgt, "distinct enums"))
		}
		return j.check(se.Members, tgt)
	}
	if _, ok := tk.(*types.EnumKey); ok {
		return j.fail(newFailure(src, tgt, "enum targets are nominal"))
	}

	// A type parameter flows through its upper bound.
	if sp, ok := sk.(*types.TypeParameterKey); ok {
		if sp.Constraint != types.NoType {
			return j.check(sp.Constraint, tgt)
		}
		return j.fail(newFailure(src, tgt, "unconstrained type parameter"))
	}
	if _, ok := tk.(*types.TypeParameterKey); ok {
		return j.fail(newFailure(src, tgt, "target is an opaque type parameter"))
	}

	switch t := tk.(type) {
	case *types.IntrinsicKey:
		return j.checkIntrinsicTarget(src, sk, tgt, t)
	case *types.LiteralKey:
		return j.fail(newFailure(src, tgt, "literal targets accept only themselves"))
	case *types.TemplateLiteralKey:
		return j.checkTemplateTarget(src, sk, tgt, t)
	case *types.ObjectKey:
		return j.checkObjectTarget(src, sk, tgt, t)
	case *types.FunctionKey:
		return j.checkFunctionTarget(src, sk, tgt, t)
	case *types.ArrayKey:
		return j.checkArrayTarget(src, sk, tgt, t)
	case *types.TupleKey:
		return j.checkTupleTarget(src, sk, tgt, t)
	case *types.ModuleNamespaceKey:
		return j.fail(newFailure(src, tgt, "namespace identity"))
	case *types.StringIntrinsicKey, *types.InferKey:
		return j.fail(newFailure(src, tgt, "symbolic target"))
	}
	return j.fail(newFailure(src, tgt, ""))
}

// checkQuiet runs a sub-check whose failure the caller will discard
// (disjunctive positions).
func (j *judge) checkQuiet(src, tgt types.TypeId) bool {
	saved, savedExplain := j.failure, j.explain
	j.explain = false
	ok := j.check(src, tgt)
	j.failure, j.explain = saved, savedExplain
	return ok
}

func isComputed(k types.TypeKey) bool {
	switch k.(type) {
	case *types.ConditionalKey, *types.MappedKey, *types.IndexedAccessKey,
		*types.KeyofKey, *types.ApplicationKey:
		return true
	}
	return false
}

func (j *judge) checkIntrinsicTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.IntrinsicKey) bool {
	switch t.Kind {
	case types.KindNever:
		return j.fail(newFailure(src, tgt, "nothing flows to never"))
	case types.KindVoid:
		if src == types.Undefined {
			return true
		}
	case types.KindObject:
		if types.PrimitiveFlagsOf(j.s.in, src)&types.FlagObjectLike != 0 {
			return true
		}
	case types.KindFunction:
		if types.PrimitiveFlagsOf(j.s.in, src)&types.FlagFunctionLike != 0 {
			return true
		}
	}
	switch s := sk.(type) {
	case *types.LiteralKey:
		if s.Value.BaseKind() == t.Kind {
			return true
		}
	case *types.TemplateLiteralKey, *types.StringIntrinsicKey:
		if t.Kind == types.KindString {
			return true
		}
	case *types.IntrinsicKey:
		// distinct intrinsics, not compatible
	}
	return j.fail(newFailure(src, tgt, ""))
}

// checkTemplateTarget matches sources against a template literal by
// backtracking span alignment, never by forcing a full expansion.
func (j *judge) checkTemplateTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.TemplateLiteralKey) bool {
	switch s := sk.(type) {
	case *types.LiteralKey:
		if s.Value.Kind == types.LiteralString && templateMatches(j.s.in, t, s.Value.Str) {
			return true
		}
	case *types.TemplateLiteralKey:
		if templateSubsumes(j.s.in, s, t) {
			return true
		}
	}
	return j.fail(newFailure(src, tgt, "string shape does not match template"))
}

func (j *judge) checkObjectTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.ObjectKey) bool {
	s, ok := sk.(*types.ObjectKey)
	if !ok {
		// Function sources flow to callable object shapes.
		if sf, isFn := sk.(*types.FunctionKey); isFn {
			return j.checkCallableObject(src, sf, tgt, t)
		}
		return j.fail(newFailure(src, tgt, "source is not an object"))
	}

	// Excess-property rule: a fresh literal may not carry properties
	// the target has no home for. Width subtyping resumes once the
	// fresh marker is widened away.
	if s.IsFresh() && (j.relation == Assignable || j.s.cfg.StickyFreshness) {
		for _, p := range s.Properties {
			if _, ok := t.Prop(p.Name); ok {
				continue
			}
			if t.StringIndex != nil || (t.NumberIndex != nil && isNumericName(p.Name)) {
				continue
			}
			return j.fail(newFailure(src, tgt, "excess property").withProperty(p.Name))
		}
	}

	for _, tp := range t.Properties {
		sp, ok := s.Prop(tp.Name)
		if !ok {
			if tp.Optional {
				continue
			}
			if s.StringIndex != nil && j.check(s.StringIndex.Value, tp.Type) {
				continue
			}
			return j.fail(newFailure(src, tgt, "missing property").withProperty(tp.Name))
		}
		if sp.Optional && !tp.Optional {
			return j.fail(newFailure(src, tgt, "optional source property for required target").withProperty(tp.Name))
		}
		if !j.check(sp.Type, tp.Type) {
			return j.fail(newFailure(src, tgt, "").withProperty(tp.Name).because(j.failure))
		}
	}

	if t.StringIndex != nil {
		for _, sp := range s.Properties {
			if !j.check(sp.Type, t.StringIndex.Value) {
				return j.fail(newFailure(src, tgt, "property incompatible with index signature").withProperty(sp.Name).because(j.failure))
			}
		}
		if s.StringIndex != nil && !j.check(s.StringIndex.Value, t.StringIndex.Value) {
			return j.fail(newFailure(src, tgt, "string index incompatible").because(j.failure))
		}
	}
	if t.NumberIndex != nil {
		for _, sp := range s.Properties {
			if isNumericName(sp.Name) && !j.check(sp.Type, t.NumberIndex.Value) {
				return j.fail(newFailure(src, tgt, "property incompatible with number index").withProperty(sp.Name).because(j.failure))
			}
		}
		srcIndex := s.NumberIndex
		if srcIndex == nil {
			srcIndex = s.StringIndex
		}
		if srcIndex != nil && !j.check(srcIndex.Value, t.NumberIndex.Value) {
			return j.fail(newFailure(src, tgt, "number index incompatible").because(j.failure))
		}
	}

	for i := range t.Calls {
		if !j.someSignatureMatches(s.Calls, &t.Calls[i]) {
			return j.fail(newFailure(src, tgt, "no compatible call signature"))
		}
	}
	for i := range t.Constructs {
		if !j.someSignatureMatches(s.Constructs, &t.Constructs[i]) {
			return j.fail(newFailure(src, tgt, "no compatible construct signature"))
		}
	}
	return true
}

func (j *judge) checkCallableObject(src types.TypeId, sf *types.FunctionKey, tgt types.TypeId, t *types.ObjectKey) bool {
	for _, tp := range t.Properties {
		if !tp.Optional {
			return j.fail(newFailure(src, tgt, "missing property").withProperty(tp.Name))
		}
	}
	if sf.IsConstructor {
		for i := range t.Constructs {
			if !j.signatureCompatible(&sf.Sig, &t.Constructs[i], false) {
				return j.fail(newFailure(src, tgt, "construct signature incompatible"))
			}
		}
		if len(t.Calls) > 0 {
			return j.fail(newFailure(src, tgt, "constructor source for callable target"))
		}
		return true
	}
	for i := range t.Calls {
		if !j.signatureCompatible(&sf.Sig, &t.Calls[i], t.Calls[i].IsMethod) {
			return j.fail(newFailure(src, tgt, "call signature incompatible"))
		}
	}
	if len(t.Constructs) > 0 {
		return j.fail(newFailure(src, tgt, "callable source for constructor target"))
	}
	return true
}

func (j *judge) someSignatureMatches(srcSigs []types.Signature, tgtSig *types.Signature) bool {
	for i := range srcSigs {
		if j.signatureCompatible(&srcSigs[i], tgtSig, tgtSig.IsMethod) {
			return true
		}
	}
	return false
}

func (j *judge) checkFunctionTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.FunctionKey) bool {
	switch s := sk.(type) {
	case *types.FunctionKey:
		if s.IsConstructor != t.IsConstructor {
			return j.fail(newFailure(src, tgt, "call vs construct mismatch"))
		}
		if j.signatureCompatible(&s.Sig, &t.Sig, t.Sig.IsMethod) {
			return true
		}
		if j.failure == nil || !j.explain {
			return j.fail(newFailure(src, tgt, "incompatible signature"))
		}
		return j.fail(newFailure(src, tgt, "").because(j.failure))
	case *types.ObjectKey:
		sigs := s.Calls
		if t.IsConstructor {
			sigs = s.Constructs
		}
		for i := range sigs {
			if j.signatureCompatible(&sigs[i], &t.Sig, t.Sig.IsMethod) {
				return true
			}
		}
	}
	return j.fail(newFailure(src, tgt, "source is not callable"))
}

// signatureCompatible decides whether a source signature may stand in
// for the target signature. Parameters compare contravariantly under
// strict function types, bivariantly in method position (the reference
// language's documented carve-out) or when strictness is off; returns
// compare covariantly, with a void target accepting anything.
func (j *judge) signatureCompatible(s, t *types.Signature, methodPosition bool) bool {
	if s.RequiredParamCount() > len(t.Params) && t.RestType() == types.NoType {
		j.fail(newFailure(types.NoType, types.NoType, "parameter count"))
		return false
	}

	bivariant := !j.s.cfg.StrictFunctionTypes ||
		(methodPosition && j.s.cfg.MethodBivariance && j.relation == Assignable)

	n := len(s.Params)
	if s.RestType() != types.NoType {
		n--
	}
	for i := 0; i < n; i++ {
		tp := paramTypeAt(j.s.in, t, i)
		if tp == types.NoType {
			break
		}
		sp := s.Params[i].Type
		ok := j.checkQuiet(tp, sp)
		if !ok && bivariant {
			ok = j.checkQuiet(sp, tp)
		}
		if !ok {
			j.fail(newFailure(sp, tp, "parameter incompatible").withParam(i))
			return false
		}
	}
	if rest := s.RestType(); rest != types.NoType {
		if elem, ok := j.s.in.Lookup(rest).(*types.ArrayKey); ok {
			for i := n; i < len(t.Params); i++ {
				tp := paramTypeAt(j.s.in, t, i)
				if tp == types.NoType {
					break
				}
				ok := j.checkQuiet(tp, elem.Elem)
				if !ok && bivariant {
					ok = j.checkQuiet(elem.Elem, tp)
				}
				if !ok {
					j.fail(newFailure(elem.Elem, tp, "rest parameter incompatible").withParam(i))
					return false
				}
			}
		}
	}

	if s.This != types.NoType && t.This != types.NoType && !j.checkQuiet(t.This, s.This) {
		j.fail(newFailure(t.This, s.This, "this parameter incompatible"))
		return false
	}

	if t.Predicate != nil {
		if s.Predicate == nil ||
			s.Predicate.Asserts != t.Predicate.Asserts ||
			s.Predicate.ParamIndex != t.Predicate.ParamIndex ||
			(t.Predicate.Type != types.NoType && !j.checkQuiet(s.Predicate.Type, t.Predicate.Type)) {
			j.fail(newFailure(types.NoType, types.NoType, "type predicate incompatible"))
			return false
		}
	}

	if t.Return == types.Void {
		return true
	}
	if !j.check(s.Return, t.Return) {
		j.fail(newFailure(s.Return, t.Return, "return type incompatible").because(j.failure))
		return false
	}
	return true
}

// paramTypeAt returns the target-side parameter type at position i,
// expanding a trailing rest parameter, or NoType past the end.
func paramTypeAt(in types.Interning, sig *types.Signature, i int) types.TypeId {
	if i < sig.FixedParamCount() {
		return sig.Params[i].Type
	}
	if rest := sig.RestType(); rest != types.NoType {
		if arr, ok := in.Lookup(rest).(*types.ArrayKey); ok {
			return arr.Elem
		}
	}
	return types.NoType
}

func (j *judge) checkArrayTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.ArrayKey) bool {
	switch s := sk.(type) {
	case *types.ArrayKey:
		if s.Readonly && !t.Readonly {
			return j.fail(newFailure(src, tgt, "readonly array to mutable"))
		}
		if !j.check(s.Elem, t.Elem) {
			return j.fail(newFailure(src, tgt, "").because(j.failure))
		}
		return true
	case *types.TupleKey:
		if s.Readonly && !t.Readonly {
			return j.fail(newFailure(src, tgt, "readonly tuple to mutable array"))
		}
		for i, te := range s.Elems {
			et := te.Type
			if te.Rest {
				if arr, ok := j.s.in.Lookup(te.Type).(*types.ArrayKey); ok {
					et = arr.Elem
				}
			}
			if !j.check(et, t.Elem) {
				return j.fail(newFailure(src, tgt, "").withElement(i).because(j.failure))
			}
		}
		return true
	}
	return j.fail(newFailure(src, tgt, "source is not array-like"))
}

func (j *judge) checkTupleTarget(src types.TypeId, sk types.TypeKey, tgt types.TypeId, t *types.TupleKey) bool {
	s, ok := sk.(*types.TupleKey)
	if !ok {
		// Arrays of statically-unknown length never satisfy a
		// fixed-length tuple.
		return j.fail(newFailure(src, tgt, "unknown-length source for fixed tuple"))
	}
	if s.Readonly && !t.Readonly {
		return j.fail(newFailure(src, tgt, "readonly tuple to mutable"))
	}
	if s.FixedCount() < t.RequiredCount() && s.RestElem() == types.NoType {
		return j.fail(newFailure(src, tgt, "tuple too short"))
	}
	if t.RestElem() == types.NoType {
		if s.RestElem() != types.NoType {
			return j.fail(newFailure(src, tgt, "open source tuple for fixed tuple"))
		}
		if s.FixedCount() > len(t.Elems) {
			return j.fail(newFailure(src, tgt, "tuple too long"))
		}
	}
	for i := 0; i < t.FixedCount(); i++ {
		st := tupleElemAt(j.s.in, s, i)
		if st == types.NoType {
			if t.Elems[i].Optional {
				continue
			}
			return j.fail(newFailure(src, tgt, "missing element").withElement(i))
		}
		if !j.check(st, t.Elems[i].Type) {
			return j.fail(newFailure(src, tgt, "").withElement(i).because(j.failure))
		}
	}
	if rest := t.RestElem(); rest != types.NoType {
		if arr, ok := j.s.in.Lookup(rest).(*types.ArrayKey); ok {
			for i := t.FixedCount(); i < s.FixedCount(); i++ {
				if !j.check(s.Elems[i].Type, arr.Elem) {
					return j.fail(newFailure(src, tgt, "").withElement(i).because(j.failure))
				}
			}
			if srest := s.RestElem(); srest != types.NoType && !j.check(srest, rest) {
				return j.fail(newFailure(src, tgt, "rest element incompatible").because(j.failure))
			}
		}
	}
	return true
}

// tupleElemAt returns the source element type at position i, expanding
// a trailing rest element, or NoType past the end.
func tupleElemAt(in types.Interning, k *types.TupleKey, i int) types.TypeId {
	if i < k.FixedCount() {
		return k.Elems[i].Type
	}
	if rest := k.RestElem(); rest != types.NoType {
		if arr, ok := in.Lookup(rest).(*types.ArrayKey); ok {
			return arr.Elem
		}
	}
	return types.NoType
}

// isNumericName reports whether a property name is a canonical numeric
// key.
func isNumericName(name string) bool {
	if name == "" {
		return false
	}
	n, err := strconv.ParseFloat(name, 64)
	if err != nil {
		return false
	}
	return strconv.FormatFloat(n, 'g', -1, 64) == name
}
