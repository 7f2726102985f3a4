package solver

import (
	"tsolve/pkg/types"
)

// evaluator reduces type expressions to normal form. One evaluator is
// one top-level request: the guard (visiting set + operation counter)
// resets with it.
type evaluator struct {
	s         *Solver
	j         *judge
	guard     *RecursionGuard
	instDepth int
}

// related decides a relation from inside an evaluation. It goes through
// the query's own judge so the nested check draws on the same operation
// budget and in-flight sets as the evaluation driving it.
func (ev *evaluator) related(src, tgt types.TypeId, rel Relation) bool {
	if src == tgt {
		return true
	}
	key := relKey{src: src, tgt: tgt, rel: rel, bits: ev.s.cfg.cacheBits()}
	if v, ok := ev.s.cache.get(key); ok {
		return v
	}
	saved := ev.j.relation
	ev.j.relation = rel
	v := ev.j.check(src, tgt)
	ev.j.relation = saved
	if !ev.j.degraded && !ev.guard.Exhausted() {
		ev.s.cache.put(key, v)
	}
	return v
}

// eval reduces id under the substitution environment e. It is
// idempotent on normal forms and total: exceeding a bound returns the
// input (or Unknown for expansions), never panics.
func (ev *evaluator) eval(id types.TypeId, e env) types.TypeId {
	if id.IsIntrinsic() {
		return ev.substituteSentinel(id)
	}
	if !ev.guard.Enter() {
		return id
	}
	defer ev.guard.Leave()
	if !ev.guard.Visit(id) {
		// A true cycle through type-level computation.
		return types.Cyclic
	}
	defer ev.guard.Unvisit(id)

	switch k := ev.s.in.Lookup(id).(type) {
	case *types.TypeParameterKey:
		if bound, ok := lookupEnv(e, k.Name); ok {
			return bound
		}
		return id
	case *types.InferKey:
		if bound, ok := lookupEnv(e, k.Name); ok {
			return bound
		}
		return id

	case *types.ArrayKey:
		elem := ev.eval(k.Elem, e)
		if elem == k.Elem {
			return id
		}
		return ev.s.in.Intern(&types.ArrayKey{Elem: elem, Readonly: k.Readonly})
	case *types.TupleKey:
		changed := false
		elems := make([]types.TupleElement, len(k.Elems))
		for i, te := range k.Elems {
			elems[i] = te
			elems[i].Type = ev.eval(te.Type, e)
			changed = changed || elems[i].Type != te.Type
		}
		if !changed {
			return id
		}
		return ev.s.in.Intern(&types.TupleKey{Elems: elems, Readonly: k.Readonly})

	case *types.ObjectKey:
		return ev.evalObject(id, k, e)
	case *types.FunctionKey:
		sig, changed := ev.evalSignature(&k.Sig, e)
		if !changed {
			return id
		}
		return ev.s.in.Intern(&types.FunctionKey{Sig: *sig, IsConstructor: k.IsConstructor})

	case *types.UnionKey:
		changed := false
		members := make([]types.TypeId, len(k.Members))
		for i, m := range k.Members {
			members[i] = ev.eval(m, e)
			changed = changed || members[i] != m
		}
		if !changed {
			return id
		}
		return types.NewUnion(ev.s.in, members...)
	case *types.IntersectionKey:
		changed := false
		members := make([]types.TypeId, len(k.Members))
		for i, m := range k.Members {
			members[i] = ev.eval(m, e)
			changed = changed || members[i] != m
		}
		if !changed {
			return id
		}
		return types.NewIntersection(ev.s.in, members...)

	case *types.ApplicationKey:
		return ev.instantiate(k, e)
	case *types.ConditionalKey:
		return ev.evalConditional(k, e)
	case *types.MappedKey:
		return ev.evalMapped(k, e)
	case *types.TemplateLiteralKey:
		return ev.evalTemplate(k, e)
	case *types.IndexedAccessKey:
		obj := ev.eval(k.Object, e)
		idx := ev.eval(k.Index, e)
		return ev.evalIndexedAccess(obj, idx)
	case *types.KeyofKey:
		return ev.evalKeyof(ev.eval(k.Operand, e))
	case *types.StringIntrinsicKey:
		return ev.evalStringIntrinsic(k.Kind, ev.eval(k.Arg, e))

	default:
		// Ref, Enum, ModuleNamespace, Literal: already normal. Refs stay
		// symbolic; the Judge resolves them under its own cycle guard.
		return id
	}
}

// substituteSentinel handles sentinel ids, which carry no structure.
func (ev *evaluator) substituteSentinel(id types.TypeId) types.TypeId {
	return id
}

func (ev *evaluator) evalObject(id types.TypeId, k *types.ObjectKey, e env) types.TypeId {
	changed := false
	clone := *k
	clone.Properties = make([]types.Property, len(k.Properties))
	for i, p := range k.Properties {
		clone.Properties[i] = p
		clone.Properties[i].Type = ev.eval(p.Type, e)
		changed = changed || clone.Properties[i].Type != p.Type
	}
	evalIndex := func(idx *types.IndexSignature) *types.IndexSignature {
		if idx == nil {
			return nil
		}
		v := ev.eval(idx.Value, e)
		if v == idx.Value {
			return idx
		}
		changed = true
		return &types.IndexSignature{Value: v, Readonly: idx.Readonly}
	}
	clone.StringIndex = evalIndex(k.StringIndex)
	clone.NumberIndex = evalIndex(k.NumberIndex)

	evalSigs := func(sigs []types.Signature) []types.Signature {
		out := make([]types.Signature, len(sigs))
		for i := range sigs {
			s, c := ev.evalSignature(&sigs[i], e)
			out[i] = *s
			changed = changed || c
		}
		return out
	}
	clone.Calls = evalSigs(k.Calls)
	clone.Constructs = evalSigs(k.Constructs)

	if !changed {
		return id
	}
	return ev.s.in.Intern(&clone)
}

func (ev *evaluator) evalSignature(sig *types.Signature, e env) (*types.Signature, bool) {
	e = shadowed(e, sig.TypeParams)
	changed := false
	out := *sig
	out.Params = make([]types.Param, len(sig.Params))
	for i, p := range sig.Params {
		out.Params[i] = p
		out.Params[i].Type = ev.eval(p.Type, e)
		changed = changed || out.Params[i].Type != p.Type
	}
	if sig.This != types.NoType {
		out.This = ev.eval(sig.This, e)
		changed = changed || out.This != sig.This
	}
	out.Return = ev.eval(sig.Return, e)
	changed = changed || out.Return != sig.Return
	if sig.Predicate != nil && sig.Predicate.Type != types.NoType {
		pt := ev.eval(sig.Predicate.Type, e)
		if pt != sig.Predicate.Type {
			pred := *sig.Predicate
			pred.Type = pt
			out.Predicate = &pred
			changed = true
		}
	}
	if !changed {
		return sig, false
	}
	return &out, true
}

// evalConditional drives `Check extends Extends ? True : False`,
// distributing over naked-type-parameter unions and looping on
// tail-position conditionals instead of recursing. Recursive
// conditional aliases are idiomatic TypeScript; the loop is what keeps
// them off the Go stack.
func (ev *evaluator) evalConditional(key *types.ConditionalKey, e env) types.TypeId {
	cur, curEnv := key, e
	for i := 0; i < types.MaxTailEvaluationCount; i++ {
		check := ev.eval(cur.Check, curEnv)

		if cur.Distributive {
			if check == types.Never {
				return types.Never
			}
			if u, ok := ev.s.in.Lookup(check).(*types.UnionKey); ok {
				if result, ok := ev.distribute(cur, curEnv, u.Members); ok {
					return result
				}
			}
		}

		branch, branchEnv := ev.selectBranch(cur, curEnv, check)

		// Tail position: the selected branch may itself be a
		// conditional, directly or through one generic application.
		next, nextEnv, ok := ev.asTailConditional(branch, branchEnv)
		if ok {
			cur, curEnv = next, nextEnv
			continue
		}
		return ev.eval(branch, branchEnv)
	}
	ev.s.logEval.Warn("tail evaluation ceiling reached")
	return types.Unknown
}

func (ev *evaluator) distribute(key *types.ConditionalKey, e env, members []types.TypeId) (types.TypeId, bool) {
	// Distribution binds the naked check parameter to each member in
	// turn; a check that is not a bare parameter does not distribute.
	param, ok := ev.s.in.Lookup(key.Check).(*types.TypeParameterKey)
	if !ok {
		return types.NoType, false
	}
	if len(members) > types.MaxDistributionSize || !ev.guard.Spend(len(members)) {
		return types.Unknown, true
	}
	results := make([]types.TypeId, 0, len(members))
	for _, m := range members {
		one := *key
		one.Distributive = false
		results = append(results, ev.evalConditional(&one, bind(e, param.Name, m)))
	}
	return types.NewUnion(ev.s.in, results...), true
}

// selectBranch binds infer variables by structural match, decides the
// extends check, and returns the chosen branch with the binding
// environment (bindings are visible only on the true branch).
func (ev *evaluator) selectBranch(key *types.ConditionalKey, e env, check types.TypeId) (types.TypeId, env) {
	bindings := ev.matchInfers(check, key.Extends, e)
	extends := ev.eval(key.Extends, bindings)
	if ev.related(check, extends, Assignable) {
		return key.True, bindings
	}
	return key.False, e
}

// asTailConditional unwraps branch to a conditional when it is one
// directly or through one level of generic application.
func (ev *evaluator) asTailConditional(branch types.TypeId, e env) (*types.ConditionalKey, env, bool) {
	switch k := ev.s.in.Lookup(branch).(type) {
	case *types.ConditionalKey:
		return k, e, true
	case *types.ApplicationKey:
		ref, ok := ev.s.in.Lookup(k.Base).(*types.RefKey)
		if !ok {
			return nil, e, false
		}
		body := ev.s.defs.Resolve(ref.Def)
		cond, ok := ev.s.in.Lookup(body).(*types.ConditionalKey)
		if !ok {
			return nil, e, false
		}
		params := ev.s.defs.TypeParams(ref.Def)
		for i, p := range params {
			arg := types.Unknown
			if i < len(k.Args) {
				arg = ev.eval(k.Args[i], e)
			} else if p.Default != types.NoType {
				arg = ev.eval(p.Default, e)
			}
			e = bind(e, p.Name, arg)
		}
		return cond, e, true
	}
	return nil, e, false
}

// matchInfers walks pattern and source in lockstep, binding each infer
// binder to the structure it aligns with. Unmatched binders bind to
// unknown. The match is best-effort; the authoritative verdict is the
// Judge's check of the substituted extends type.
func (ev *evaluator) matchInfers(source, pattern types.TypeId, e env) env {
	collected := map[string][]types.TypeId{}
	ev.collectInfers(source, pattern, e, collected, 0)
	ev.forEachInfer(pattern, func(name string) {
		if _, ok := lookupEnv(e, name); ok {
			return
		}
		cands := collected[name]
		switch len(cands) {
		case 0:
			e = bind(e, name, types.Unknown)
		case 1:
			e = bind(e, name, cands[0])
		default:
			e = bind(e, name, types.NewUnion(ev.s.in, cands...))
		}
	})
	return e
}

func (ev *evaluator) collectInfers(source, pattern types.TypeId, e env, out map[string][]types.TypeId, depth int) {
	if depth > types.MaxEvaluationDepth || !ev.guard.Spend(1) {
		return
	}
	switch pk := ev.s.in.Lookup(pattern).(type) {
	case *types.InferKey:
		out[pk.Name] = append(out[pk.Name], source)
	case *types.ArrayKey:
		switch sk := ev.s.in.Lookup(source).(type) {
		case *types.ArrayKey:
			ev.collectInfers(sk.Elem, pk.Elem, e, out, depth+1)
		case *types.TupleKey:
			for _, te := range sk.Elems {
				ev.collectInfers(te.Type, pk.Elem, e, out, depth+1)
			}
		}
	case *types.TupleKey:
		if sk, ok := ev.s.in.Lookup(source).(*types.TupleKey); ok {
			n := len(pk.Elems)
			if len(sk.Elems) < n {
				n = len(sk.Elems)
			}
			for i := 0; i < n; i++ {
				ev.collectInfers(sk.Elems[i].Type, pk.Elems[i].Type, e, out, depth+1)
			}
		}
	case *types.ObjectKey:
		if sk, ok := ev.s.in.Lookup(source).(*types.ObjectKey); ok {
			for _, pp := range pk.Properties {
				if sp, ok := sk.Prop(pp.Name); ok {
					ev.collectInfers(sp.Type, pp.Type, e, out, depth+1)
				}
			}
		}
	case *types.FunctionKey:
		sigs := types.CallSignaturesOf(ev.s.in, source)
		if pk.IsConstructor {
			sigs = types.ConstructSignaturesOf(ev.s.in, source)
		}
		if len(sigs) == 0 {
			return
		}
		ssig := sigs[len(sigs)-1]
		n := len(pk.Sig.Params)
		if len(ssig.Params) < n {
			n = len(ssig.Params)
		}
		for i := 0; i < n; i++ {
			ev.collectInfers(ssig.Params[i].Type, pk.Sig.Params[i].Type, e, out, depth+1)
		}
		ev.collectInfers(ssig.Return, pk.Sig.Return, e, out, depth+1)
	case *types.ApplicationKey:
		if sk, ok := ev.s.in.Lookup(source).(*types.ApplicationKey); ok && sk.Base == pk.Base {
			n := len(pk.Args)
			if len(sk.Args) < n {
				n = len(sk.Args)
			}
			for i := 0; i < n; i++ {
				ev.collectInfers(sk.Args[i], pk.Args[i], e, out, depth+1)
			}
		}
	case *types.TemplateLiteralKey:
		ev.collectTemplateInfers(source, pk, out)
	case *types.UnionKey:
		for _, m := range pk.Members {
			ev.collectInfers(source, m, e, out, depth+1)
		}
	}
}

// forEachInfer enumerates the infer binder names inside pattern.
func (ev *evaluator) forEachInfer(pattern types.TypeId, fn func(name string)) {
	seen := map[types.TypeId]bool{}
	var walk func(id types.TypeId)
	walk = func(id types.TypeId) {
		if seen[id] {
			return
		}
		seen[id] = true
		switch k := ev.s.in.Lookup(id).(type) {
		case *types.InferKey:
			fn(k.Name)
		case *types.ArrayKey:
			walk(k.Elem)
		case *types.TupleKey:
			for _, te := range k.Elems {
				walk(te.Type)
			}
		case *types.ObjectKey:
			for _, p := range k.Properties {
				walk(p.Type)
			}
		case *types.FunctionKey:
			for _, p := range k.Sig.Params {
				walk(p.Type)
			}
			walk(k.Sig.Return)
		case *types.ApplicationKey:
			for _, a := range k.Args {
				walk(a)
			}
		case *types.UnionKey:
			for _, m := range k.Members {
				walk(m)
			}
		case *types.IntersectionKey:
			for _, m := range k.Members {
				walk(m)
			}
		case *types.TemplateLiteralKey:
			for _, sp := range k.Spans {
				if sp.Type != types.NoType {
					walk(sp.Type)
				}
			}
		}
	}
	walk(pattern)
}
