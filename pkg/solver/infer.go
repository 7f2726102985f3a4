package solver

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"tsolve/pkg/types"
)

// Priority orders inference candidates. A type collected from argument
// position outranks one derived from contextual return position when a
// variable gathers both.
type Priority int

const (
	PriorityReturn Priority = iota
	PriorityArgument
)

type candidate struct {
	id       types.TypeId
	priority Priority
	// literal pins the candidate against widening; template captures
	// are meaningful only at their exact text.
	literal bool
}

// ConstraintViolation records an inference result that failed its
// declared upper bound. The binding is still produced best-effort so a
// caller can report the violation and keep checking.
type ConstraintViolation struct {
	Param     string
	Candidate types.TypeId
	Bound     types.TypeId
}

// Substitution is the outcome of inferring a call's type arguments.
type Substitution struct {
	Bindings   map[string]types.TypeId
	Violations []ConstraintViolation
}

// inference accumulates candidates for each type parameter of one call
// site. Parameters that appear in mutually-constraining positions are
// merged into a shared candidate pool so all of them resolve to a
// single consistent type.
type inference struct {
	s      *Solver
	params []types.TypeParam
	index  map[string]int
	group  []int
	cands  [][]candidate
	seen   map[pairKey]struct{}
}

// Infer deduces type arguments for sig from the argument types of one
// call. Missing information falls back to the parameter's default, then
// unknown. Bound failures are reported, not fatal.
func (s *Solver) Infer(sig *types.Signature, args []types.TypeId) Substitution {
	inf := &inference{
		s:      s,
		params: sig.TypeParams,
		index:  make(map[string]int, len(sig.TypeParams)),
		group:  make([]int, len(sig.TypeParams)),
		cands:  make([][]candidate, len(sig.TypeParams)),
		seen:   make(map[pairKey]struct{}),
	}
	for i, tp := range sig.TypeParams {
		inf.index[tp.Name] = i
		inf.group[i] = i
	}

	for i, arg := range args {
		pt := paramTypeAt(s.in, sig, i)
		if pt == types.NoType {
			break
		}
		inf.collect(pt, arg, PriorityArgument)
	}

	return inf.resolve()
}

// find follows group links to the pool representative.
func (inf *inference) find(i int) int {
	for inf.group[i] != i {
		inf.group[i] = inf.group[inf.group[i]]
		i = inf.group[i]
	}
	return i
}

// merge joins two parameters' candidate pools.
func (inf *inference) merge(a, b int) {
	ra, rb := inf.find(a), inf.find(b)
	if ra == rb {
		return
	}
	inf.group[rb] = ra
	inf.cands[ra] = append(inf.cands[ra], inf.cands[rb]...)
	inf.cands[rb] = nil
}

func (inf *inference) addCandidate(i int, id types.TypeId, prio Priority, literal bool) {
	r := inf.find(i)
	for _, c := range inf.cands[r] {
		if c.id == id && c.priority >= prio {
			return
		}
	}
	inf.cands[r] = append(inf.cands[r], candidate{id: id, priority: prio, literal: literal})
}

// collect walks parameter and argument shapes in parallel, recording a
// candidate wherever the parameter side is an inference variable.
func (inf *inference) collect(param, arg types.TypeId, prio Priority) {
	if param == arg || arg == types.NoType {
		return
	}
	pk := pairKey{param, arg}
	if _, ok := inf.seen[pk]; ok {
		return
	}
	inf.seen[pk] = struct{}{}

	pkey := inf.s.in.Lookup(param)

	if tp, ok := pkey.(*types.TypeParameterKey); ok {
		if i, ok := inf.index[tp.Name]; ok {
			// A variable matched against another in-scope
			// variable couples the two pools.
			if at, ok := inf.s.in.Lookup(arg).(*types.TypeParameterKey); ok {
				if ji, ok := inf.index[at.Name]; ok {
					inf.merge(i, ji)
					return
				}
			}
			inf.addCandidate(i, arg, prio, false)
		}
		return
	}

	akey := inf.s.in.Lookup(arg)

	switch p := pkey.(type) {
	case *types.ArrayKey:
		switch a := akey.(type) {
		case *types.ArrayKey:
			inf.collect(p.Elem, a.Elem, prio)
		case *types.TupleKey:
			for _, e := range a.Elems {
				inf.collect(p.Elem, e.Type, prio)
			}
		}
	case *types.TupleKey:
		if a, ok := akey.(*types.TupleKey); ok {
			for i, e := range p.Elems {
				if at := tupleElemAt(inf.s.in, a, i); at != types.NoType {
					inf.collect(e.Type, at, prio)
				}
			}
		}
	case *types.ObjectKey:
		if a, ok := akey.(*types.ObjectKey); ok {
			for _, pp := range p.Properties {
				if ap, ok := a.Prop(pp.Name); ok {
					inf.collect(pp.Type, ap.Type, prio)
				}
			}
			if p.StringIndex != nil && a.StringIndex != nil {
				inf.collect(p.StringIndex.Value, a.StringIndex.Value, prio)
			}
			for i := range p.Calls {
				if i < len(a.Calls) {
					inf.collectSignature(&p.Calls[i], &a.Calls[i], prio)
				}
			}
		}
	case *types.FunctionKey:
		if a, ok := akey.(*types.FunctionKey); ok {
			inf.collectSignature(&p.Sig, &a.Sig, prio)
		}
	case *types.UnionKey:
		// Strip members the argument already satisfies outright, then
		// infer against a sole remaining variable member.
		var vars []types.TypeId
		for _, m := range p.Members {
			if _, ok := inf.s.in.Lookup(m).(*types.TypeParameterKey); ok {
				vars = append(vars, m)
			}
		}
		if len(vars) == 1 {
			inf.collect(vars[0], arg, prio)
		}
	case *types.IntersectionKey:
		for _, m := range p.Members {
			inf.collect(m, arg, prio)
		}
	case *types.RefKey:
		inf.collect(inf.s.defs.Resolve(p.Def), arg, prio)
	case *types.ApplicationKey:
		if a, ok := akey.(*types.ApplicationKey); ok && p.Base == a.Base {
			for i, pa := range p.Args {
				if i < len(a.Args) {
					inf.collect(pa, a.Args[i], prio)
				}
			}
		}
	case *types.TemplateLiteralKey:
		if a, ok := akey.(*types.LiteralKey); ok && a.Value.Kind == types.LiteralString {
			inf.collectFromTemplate(p, a.Value.Str, prio)
		}
	}
}

// collectFromTemplate captures type-parameter slot texts of a template
// parameter from a literal argument, using the same backtracking match
// the relation checks use.
func (inf *inference) collectFromTemplate(p *types.TemplateLiteralKey, text string, prio Priority) {
	var names []string
	var sb strings.Builder
	sb.WriteString(`\A`)
	for _, sp := range p.Spans {
		if sp.IsText() {
			sb.WriteString(regexp.QuoteMeta(sp.Text))
			continue
		}
		if tp, ok := inf.s.in.Lookup(sp.Type).(*types.TypeParameterKey); ok {
			if _, known := inf.index[tp.Name]; known {
				names = append(names, tp.Name)
				sb.WriteString(`(`)
				sb.WriteString(slotPattern(inf.s.in, tp.Constraint))
				sb.WriteString(`)`)
				continue
			}
		}
		sb.WriteString(slotPattern(inf.s.in, sp.Type))
	}
	sb.WriteString(`\z`)

	re, err := regexp2.Compile(sb.String(), regexp2.None)
	if err != nil {
		return
	}
	m, err := re.FindStringMatch(text)
	if err != nil || m == nil {
		return
	}
	groups := m.Groups()
	for i, name := range names {
		if i+1 < len(groups) {
			captured := types.NewStringLiteral(inf.s.in, groups[i+1].String())
			inf.addCandidate(inf.index[name], captured, prio, true)
		}
	}
}

// collectSignature matches a parameter-position function type against a
// supplied callback. The callback's parameters are inference sources at
// argument strength; its return feeds back at the weaker return
// strength, so an earlier argument's inference wins over what a later
// callback's return would suggest.
func (inf *inference) collectSignature(p, a *types.Signature, prio Priority) {
	n := len(a.Params)
	if len(p.Params) < n {
		n = len(p.Params)
	}
	for i := 0; i < n; i++ {
		inf.collect(p.Params[i].Type, a.Params[i].Type, prio)
	}
	inf.collect(p.Return, a.Return, PriorityReturn)
}

// resolve reduces each candidate pool to a single binding and validates
// it against the parameter's declared bound.
func (inf *inference) resolve() Substitution {
	sub := Substitution{Bindings: make(map[string]types.TypeId, len(inf.params))}

	for i, tp := range inf.params {
		pool := inf.cands[inf.find(i)]
		id := inf.resolvePool(pool, &tp)
		if id == types.NoType {
			if tp.Default != types.NoType {
				id = tp.Default
			} else {
				id = types.Unknown
			}
		}
		if tp.Constraint != types.NoType && !inf.s.IsAssignable(id, tp.Constraint) {
			inf.s.logInfer.Debug("bound violated",
				"param", tp.Name, "candidate", inf.s.Sprint(id))
			sub.Violations = append(sub.Violations, ConstraintViolation{
				Param:     tp.Name,
				Candidate: id,
				Bound:     tp.Constraint,
			})
		}
		sub.Bindings[tp.Name] = id
	}
	return sub
}

func (inf *inference) resolvePool(pool []candidate, tp *types.TypeParam) types.TypeId {
	if len(pool) == 0 {
		return types.NoType
	}

	// Argument-position candidates shadow return-derived ones.
	best := PriorityReturn
	for _, c := range pool {
		if c.priority > best {
			best = c.priority
		}
	}
	var ids []types.TypeId
	anySeen := false
	widen := !tp.Const && !inf.constraintWantsLiterals(tp)
	for _, c := range pool {
		if c.priority != best {
			continue
		}
		if c.id == types.Any {
			anySeen = true
			continue
		}
		if c.id == types.Never {
			continue
		}
		id := c.id
		if widen && !c.literal {
			id = types.Widened(inf.s.in, id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		if anySeen {
			return types.Any
		}
		return types.Never
	}
	if anySeen {
		return types.Any
	}

	return inf.bestCommonType(ids)
}

// constraintWantsLiterals reports whether the declared bound only admits
// literal types, in which case widening would immediately violate it.
func (inf *inference) constraintWantsLiterals(tp *types.TypeParam) bool {
	if tp.Constraint == types.NoType {
		return false
	}
	switch k := inf.s.in.Lookup(tp.Constraint).(type) {
	case *types.LiteralKey:
		return true
	case *types.UnionKey:
		for _, m := range k.Members {
			if _, ok := inf.s.in.Lookup(m).(*types.LiteralKey); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// bestCommonType runs a supertype tournament over the candidates. A
// candidate every other candidate flows into wins outright; otherwise
// the candidates union.
func (inf *inference) bestCommonType(ids []types.TypeId) types.TypeId {
	uniq := ids[:0]
	for _, id := range ids {
		dup := false
		for _, u := range uniq {
			if u == id {
				dup = true
				break
			}
		}
		if !dup {
			uniq = append(uniq, id)
		}
	}
	if len(uniq) == 1 {
		return uniq[0]
	}

	best := uniq[0]
	for _, id := range uniq[1:] {
		if !inf.s.IsAssignable(id, best) {
			best = id
		}
	}
	winner := true
	for _, id := range uniq {
		if !inf.s.IsAssignable(id, best) {
			winner = false
			break
		}
	}
	if winner {
		return best
	}
	return types.NewUnion(inf.s.in, uniq...)
}
