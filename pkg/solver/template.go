package solver

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"

	"tsolve/pkg/types"
)

// evalTemplate reduces a template literal type. When every interpolated
// slot is a literal (or a small union of literals) the cross product
// expands to a union of string literals, bounded by
// TemplateLiteralExpansionLimit. Past the bound the symbolic form is
// kept; widening to `string` would let arbitrary literals pass the
// Judge.
func (ev *evaluator) evalTemplate(key *types.TemplateLiteralKey, e env) types.TypeId {
	spans := make([]types.TemplateSpan, len(key.Spans))
	changed := false
	for i, sp := range key.Spans {
		spans[i] = sp
		if sp.Type != types.NoType {
			spans[i].Type = ev.eval(sp.Type, e)
			changed = changed || spans[i].Type != sp.Type
		}
	}

	// Count the cross product before materializing anything.
	product := 1
	expandable := true
	for _, sp := range spans {
		if sp.IsText() {
			continue
		}
		alts := templateAlternatives(ev.s.in, sp.Type)
		if alts == 0 {
			expandable = false
			break
		}
		product *= alts
		if product > types.TemplateLiteralExpansionLimit {
			break
		}
	}

	if !expandable || product > types.TemplateLiteralExpansionLimit || ev.s.in.Saturated() {
		if !changed {
			return ev.s.in.Intern(key)
		}
		return types.NewTemplate(ev.s.in, spans...)
	}
	if !ev.guard.Spend(product) {
		return types.NewTemplate(ev.s.in, spans...)
	}

	parts := []string{""}
	for _, sp := range spans {
		if sp.IsText() {
			for i := range parts {
				parts[i] += sp.Text
			}
			continue
		}
		texts := literalTexts(ev.s.in, sp.Type)
		next := make([]string, 0, len(parts)*len(texts))
		for _, p := range parts {
			for _, t := range texts {
				next = append(next, p+t)
			}
		}
		parts = next
	}

	out := make([]types.TypeId, len(parts))
	for i, p := range parts {
		out[i] = types.NewStringLiteral(ev.s.in, p)
	}
	return types.NewUnion(ev.s.in, out...)
}

// templateAlternatives counts the literal expansions of one slot, 0 if
// the slot is not finitely expandable.
func templateAlternatives(in types.Interning, id types.TypeId) int {
	switch k := in.Lookup(id).(type) {
	case *types.LiteralKey:
		switch k.Value.Kind {
		case types.LiteralString, types.LiteralNumber, types.LiteralBigint, types.LiteralBoolean:
			return 1
		}
	case *types.IntrinsicKey:
		if k.Kind == types.KindBoolean {
			return 2
		}
	case *types.UnionKey:
		total := 0
		for _, m := range k.Members {
			n := templateAlternatives(in, m)
			if n == 0 {
				return 0
			}
			total += n
		}
		return total
	}
	return 0
}

func literalTexts(in types.Interning, id types.TypeId) []string {
	switch k := in.Lookup(id).(type) {
	case *types.LiteralKey:
		switch k.Value.Kind {
		case types.LiteralString:
			return []string{k.Value.Str}
		case types.LiteralNumber, types.LiteralBigint, types.LiteralBoolean:
			return []string{strings.TrimSuffix(k.Value.String(), "n")}
		}
	case *types.IntrinsicKey:
		if k.Kind == types.KindBoolean {
			return []string{"true", "false"}
		}
	case *types.UnionKey:
		var out []string
		for _, m := range k.Members {
			out = append(out, literalTexts(in, m)...)
		}
		return out
	}
	return nil
}

// collectTemplateInfers extracts infer bindings from a string literal
// matched against a template pattern with infer slots, using capture
// groups.
func (ev *evaluator) collectTemplateInfers(source types.TypeId, pattern *types.TemplateLiteralKey, out map[string][]types.TypeId) {
	lit, ok := ev.s.in.Lookup(source).(*types.LiteralKey)
	if !ok || lit.Value.Kind != types.LiteralString {
		return
	}
	var names []string
	var sb strings.Builder
	sb.WriteString(`\A`)
	for _, sp := range pattern.Spans {
		if sp.IsText() {
			sb.WriteString(regexp.QuoteMeta(sp.Text))
			continue
		}
		if inf, ok := ev.s.in.Lookup(sp.Type).(*types.InferKey); ok {
			names = append(names, inf.Name)
			sb.WriteString(`(`)
			sb.WriteString(slotPattern(ev.s.in, inf.Constraint))
			sb.WriteString(`)`)
			continue
		}
		sb.WriteString(slotPattern(ev.s.in, sp.Type))
	}
	sb.WriteString(`\z`)

	re, err := regexp2.Compile(sb.String(), regexp2.None)
	if err != nil {
		return
	}
	m, err := re.FindStringMatch(lit.Value.Str)
	if err != nil || m == nil {
		return
	}
	groups := m.Groups()
	for i, name := range names {
		if i+1 < len(groups) {
			out[name] = append(out[name], types.NewStringLiteral(ev.s.in, groups[i+1].String()))
		}
	}
}

// numberPattern matches the string forms a number type can take in a
// template position.
const numberPattern = `[+-]?(?:\d+(?:\.\d+)?(?:[eE][+-]?\d+)?|Infinity|NaN)`

// slotPattern renders the regex a template slot's type accepts.
// Templates compare by backtracking span alignment instead of full
// expansion, which is what keeps elided expansions sound.
func slotPattern(in types.Interning, id types.TypeId) string {
	if id == types.NoType {
		// Unconstrained slot.
		return `[\s\S]*?`
	}
	switch k := in.Lookup(id).(type) {
	case *types.IntrinsicKey:
		switch k.Kind {
		case types.KindString, types.KindAny:
			return `[\s\S]*?`
		case types.KindNumber:
			return numberPattern
		case types.KindBigint:
			return `-?\d+`
		case types.KindBoolean:
			return `(?:true|false)`
		case types.KindNull:
			return `null`
		case types.KindUndefined:
			return `undefined`
		}
	case *types.LiteralKey:
		return regexp.QuoteMeta(strings.TrimSuffix(k.Value.String(), "n"))
	case *types.UnionKey:
		alts := make([]string, len(k.Members))
		for i, m := range k.Members {
			alts[i] = slotPattern(in, m)
		}
		return `(?:` + strings.Join(alts, `|`) + `)`
	case *types.InferKey:
		return `[\s\S]*?`
	case *types.TemplateLiteralKey:
		var sb strings.Builder
		for _, sp := range k.Spans {
			if sp.IsText() {
				sb.WriteString(regexp.QuoteMeta(sp.Text))
			} else {
				sb.WriteString(slotPattern(in, sp.Type))
			}
		}
		return sb.String()
	}
	// Unknown slot shape: accept nothing rather than everything.
	return `(?!)`
}

// templateMatches reports whether the string s inhabits the template.
func templateMatches(in types.Interning, tmpl *types.TemplateLiteralKey, s string) bool {
	var sb strings.Builder
	sb.WriteString(`\A`)
	for _, sp := range tmpl.Spans {
		if sp.IsText() {
			sb.WriteString(regexp.QuoteMeta(sp.Text))
		} else {
			sb.WriteString(slotPattern(in, sp.Type))
		}
	}
	sb.WriteString(`\z`)
	re, err := regexp2.Compile(sb.String(), regexp2.None)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(s)
	return err == nil && ok
}

// templateSubsumes reports whether every inhabitant of src also
// inhabits tgt, by positional span alignment: text spans must agree and
// each src slot must be acceptable to the aligned tgt slot.
func templateSubsumes(in types.Interning, src, tgt *types.TemplateLiteralKey) bool {
	if len(src.Spans) != len(tgt.Spans) {
		return false
	}
	for i, ss := range src.Spans {
		ts := tgt.Spans[i]
		if ss.IsText() != ts.IsText() {
			return false
		}
		if ss.IsText() {
			if ss.Text != ts.Text {
				return false
			}
			continue
		}
		if !slotAccepts(in, ts.Type, ss.Type) {
			return false
		}
	}
	return true
}

// slotAccepts reports whether the target slot type accepts every value
// of the source slot type, in template position.
func slotAccepts(in types.Interning, tgt, src types.TypeId) bool {
	if tgt == src {
		return true
	}
	tk, ok := in.Lookup(tgt).(*types.IntrinsicKey)
	if !ok {
		return false
	}
	switch tk.Kind {
	case types.KindString, types.KindAny:
		return true
	case types.KindNumber:
		sk, ok := in.Lookup(src).(*types.LiteralKey)
		return ok && sk.Value.Kind == types.LiteralNumber
	default:
		return false
	}
}
