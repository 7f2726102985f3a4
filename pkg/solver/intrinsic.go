package solver

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tsolve/pkg/types"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// evalStringIntrinsic reduces Uppercase<T> and friends. Literals map
// directly, unions distribute, template literals transform their text
// spans and defer the slots; anything else stays symbolic.
func (ev *evaluator) evalStringIntrinsic(kind types.StringIntrinsicKind, arg types.TypeId) types.TypeId {
	switch k := ev.s.in.Lookup(arg).(type) {
	case *types.LiteralKey:
		if k.Value.Kind == types.LiteralString {
			return types.NewStringLiteral(ev.s.in, applyStringIntrinsic(kind, k.Value.Str))
		}
	case *types.UnionKey:
		out := make([]types.TypeId, len(k.Members))
		for i, m := range k.Members {
			out[i] = ev.evalStringIntrinsic(kind, m)
		}
		return types.NewUnion(ev.s.in, out...)
	case *types.TemplateLiteralKey:
		spans := make([]types.TemplateSpan, len(k.Spans))
		for i, sp := range k.Spans {
			if sp.IsText() {
				text := applyStringIntrinsic(kind, sp.Text)
				if (kind == types.IntrinsicCapitalize || kind == types.IntrinsicUncapitalize) && i > 0 {
					text = sp.Text
				}
				spans[i] = types.TemplateSpan{Text: text}
			} else {
				spans[i] = types.TemplateSpan{Type: types.NewStringIntrinsic(ev.s.in, kind, sp.Type)}
				if (kind == types.IntrinsicCapitalize || kind == types.IntrinsicUncapitalize) && i > 0 {
					spans[i] = sp
				}
			}
		}
		return types.NewTemplate(ev.s.in, spans...)
	case *types.IntrinsicKey:
		if k.Kind == types.KindString || k.Kind == types.KindAny || k.Kind == types.KindNever {
			return arg
		}
	}
	return types.NewStringIntrinsic(ev.s.in, kind, arg)
}

func applyStringIntrinsic(kind types.StringIntrinsicKind, s string) string {
	switch kind {
	case types.IntrinsicUppercase:
		return upperCaser.String(s)
	case types.IntrinsicLowercase:
		return lowerCaser.String(s)
	case types.IntrinsicCapitalize:
		return mapFirstRune(s, upperCaser)
	case types.IntrinsicUncapitalize:
		return mapFirstRune(s, lowerCaser)
	default:
		return s
	}
}

func mapFirstRune(s string, c cases.Caser) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return c.String(s[:size]) + s[size:]
}
