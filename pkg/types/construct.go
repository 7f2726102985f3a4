package types

// Convenience constructors. Each interns the obvious key; composite
// construction is always bottom-up over existing handles.

// NewLiteral interns a literal type.
func NewLiteral(in Interning, v LiteralValue) TypeId {
	return in.Intern(&LiteralKey{Value: v})
}

// NewStringLiteral interns the type of one string value.
func NewStringLiteral(in Interning, s string) TypeId {
	return NewLiteral(in, StringValue(s))
}

// NewNumberLiteral interns the type of one numeric value.
func NewNumberLiteral(in Interning, n float64) TypeId {
	return NewLiteral(in, NumberValue(n))
}

// NewArray interns T[].
func NewArray(in Interning, elem TypeId) TypeId {
	return in.Intern(&ArrayKey{Elem: elem})
}

// NewReadonlyArray interns readonly T[].
func NewReadonlyArray(in Interning, elem TypeId) TypeId {
	return in.Intern(&ArrayKey{Elem: elem, Readonly: true})
}

// NewTuple interns a fixed tuple of the given element types.
func NewTuple(in Interning, elems ...TypeId) TypeId {
	tes := make([]TupleElement, len(elems))
	for i, t := range elems {
		tes[i] = TupleElement{Type: t}
	}
	return in.Intern(&TupleKey{Elems: tes})
}

// NewRef interns a reference to a named declaration.
func NewRef(in Interning, def DefId) TypeId {
	return in.Intern(&RefKey{Def: def})
}

// NewApplication interns Base<Args>, uninstantiated.
func NewApplication(in Interning, base TypeId, args ...TypeId) TypeId {
	return in.Intern(&ApplicationKey{Base: base, Args: args})
}

// NewFunc interns a standalone function type from one signature.
func NewFunc(in Interning, sig *Signature) TypeId {
	return in.Intern(&FunctionKey{Sig: *sig})
}

// NewConstructorFunc interns a standalone constructor type.
func NewConstructorFunc(in Interning, sig *Signature) TypeId {
	return in.Intern(&FunctionKey{Sig: *sig, IsConstructor: true})
}

// NewKeyof interns keyof T.
func NewKeyof(in Interning, operand TypeId) TypeId {
	return in.Intern(&KeyofKey{Operand: operand})
}

// NewIndexedAccess interns T[K].
func NewIndexedAccess(in Interning, object, index TypeId) TypeId {
	return in.Intern(&IndexedAccessKey{Object: object, Index: index})
}

// NewTemplate interns a template literal type from its spans.
func NewTemplate(in Interning, spans ...TemplateSpan) TypeId {
	return in.Intern(&TemplateLiteralKey{Spans: normalizeSpans(spans)})
}

// normalizeSpans merges adjacent text spans and drops empty text so
// structurally equal templates written differently intern identically.
func normalizeSpans(spans []TemplateSpan) []TemplateSpan {
	out := make([]TemplateSpan, 0, len(spans))
	for _, s := range spans {
		if s.IsText() {
			if s.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].IsText() {
				out[n-1].Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// NewTypeParamRef interns an occurrence of an in-scope type parameter.
func NewTypeParamRef(in Interning, name string, constraint TypeId) TypeId {
	return in.Intern(&TypeParameterKey{Name: name, Constraint: constraint})
}

// NewInfer interns an `infer R` binder occurrence.
func NewInfer(in Interning, name string, constraint TypeId) TypeId {
	return in.Intern(&InferKey{Name: name, Constraint: constraint})
}

// NewEnum interns a nominal enum type over its member union.
func NewEnum(in Interning, def DefId, members TypeId) TypeId {
	return in.Intern(&EnumKey{Def: def, Members: members})
}

// NewStringIntrinsic interns Uppercase<T> and friends.
func NewStringIntrinsic(in Interning, kind StringIntrinsicKind, arg TypeId) TypeId {
	return in.Intern(&StringIntrinsicKey{Kind: kind, Arg: arg})
}

// NewConditional interns a conditional type.
func NewConditional(in Interning, key ConditionalKey) TypeId {
	return in.Intern(&key)
}

// NewMapped interns a mapped type.
func NewMapped(in Interning, key MappedKey) TypeId {
	return in.Intern(&key)
}
