package solver

import (
	"tsolve/pkg/types"
)

// evalMapped reduces `{ [P in Constraint as Name]: Template }`.
// Homomorphic mapped types over arrays and tuples preserve the
// array/tuple shape; everything else produces an object, one property
// per string-literal key, with as-clause remapping (including
// union-of-literals fan-out and Never-key dropping).
func (ev *evaluator) evalMapped(key *types.MappedKey, e env) types.TypeId {
	if key.IsHomomorphic() {
		if kf, ok := ev.s.in.Lookup(key.Constraint).(*types.KeyofKey); ok {
			operand := ev.eval(kf.Operand, e)
			switch src := ev.s.in.Lookup(operand).(type) {
			case *types.ArrayKey:
				return ev.mapArray(key, src, e)
			case *types.TupleKey:
				return ev.mapTuple(key, src, e)
			case *types.ObjectKey:
				return ev.mapObjectHomomorphic(key, src, e)
			}
		}
	}

	constraint := ev.eval(key.Constraint, e)
	return ev.mapKeySet(key, constraint, e)
}

// mapArray maps `{[K in keyof T]: F<T[K]>}` over T = E[], producing a
// mapped element array. Array keys are numeric, so P binds to number.
func (ev *evaluator) mapArray(key *types.MappedKey, src *types.ArrayKey, e env) types.TypeId {
	elem := ev.eval(key.Template, bind(e, key.ParamName, types.Number))
	readonly := applyModifier(src.Readonly, key.ReadonlyMod)
	return ev.s.in.Intern(&types.ArrayKey{Elem: elem, Readonly: readonly})
}

// mapTuple maps each tuple element under P bound to its index literal;
// the rest element maps like an array.
func (ev *evaluator) mapTuple(key *types.MappedKey, src *types.TupleKey, e env) types.TypeId {
	elems := make([]types.TupleElement, len(src.Elems))
	idx := 0
	for i, te := range src.Elems {
		out := te
		if te.Rest {
			if arr, ok := ev.s.in.Lookup(te.Type).(*types.ArrayKey); ok {
				mapped := ev.eval(key.Template, bind(e, key.ParamName, types.Number))
				out.Type = ev.s.in.Intern(&types.ArrayKey{Elem: mapped, Readonly: arr.Readonly})
			}
		} else {
			k := types.NewNumberLiteral(ev.s.in, float64(idx))
			out.Type = ev.eval(key.Template, bind(e, key.ParamName, k))
			out.Optional = applyModifier(te.Optional, key.OptionalMod)
			idx++
		}
		elems[i] = out
	}
	readonly := applyModifier(src.Readonly, key.ReadonlyMod)
	return ev.s.in.Intern(&types.TupleKey{Elems: elems, Readonly: readonly})
}

// mapObjectHomomorphic maps over an object's own keys, copying each
// source property's modifiers before applying the mapped modifiers.
func (ev *evaluator) mapObjectHomomorphic(key *types.MappedKey, src *types.ObjectKey, e env) types.TypeId {
	if len(src.Properties) > types.MaxMappedKeys || !ev.guard.Spend(len(src.Properties)) {
		return types.Unknown
	}
	b := types.NewObject()
	for _, p := range src.Properties {
		ke := bind(e, key.ParamName, types.NewStringLiteral(ev.s.in, p.Name))
		b.WithProp(types.Property{
			Name:     p.Name,
			Type:     ev.eval(key.Template, ke),
			Optional: applyModifier(p.Optional, key.OptionalMod),
			Readonly: applyModifier(p.Readonly, key.ReadonlyMod),
		})
	}
	if src.StringIndex != nil {
		ke := bind(e, key.ParamName, types.String)
		b.WithStringIndex(ev.eval(key.Template, ke), applyModifier(src.StringIndex.Readonly, key.ReadonlyMod))
	}
	if src.NumberIndex != nil {
		ke := bind(e, key.ParamName, types.Number)
		b.WithNumberIndex(ev.eval(key.Template, ke), applyModifier(src.NumberIndex.Readonly, key.ReadonlyMod))
	}
	return b.Intern(ev.s.in)
}

// mapKeySet maps over an explicit key set (a union of literal keys,
// string, or number), applying the as-clause when present.
func (ev *evaluator) mapKeySet(key *types.MappedKey, constraint types.TypeId, e env) types.TypeId {
	members := types.UnionMembers(ev.s.in, constraint)
	if len(members) > types.MaxMappedKeys || !ev.guard.Spend(len(members)) || ev.s.in.Saturated() {
		return types.Unknown
	}

	b := types.NewObject()
	for _, m := range members {
		switch mk := ev.s.in.Lookup(m).(type) {
		case *types.LiteralKey:
			ke := bind(e, key.ParamName, m)
			names, ok := ev.remappedNames(key, mk, ke)
			if !ok {
				return types.Unknown
			}
			value := ev.eval(key.Template, ke)
			for _, name := range names {
				b.WithProp(types.Property{
					Name:     name,
					Type:     value,
					Optional: key.OptionalMod == types.ModifierAdd,
					Readonly: key.ReadonlyMod == types.ModifierAdd,
				})
			}
		case *types.IntrinsicKey:
			ke := bind(e, key.ParamName, m)
			value := ev.eval(key.Template, ke)
			switch mk.Kind {
			case types.KindString:
				b.WithStringIndex(value, key.ReadonlyMod == types.ModifierAdd)
			case types.KindNumber:
				b.WithNumberIndex(value, key.ReadonlyMod == types.ModifierAdd)
			case types.KindNever:
				// contributes nothing
			default:
				return types.ErrorType
			}
		default:
			// Unevaluated symbolic key source: keep the mapped type
			// symbolic rather than guessing.
			return ev.s.in.Intern(&types.MappedKey{
				ParamName:    key.ParamName,
				Constraint:   constraint,
				NameTemplate: key.NameTemplate,
				Template:     key.Template,
				ReadonlyMod:  key.ReadonlyMod,
				OptionalMod:  key.OptionalMod,
			})
		}
	}
	return b.Intern(ev.s.in)
}

// remappedNames resolves the as-clause for one key: no clause keeps the
// key's own name; a clause evaluating to Never drops the key; a union
// of string literals fans out to one property per member.
func (ev *evaluator) remappedNames(key *types.MappedKey, mk *types.LiteralKey, ke env) ([]string, bool) {
	if key.NameTemplate == types.NoType {
		return []string{literalPropertyName(mk.Value)}, true
	}
	remapped := ev.eval(key.NameTemplate, ke)
	if remapped == types.Never {
		return nil, true
	}
	var names []string
	for _, nm := range types.UnionMembers(ev.s.in, remapped) {
		lit, ok := ev.s.in.Lookup(nm).(*types.LiteralKey)
		if !ok || lit.Value.Kind != types.LiteralString {
			return nil, false
		}
		names = append(names, lit.Value.Str)
	}
	return names, true
}

// literalPropertyName renders a literal key as a property name the way
// the language does (numeric keys stringify).
func literalPropertyName(v types.LiteralValue) string {
	if v.Kind == types.LiteralString {
		return v.Str
	}
	return v.String()
}

func applyModifier(current bool, mod types.MappedModifier) bool {
	switch mod {
	case types.ModifierAdd:
		return true
	case types.ModifierRemove:
		return false
	default:
		return current
	}
}
