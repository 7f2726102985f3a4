package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tsolve/pkg/defs"
	"tsolve/pkg/types"
)

func TestEvaluateIntrinsicIsIdentity(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	require.Equal(t, types.String, w.s.Evaluate(types.String))
	lit := types.NewStringLiteral(w.in, "a")
	require.Equal(t, lit, w.s.Evaluate(lit))
}

func TestConditionalBranches(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	cond := types.NewConditional(w.in, types.ConditionalKey{
		Check:   types.NewStringLiteral(w.in, "a"),
		Extends: types.String,
		True:    types.Number,
		False:   types.Boolean,
	})
	require.Equal(t, types.Number, w.s.Evaluate(cond))

	cond = types.NewConditional(w.in, types.ConditionalKey{
		Check:   types.Number,
		Extends: types.String,
		True:    types.Number,
		False:   types.Boolean,
	})
	require.Equal(t, types.Boolean, w.s.Evaluate(cond))
}

func TestConditionalDistributesOverUnion(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// ToArray<T> = T extends any ? T[] : never, applied to string | number.
	tDef := w.store.Register(defs.DefInfo{
		Name:       "ToArray",
		Kind:       defs.KindTypeAlias,
		TypeParams: []types.TypeParam{{Name: "T"}},
	})
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	w.level[tDef] = types.NewConditional(w.in, types.ConditionalKey{
		Check:        tRef,
		Extends:      types.Unknown,
		True:         types.NewArray(w.in, tRef),
		False:        types.Never,
		Distributive: true,
	})
	app := types.NewApplication(w.in, types.NewRef(w.in, tDef),
		types.NewUnion(w.in, types.String, types.Number))
	got := w.s.Evaluate(app)
	want := types.NewUnion(w.in,
		types.NewArray(w.in, types.String),
		types.NewArray(w.in, types.Number))
	require.Equal(t, want, got)

	// Distribution over never is never.
	appNever := types.NewApplication(w.in, types.NewRef(w.in, tDef), types.Never)
	require.Equal(t, types.Never, w.s.Evaluate(appNever))
}

func TestInferExtractsElement(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// Elem<T> = T extends (infer E)[] ? E : never.
	eInfer := types.NewInfer(w.in, "E", types.NoType)
	eRef := types.NewTypeParamRef(w.in, "E", types.NoType)
	def := w.store.Register(defs.DefInfo{
		Name:       "Elem",
		Kind:       defs.KindTypeAlias,
		TypeParams: []types.TypeParam{{Name: "T"}},
	})
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	w.level[def] = types.NewConditional(w.in, types.ConditionalKey{
		Check:        tRef,
		Extends:      types.NewArray(w.in, eInfer),
		True:         eRef,
		False:        types.Never,
		Distributive: true,
	})

	app := types.NewApplication(w.in, types.NewRef(w.in, def), types.NewArray(w.in, types.String))
	require.Equal(t, types.String, w.s.Evaluate(app))

	app = types.NewApplication(w.in, types.NewRef(w.in, def), types.Boolean)
	require.Equal(t, types.Never, w.s.Evaluate(app))
}

func TestTemplateInferCapture(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// Verb<T> = T extends `get${infer Rest}` ? Rest : never.
	rest := types.NewInfer(w.in, "Rest", types.NoType)
	def := w.store.Register(defs.DefInfo{
		Name:       "Verb",
		Kind:       defs.KindTypeAlias,
		TypeParams: []types.TypeParam{{Name: "T"}},
	})
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	w.level[def] = types.NewConditional(w.in, types.ConditionalKey{
		Check: tRef,
		Extends: types.NewTemplate(w.in,
			types.TemplateSpan{Text: "get"},
			types.TemplateSpan{Type: rest},
		),
		True:         types.NewTypeParamRef(w.in, "Rest", types.NoType),
		False:        types.Never,
		Distributive: true,
	})

	app := types.NewApplication(w.in, types.NewRef(w.in, def), types.NewStringLiteral(w.in, "getName"))
	require.Equal(t, types.NewStringLiteral(w.in, "Name"), w.s.Evaluate(app))
}

func TestGenericAliasApplication(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// Box<T> = { value: T }.
	def := w.store.Register(defs.DefInfo{
		Name:       "Box",
		Kind:       defs.KindTypeAlias,
		TypeParams: []types.TypeParam{{Name: "T"}},
	})
	w.level[def] = types.NewObject().
		WithProperty("value", types.NewTypeParamRef(w.in, "T", types.NoType)).
		Intern(w.in)

	app := types.NewApplication(w.in, types.NewRef(w.in, def), types.String)
	want := types.NewObject().WithProperty("value", types.String).Intern(w.in)
	require.Equal(t, want, w.s.Evaluate(app))
}

func TestMappedHomomorphic(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	src := types.NewObject().
		WithProperty("a", types.Number).
		WithOptionalProperty("b", types.String).
		Intern(w.in)

	// { readonly [P in keyof T]: T[P] } preserves shape and optionality.
	p := types.NewTypeParamRef(w.in, "P", types.NoType)
	mapped := types.NewMapped(w.in, types.MappedKey{
		ParamName:   "P",
		Constraint:  types.NewKeyof(w.in, src),
		Template:    types.NewIndexedAccess(w.in, src, p),
		ReadonlyMod: types.ModifierAdd,
	})
	got := w.s.Evaluate(mapped)
	obj, ok := w.in.Lookup(got).(*types.ObjectKey)
	require.True(t, ok)
	a, ok := obj.Prop("a")
	require.True(t, ok)
	require.True(t, a.Readonly)
	require.Equal(t, types.Number, a.Type)
	b, ok := obj.Prop("b")
	require.True(t, ok)
	require.True(t, b.Optional)

	// -? strips optionality.
	required := types.NewMapped(w.in, types.MappedKey{
		ParamName:   "P",
		Constraint:  types.NewKeyof(w.in, src),
		Template:    types.NewIndexedAccess(w.in, src, p),
		OptionalMod: types.ModifierRemove,
	})
	got = w.s.Evaluate(required)
	obj = w.in.Lookup(got).(*types.ObjectKey)
	b, _ = obj.Prop("b")
	require.False(t, b.Optional)
}

func TestMappedOverArrayAndTuple(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	def := w.store.Register(defs.DefInfo{
		Name:       "Boxed",
		Kind:       defs.KindTypeAlias,
		TypeParams: []types.TypeParam{{Name: "T"}},
	})
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	p := types.NewTypeParamRef(w.in, "P", types.NoType)
	elem := types.NewIndexedAccess(w.in, tRef, p)
	w.level[def] = types.NewMapped(w.in, types.MappedKey{
		ParamName:  "P",
		Constraint: types.NewKeyof(w.in, tRef),
		Template:   types.NewArray(w.in, elem),
	})

	// A homomorphic map over an array yields an array.
	arr := types.NewApplication(w.in, types.NewRef(w.in, def), types.NewArray(w.in, types.Number))
	require.Equal(t, types.NewArray(w.in, types.NewArray(w.in, types.Number)), w.s.Evaluate(arr))

	// Over a tuple it yields a tuple of the same length.
	tup := types.NewApplication(w.in, types.NewRef(w.in, def),
		types.NewTuple(w.in, types.String, types.Number))
	want := types.NewTuple(w.in,
		types.NewArray(w.in, types.String),
		types.NewArray(w.in, types.Number))
	require.Equal(t, want, w.s.Evaluate(tup))
}

func TestMappedKeyRenaming(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	src := types.NewObject().
		WithProperty("name", types.String).
		WithProperty("age", types.Number).
		Intern(w.in)
	p := types.NewTypeParamRef(w.in, "P", types.NoType)
	// { [P in keyof T as `get${Capitalize<P>}`]: () => T[P] }.
	getters := types.NewMapped(w.in, types.MappedKey{
		ParamName:  "P",
		Constraint: types.NewKeyof(w.in, src),
		NameTemplate: types.NewTemplate(w.in,
			types.TemplateSpan{Text: "get"},
			types.TemplateSpan{Type: types.NewStringIntrinsic(w.in, types.IntrinsicCapitalize, p)},
		),
		Template: types.NewFunc(w.in, types.NewSignature().
			Returns(types.NewIndexedAccess(w.in, src, p))),
	})
	got := w.s.Evaluate(getters)
	obj, ok := w.in.Lookup(got).(*types.ObjectKey)
	require.True(t, ok)
	gn, ok := obj.Prop("getName")
	require.True(t, ok)
	fn := w.in.Lookup(gn.Type).(*types.FunctionKey)
	require.Equal(t, types.String, fn.Sig.Return)
	_, ok = obj.Prop("getAge")
	require.True(t, ok)
	require.Len(t, obj.Properties, 2)
}

func TestKeyofOperator(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	obj := types.NewObject().
		WithProperty("a", types.Number).
		WithProperty("b", types.String).
		Intern(w.in)
	got := w.s.Evaluate(types.NewKeyof(w.in, obj))
	want := types.NewUnion(w.in,
		types.NewStringLiteral(w.in, "a"), types.NewStringLiteral(w.in, "b"))
	require.Equal(t, want, got)

	// keyof over a union intersects the key sets.
	other := types.NewObject().
		WithProperty("b", types.Number).
		WithProperty("c", types.Boolean).
		Intern(w.in)
	got = w.s.Evaluate(types.NewKeyof(w.in, types.NewUnion(w.in, obj, other)))
	require.Equal(t, types.NewStringLiteral(w.in, "b"), got)

	require.Equal(t, types.Number,
		w.s.Evaluate(types.NewKeyof(w.in, types.NewArray(w.in, types.String))))
}

func TestKeyofUnionInterleavedKeys(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// Intern "w" before the first object's keys so the two key sets'
	// handles interleave rather than sort one after the other.
	keyW := types.NewStringLiteral(w.in, "w")
	a := types.NewObject().
		WithProperty("x", types.Number).
		WithProperty("y", types.Number).
		Intern(w.in)
	b := types.NewObject().
		WithProperty("w", types.Number).
		WithProperty("y", types.Number).
		Intern(w.in)
	require.Equal(t,
		types.NewUnion(w.in, keyW, types.NewStringLiteral(w.in, "y")),
		w.s.Evaluate(types.NewKeyof(w.in, b)))

	got := w.s.Evaluate(types.NewKeyof(w.in, types.NewUnion(w.in, a, b)))
	require.Equal(t, types.NewStringLiteral(w.in, "y"), got)
}

func TestIndexedAccess(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	obj := types.NewObject().
		WithProperty("a", types.Number).
		WithOptionalProperty("b", types.String).
		Intern(w.in)

	require.Equal(t, types.Number,
		w.s.Evaluate(types.NewIndexedAccess(w.in, obj, types.NewStringLiteral(w.in, "a"))))

	// Optional property access includes undefined.
	got := w.s.Evaluate(types.NewIndexedAccess(w.in, obj, types.NewStringLiteral(w.in, "b")))
	require.Equal(t, types.NewUnion(w.in, types.String, types.Undefined), got)

	// Index by the full key set unions the property types.
	got = w.s.Evaluate(types.NewIndexedAccess(w.in, obj, types.NewKeyof(w.in, obj)))
	require.True(t, w.s.IsAssignable(types.Number, got))
	require.True(t, w.s.IsAssignable(types.String, got))

	// Tuples index by literal position and by number.
	tup := types.NewTuple(w.in, types.String, types.Number)
	require.Equal(t, types.String,
		w.s.Evaluate(types.NewIndexedAccess(w.in, tup, types.NewNumberLiteral(w.in, 0))))
	require.Equal(t, types.NewUnion(w.in, types.String, types.Number),
		w.s.Evaluate(types.NewIndexedAccess(w.in, tup, types.Number)))
}

func TestTemplateExpansion(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	size := types.NewUnion(w.in,
		types.NewStringLiteral(w.in, "sm"), types.NewStringLiteral(w.in, "lg"))
	axis := types.NewUnion(w.in,
		types.NewStringLiteral(w.in, "x"), types.NewStringLiteral(w.in, "y"))
	tmpl := types.NewTemplate(w.in,
		types.TemplateSpan{Type: size},
		types.TemplateSpan{Text: "-"},
		types.TemplateSpan{Type: axis},
	)
	got := w.s.Evaluate(tmpl)
	want := types.NewUnion(w.in,
		types.NewStringLiteral(w.in, "sm-x"), types.NewStringLiteral(w.in, "sm-y"),
		types.NewStringLiteral(w.in, "lg-x"), types.NewStringLiteral(w.in, "lg-y"))
	require.Equal(t, want, got)
}

func TestTemplateStaysSymbolicPastBound(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tmpl := types.NewTemplate(w.in,
		types.TemplateSpan{Text: "id-"},
		types.TemplateSpan{Type: types.Number},
	)
	got := w.s.Evaluate(tmpl)
	// Unexpandable slots keep the template symbolic rather than
	// widening to string.
	_, ok := w.in.Lookup(got).(*types.TemplateLiteralKey)
	require.True(t, ok)
	require.False(t, w.s.IsAssignable(types.String, got))
}

func TestStringIntrinsics(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	lit := func(s string) types.TypeId { return types.NewStringLiteral(w.in, s) }

	require.Equal(t, lit("HELLO"),
		w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicUppercase, lit("hello"))))
	require.Equal(t, lit("hello"),
		w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicLowercase, lit("HELLO"))))
	require.Equal(t, lit("Hello"),
		w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicCapitalize, lit("hello"))))
	require.Equal(t, lit("hello"),
		w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicUncapitalize, lit("Hello"))))

	// Distributes over unions.
	got := w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicUppercase,
		types.NewUnion(w.in, lit("a"), lit("b"))))
	require.Equal(t, types.NewUnion(w.in, lit("A"), lit("B")), got)

	// Symbolic operand stays symbolic.
	sym := w.s.Evaluate(types.NewStringIntrinsic(w.in, types.IntrinsicUppercase, types.String))
	require.True(t, w.s.IsAssignable(sym, types.String))
}

func TestEvaluationDepthBudget(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	// Loop = Loop resolves to the cycle sentinel, and evaluating the
	// reference must terminate.
	def := w.store.Register(defs.DefInfo{Name: "Loop", Kind: defs.KindTypeAlias})
	ref := types.NewRef(w.in, def)
	w.level[def] = ref
	got := w.s.Evaluate(ref)
	require.True(t, got == ref || got == types.Cyclic)
}
