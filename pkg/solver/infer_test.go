package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tsolve/pkg/types"
)

func TestInferFromArgument(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	// identity<T>(x: T): T called with 1.
	sig := types.NewSignature(tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T"})
	sub := w.s.Infer(sig, []types.TypeId{types.NewNumberLiteral(w.in, 1)})
	require.Empty(t, sub.Violations)
	// A non-const parameter widens literal candidates.
	require.Equal(t, types.Number, sub.Bindings["T"])
}

func TestInferConstPreservesLiterals(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	sig := types.NewSignature(tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T", Const: true})
	one := types.NewNumberLiteral(w.in, 1)
	sub := w.s.Infer(sig, []types.TypeId{one})
	require.Equal(t, one, sub.Bindings["T"])
}

func TestInferLiteralConstraintSkipsWidening(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	bound := types.NewUnion(w.in,
		types.NewStringLiteral(w.in, "asc"), types.NewStringLiteral(w.in, "desc"))
	tRef := types.NewTypeParamRef(w.in, "T", bound)
	sig := types.NewSignature(tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T", Constraint: bound})
	asc := types.NewStringLiteral(w.in, "asc")
	sub := w.s.Infer(sig, []types.TypeId{asc})
	require.Empty(t, sub.Violations)
	require.Equal(t, asc, sub.Bindings["T"])
}

func TestInferStructural(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	// first<T>(xs: T[]): T.
	sig := types.NewSignature(types.NewArray(w.in, tRef)).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T"})
	sub := w.s.Infer(sig, []types.TypeId{types.NewArray(w.in, types.String)})
	require.Equal(t, types.String, sub.Bindings["T"])

	// Tuples feed array-typed parameters element-wise.
	sub = w.s.Infer(sig, []types.TypeId{
		types.NewTuple(w.in, types.NewStringLiteral(w.in, "a"), types.NewStringLiteral(w.in, "b")),
	})
	require.Equal(t, types.String, sub.Bindings["T"])

	// Object property positions.
	pair := types.NewObject().WithProperty("value", tRef).Intern(w.in)
	sig = types.NewSignature(pair).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T"})
	arg := types.NewObject().WithProperty("value", types.Boolean).Intern(w.in)
	sub = w.s.Infer(sig, []types.TypeId{arg})
	require.Equal(t, types.Boolean, sub.Bindings["T"])
}

func TestInferBestCommonType(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	// pick<T>(a: T, b: T): T.
	sig := types.NewSignature(tRef, tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T"})

	// A candidate that is a supertype of the others wins outright.
	animal := types.NewObject().WithProperty("name", types.String).Intern(w.in)
	dog := types.NewObject().
		WithProperty("name", types.String).
		WithProperty("bark", types.FunctionPrim).
		Intern(w.in)
	sub := w.s.Infer(sig, []types.TypeId{dog, animal})
	require.Equal(t, animal, sub.Bindings["T"])

	// Unrelated candidates union.
	sub = w.s.Infer(sig, []types.TypeId{types.String, types.Number})
	require.Equal(t, types.NewUnion(w.in, types.String, types.Number), sub.Bindings["T"])
}

func TestInferArgumentBeatsReturn(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	uRef := types.NewTypeParamRef(w.in, "U", types.NoType)
	// pipe<T, U>(x: T, f: (x: T) => U): U with x: "a" and
	// f: (x: string) => number. T from the direct argument stays the
	// argument's type; the callback's parameter does not override it.
	fnParam := types.NewFunc(w.in, types.NewSignature(tRef).Returns(uRef))
	sig := types.NewSignature(tRef, fnParam).Returns(uRef).
		WithTypeParams(types.TypeParam{Name: "T"}, types.TypeParam{Name: "U"})
	fnArg := types.NewFunc(w.in, types.NewSignature(types.String).Returns(types.Number))
	sub := w.s.Infer(sig, []types.TypeId{types.NewStringLiteral(w.in, "a"), fnArg})
	require.Empty(t, sub.Violations)
	require.Equal(t, types.String, sub.Bindings["T"])
	require.Equal(t, types.Number, sub.Bindings["U"])
}

func TestInferDefaultAndUnknown(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	sig := types.NewSignature().Returns(types.Void).
		WithTypeParams(
			types.TypeParam{Name: "T", Default: types.String},
			types.TypeParam{Name: "U"},
		)
	sub := w.s.Infer(sig, nil)
	require.Equal(t, types.String, sub.Bindings["T"])
	require.Equal(t, types.Unknown, sub.Bindings["U"])
}

func TestInferConstraintViolation(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.String)
	sig := types.NewSignature(tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T", Constraint: types.String})
	sub := w.s.Infer(sig, []types.TypeId{types.Number})
	require.Len(t, sub.Violations, 1)
	require.Equal(t, "T", sub.Violations[0].Param)
	// The binding is still produced best-effort.
	require.Equal(t, types.Number, sub.Bindings["T"])
}

func TestInferFromTemplateArgument(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.String)
	tmpl := types.NewTemplate(w.in,
		types.TemplateSpan{Text: "get"},
		types.TemplateSpan{Type: tRef},
	)
	sig := types.NewSignature(tmpl).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T", Constraint: types.String})
	sub := w.s.Infer(sig, []types.TypeId{types.NewStringLiteral(w.in, "getName")})
	require.Empty(t, sub.Violations)
	require.Equal(t, types.NewStringLiteral(w.in, "Name"), sub.Bindings["T"])
}

func TestInferAnyCandidate(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tRef := types.NewTypeParamRef(w.in, "T", types.NoType)
	sig := types.NewSignature(tRef, tRef).Returns(tRef).
		WithTypeParams(types.TypeParam{Name: "T"})
	sub := w.s.Infer(sig, []types.TypeId{types.Any, types.String})
	require.Equal(t, types.Any, sub.Bindings["T"])
}
