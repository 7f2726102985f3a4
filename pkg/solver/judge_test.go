package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tsolve/pkg/defs"
	"tsolve/pkg/types"
)

// testWorld is the usual fixture: a fresh interner, a store whose
// resolutions the test fills in after registering, and a solver.
type testWorld struct {
	in    *types.Interner
	store *defs.Store
	s     *Solver
	level map[types.DefId]types.TypeId
}

func newWorld(t *testing.T, cfg Config) *testWorld {
	t.Helper()
	w := &testWorld{
		in:    types.NewInterner(),
		level: make(map[types.DefId]types.TypeId),
	}
	w.store = defs.NewStore(defs.ResolverFunc(func(id types.DefId) (types.TypeId, error) {
		return w.level[id], nil
	}))
	w.s = New(w.in, w.store, cfg)
	return w
}

func (w *testWorld) alias(name string, body func(self types.TypeId) types.TypeId) types.TypeId {
	def := w.store.Register(defs.DefInfo{Name: name, Kind: defs.KindTypeAlias})
	self := types.NewRef(w.in, def)
	w.level[def] = body(self)
	return self
}

func TestAssignableReflexive(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	for _, id := range []types.TypeId{
		types.String, types.Number, types.Boolean, types.Never,
		types.NewStringLiteral(w.in, "a"),
		types.NewArray(w.in, types.Number),
		types.NewTuple(w.in, types.String, types.Number),
	} {
		require.True(t, w.s.IsAssignable(id, id), "self: %s", w.s.Sprint(id))
	}
}

func TestLiteralToPrimitive(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	lit := types.NewStringLiteral(w.in, "a")
	require.True(t, w.s.IsAssignable(lit, types.String))
	require.False(t, w.s.IsAssignable(types.String, lit))
	require.True(t, w.s.IsAssignable(types.NewNumberLiteral(w.in, 3), types.Number))
	require.True(t, w.s.IsAssignable(types.True, types.Boolean))
}

func TestTopAndBottom(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	obj := types.NewObject().WithProperty("x", types.Number).Intern(w.in)
	require.True(t, w.s.IsAssignable(types.Never, obj))
	require.True(t, w.s.IsAssignable(obj, types.Unknown))
	require.False(t, w.s.IsAssignable(types.Unknown, obj))
	require.True(t, w.s.IsAssignable(types.Any, obj))
	require.True(t, w.s.IsAssignable(obj, types.Any))
}

func TestSoundAnyMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Any = AnySound
	w := newWorld(t, cfg)
	require.True(t, w.s.IsAssignable(types.String, types.Any))
	require.False(t, w.s.IsAssignable(types.Any, types.String))
}

func TestUnionRelations(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	sn := types.NewUnion(w.in, types.String, types.Number)
	require.True(t, w.s.IsAssignable(types.String, sn))
	require.True(t, w.s.IsAssignable(sn, types.NewUnion(w.in, types.String, types.Number, types.Boolean)))
	require.False(t, w.s.IsAssignable(sn, types.String))
	// boolean splits against a union of its literals.
	tf := types.NewUnion(w.in, types.True, types.False)
	require.Equal(t, types.Boolean, tf)
	require.True(t, w.s.IsAssignable(types.Boolean, types.NewUnion(w.in, types.True, types.False, types.String)))
}

func TestIntersectionRelations(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	a := types.NewObject().WithProperty("a", types.Number).Intern(w.in)
	b := types.NewObject().WithProperty("b", types.String).Intern(w.in)
	both := types.NewIntersection(w.in, a, b)
	ab := types.NewObject().
		WithProperty("a", types.Number).
		WithProperty("b", types.String).
		Intern(w.in)
	require.True(t, w.s.IsAssignable(ab, both))
	require.True(t, w.s.IsAssignable(both, a))
	require.True(t, w.s.IsAssignable(both, b))
	// A value typed as only one side does not satisfy the pair.
	require.False(t, w.s.IsAssignable(a, both))
}

func TestObjectWidthAndDepth(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	wide := types.NewObject().
		WithProperty("x", types.Number).
		WithProperty("y", types.String).
		Intern(w.in)
	narrow := types.NewObject().WithProperty("x", types.Number).Intern(w.in)
	require.True(t, w.s.IsAssignable(wide, narrow))
	require.False(t, w.s.IsAssignable(narrow, wide))

	optY := types.NewObject().
		WithProperty("x", types.Number).
		WithOptionalProperty("y", types.String).
		Intern(w.in)
	require.True(t, w.s.IsAssignable(narrow, optY))
	// An optional source property cannot satisfy a required target one.
	require.False(t, w.s.IsAssignable(optY, wide))
}

func TestFreshExcessProperty(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tgt := types.NewObject().WithProperty("x", types.Number).Intern(w.in)
	fresh := types.NewObject().
		WithProperty("x", types.Number).
		WithProperty("extra", types.String).
		Fresh().
		Intern(w.in)
	require.False(t, w.s.IsAssignable(fresh, tgt))
	// One assignment hop later the same shape is fine.
	require.True(t, w.s.IsAssignable(types.WidenedShallow(w.in, fresh), tgt))
	// A target index signature gives the extra property a home.
	idx := types.NewObject().
		WithProperty("x", types.Number).
		WithStringIndex(types.NewUnion(w.in, types.Number, types.String), false).
		Intern(w.in)
	require.True(t, w.s.IsAssignable(fresh, idx))
}

func TestIndexSignatureCompat(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	dict := types.NewObject().WithStringIndex(types.Number, false).Intern(w.in)
	src := types.NewObject().
		WithProperty("a", types.Number).
		WithProperty("b", types.Number).
		Intern(w.in)
	require.True(t, w.s.IsAssignable(src, dict))
	bad := types.NewObject().WithProperty("a", types.String).Intern(w.in)
	require.False(t, w.s.IsAssignable(bad, dict))
}

func TestFunctionVariance(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	animal := types.NewObject().WithProperty("name", types.String).Intern(w.in)
	dog := types.NewObject().
		WithProperty("name", types.String).
		WithProperty("bark", types.FunctionPrim).
		Intern(w.in)

	takesAnimal := types.NewFunc(w.in, types.NewSignature(animal).Returns(types.Void))
	takesDog := types.NewFunc(w.in, types.NewSignature(dog).Returns(types.Void))

	// Parameters are contravariant under strict function types.
	require.True(t, w.s.IsAssignable(takesAnimal, takesDog))
	require.False(t, w.s.IsAssignable(takesDog, takesAnimal))

	// Method position is bivariant.
	methodSig := types.NewSignature(animal).Returns(types.Void).AsMethod()
	withMethod := types.NewObject().WithProp(types.Property{
		Name: "handle",
		Type: types.NewFunc(w.in, types.NewSignature(dog).Returns(types.Void).AsMethod()),
	}).Intern(w.in)
	wantMethod := types.NewObject().WithProp(types.Property{
		Name: "handle",
		Type: types.NewFunc(w.in, methodSig),
	}).Intern(w.in)
	require.True(t, w.s.IsAssignable(withMethod, wantMethod))
}

func TestFunctionReturnAndArity(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	retNum := types.NewFunc(w.in, types.NewSignature().Returns(types.Number))
	retLit := types.NewFunc(w.in, types.NewSignature().Returns(types.NewNumberLiteral(w.in, 1)))
	require.True(t, w.s.IsAssignable(retLit, retNum))
	require.False(t, w.s.IsAssignable(retNum, retLit))

	// Fewer parameters is fine, more required parameters is not.
	unary := types.NewFunc(w.in, types.NewSignature(types.Number).Returns(types.Void))
	binary := types.NewFunc(w.in, types.NewSignature(types.Number, types.Number).Returns(types.Void))
	require.True(t, w.s.IsAssignable(unary, binary))
	require.False(t, w.s.IsAssignable(binary, unary))

	// A void-returning target accepts any return.
	retVoid := types.NewFunc(w.in, types.NewSignature().Returns(types.Void))
	require.True(t, w.s.IsAssignable(retNum, retVoid))
}

func TestArrayAndTuple(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	nums := types.NewArray(w.in, types.Number)
	roNums := types.NewReadonlyArray(w.in, types.Number)
	pair := types.NewTuple(w.in, types.Number, types.Number)
	single := types.NewTuple(w.in, types.Number)

	require.True(t, w.s.IsAssignable(nums, roNums))
	require.False(t, w.s.IsAssignable(roNums, nums))

	// Tuples flow to arrays of a compatible element, never back.
	require.True(t, w.s.IsAssignable(pair, nums))
	require.False(t, w.s.IsAssignable(nums, single))

	require.False(t, w.s.IsAssignable(pair, single))
	require.False(t, w.s.IsAssignable(single, pair))

	lits := types.NewTuple(w.in, types.NewNumberLiteral(w.in, 1), types.NewNumberLiteral(w.in, 2))
	require.True(t, w.s.IsAssignable(lits, pair))
}

func TestRecursiveAliasTerminates(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	list := w.alias("List", func(self types.TypeId) types.TypeId {
		return types.NewObject().
			WithProperty("value", types.Number).
			WithProperty("next", types.NewUnion(w.in, self, types.Null)).
			Intern(w.in)
	})
	require.True(t, w.s.IsAssignable(list, list))

	// Structurally identical list under a different name.
	other := w.alias("Chain", func(self types.TypeId) types.TypeId {
		return types.NewObject().
			WithProperty("value", types.Number).
			WithProperty("next", types.NewUnion(w.in, self, types.Null)).
			Intern(w.in)
	})
	require.True(t, w.s.IsAssignable(other, list))

	strList := w.alias("StrList", func(self types.TypeId) types.TypeId {
		return types.NewObject().
			WithProperty("value", types.String).
			WithProperty("next", types.NewUnion(w.in, self, types.Null)).
			Intern(w.in)
	})
	require.False(t, w.s.IsAssignable(strList, list))
}

func TestSelfReferentialConditionalTerminates(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	b := w.alias("B", func(types.TypeId) types.TypeId { return types.String })
	// The alias's extends check asks about the alias itself, so the
	// judge and the evaluator keep handing the question to each other.
	// The shared in-flight state has to cut the loop.
	var body types.TypeId
	a := w.alias("A", func(self types.TypeId) types.TypeId {
		body = types.NewConditional(w.in, types.ConditionalKey{
			Check:   self,
			Extends: b,
			True:    types.Number,
			False:   types.Boolean,
		})
		return body
	})
	require.True(t, w.s.IsAssignable(a, types.Number))
	require.False(t, w.s.IsAssignable(a, types.Boolean))
	require.Equal(t, types.Number, w.s.Evaluate(body))
}

func TestTemplateLiteralAssignability(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	idTmpl := types.NewTemplate(w.in,
		types.TemplateSpan{Text: "id-"},
		types.TemplateSpan{Type: types.Number},
	)
	require.True(t, w.s.IsAssignable(types.NewStringLiteral(w.in, "id-7"), idTmpl))
	require.True(t, w.s.IsAssignable(types.NewStringLiteral(w.in, "id-3.5"), idTmpl))
	require.False(t, w.s.IsAssignable(types.NewStringLiteral(w.in, "id-z"), idTmpl))
	require.False(t, w.s.IsAssignable(types.NewStringLiteral(w.in, "idx-7"), idTmpl))

	// Template against template by span alignment.
	litTmpl := types.NewTemplate(w.in,
		types.TemplateSpan{Text: "id-"},
		types.TemplateSpan{Type: types.NewNumberLiteral(w.in, 42)},
	)
	require.True(t, w.s.IsAssignable(litTmpl, idTmpl))
	require.True(t, w.s.IsAssignable(idTmpl, types.String))
	require.False(t, w.s.IsAssignable(types.String, idTmpl))
}

func TestStrictNullChecks(t *testing.T) {
	strict := newWorld(t, DefaultConfig())
	require.False(t, strict.s.IsAssignable(types.Null, types.String))
	require.False(t, strict.s.IsAssignable(types.Undefined, types.String))

	cfg := DefaultConfig()
	cfg.StrictNullChecks = false
	loose := newWorld(t, cfg)
	require.True(t, loose.s.IsAssignable(types.Null, types.String))
	require.True(t, loose.s.IsAssignable(types.Undefined, types.Number))
	require.False(t, loose.s.IsAssignable(types.Null, types.Never))
}

func TestEnumNominal(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	d1 := w.store.Register(defs.DefInfo{Name: "Color", Kind: defs.KindEnum})
	d2 := w.store.Register(defs.DefInfo{Name: "Shade", Kind: defs.KindEnum})
	members := types.NewUnion(w.in,
		types.NewNumberLiteral(w.in, 0), types.NewNumberLiteral(w.in, 1))
	color := types.NewEnum(w.in, d1, members)
	shade := types.NewEnum(w.in, d2, members)

	require.True(t, w.s.IsAssignable(color, color))
	require.False(t, w.s.IsAssignable(color, shade))
	require.True(t, w.s.IsAssignable(color, types.Number))
	require.False(t, w.s.IsAssignable(types.Number, color))
}

func TestTypeParameterConstraint(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	tp := types.NewTypeParamRef(w.in, "T", types.String)
	require.True(t, w.s.IsAssignable(tp, types.String))
	require.False(t, w.s.IsAssignable(tp, types.Number))
	require.False(t, w.s.IsAssignable(types.String, tp))
}

func TestExplainFailureChain(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	src := types.NewObject().WithProperty("x", types.String).Intern(w.in)
	tgt := types.NewObject().WithProperty("x", types.Number).Intern(w.in)
	f := w.s.Explain(src, tgt)
	require.NotNil(t, f)
	require.Contains(t, f.Render(w.in), "x")

	require.Nil(t, w.s.Explain(src, src))
}

func TestVerdictCaching(t *testing.T) {
	w := newWorld(t, DefaultConfig())
	a := types.NewObject().WithProperty("x", types.Number).Intern(w.in)
	b := types.NewObject().WithProperty("x", types.Number).WithProperty("y", types.String).Intern(w.in)
	require.True(t, w.s.IsAssignable(b, a))
	require.True(t, w.s.IsAssignable(b, a))
	require.False(t, w.s.IsAssignable(a, b))
}
