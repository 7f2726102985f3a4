package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIdentity(t *testing.T) {
	in := NewInterner()

	// Structurally equal keys intern to the same handle.
	a := NewStringLiteral(in, "hello")
	b := NewStringLiteral(in, "hello")
	require.Equal(t, a, b)

	c := NewStringLiteral(in, "world")
	require.NotEqual(t, a, c)

	// Interning is idempotent across lookup round-trips.
	key := in.Lookup(a)
	require.Equal(t, a, in.Intern(key))
}

func TestInternSentinels(t *testing.T) {
	in := NewInterner()

	// Sentinel keys resolve to their fixed handles, not fresh ids.
	require.Equal(t, String, in.Intern(&IntrinsicKey{Kind: KindString}))
	require.Equal(t, Never, in.Intern(&IntrinsicKey{Kind: KindNever}))
	require.Equal(t, True, in.Intern(&LiteralKey{Value: BoolValue(true)}))

	k, ok := in.Lookup(Number).(*IntrinsicKey)
	require.True(t, ok)
	require.Equal(t, KindNumber, k.Kind)
}

func TestInternObjectPropertyOrder(t *testing.T) {
	in := NewInterner()

	// Property insertion order must not affect identity.
	a := NewObject().
		WithProperty("x", Number).
		WithProperty("y", String).
		Intern(in)
	b := NewObject().
		WithProperty("y", String).
		WithProperty("x", Number).
		Intern(in)
	require.Equal(t, a, b)

	// Freshness is part of identity.
	fresh := NewObject().
		WithProperty("x", Number).
		WithProperty("y", String).
		Fresh().
		Intern(in)
	require.NotEqual(t, a, fresh)
	require.Equal(t, a, WidenedShallow(in, fresh))
}

func TestInternConcurrent(t *testing.T) {
	in := NewInterner()

	const workers = 8
	ids := make([][]TypeId, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]TypeId, 0, 200)
			for i := 0; i < 200; i++ {
				out = append(out, NewNumberLiteral(in, float64(i)))
			}
			ids[w] = out
		}(w)
	}
	wg.Wait()

	// Every goroutine observed the same handle for the same literal.
	for w := 1; w < workers; w++ {
		require.Equal(t, ids[0], ids[w])
	}
}

func TestUnionCanonicalization(t *testing.T) {
	in := NewInterner()

	// Order and duplicates do not matter.
	a := NewUnion(in, String, Number, String)
	b := NewUnion(in, Number, String)
	require.Equal(t, a, b)

	// A single member collapses to the member itself.
	require.Equal(t, String, NewUnion(in, String, String))

	// Never vanishes; the empty union is Never.
	require.Equal(t, String, NewUnion(in, String, Never))
	require.Equal(t, Never, NewUnion(in))
	require.Equal(t, Never, NewUnion(in, Never, Never))

	// Any and unknown absorb.
	require.Equal(t, Any, NewUnion(in, String, Any))
	require.Equal(t, Unknown, NewUnion(in, String, Unknown))

	// Nested unions flatten.
	inner := NewUnion(in, String, Number)
	require.Equal(t,
		NewUnion(in, String, Number, Boolean),
		NewUnion(in, inner, Boolean))
}

func TestUnionLiteralAbsorption(t *testing.T) {
	in := NewInterner()

	lit := NewStringLiteral(in, "a")
	require.Equal(t, String, NewUnion(in, lit, String))

	// true | false collapses to boolean.
	require.Equal(t, Boolean, NewUnion(in, True, False))

	// Literals of a primitive not present survive.
	u := NewUnion(in, lit, Number)
	members := UnionMembers(in, u)
	require.Len(t, members, 2)
}

func TestIntersectionCanonicalization(t *testing.T) {
	in := NewInterner()

	// Unknown is the identity; the empty intersection is unknown.
	require.Equal(t, String, NewIntersection(in, String, Unknown))
	require.Equal(t, Unknown, NewIntersection(in))

	// Never propagates, any absorbs.
	require.Equal(t, Never, NewIntersection(in, String, Never))
	require.Equal(t, Any, NewIntersection(in, String, Any))

	// Disjoint primitives reduce to never.
	require.Equal(t, Never, NewIntersection(in, String, Number))
	require.Equal(t,
		Never,
		NewIntersection(in, NewStringLiteral(in, "a"), NewStringLiteral(in, "b")))

	// Object intersections stay symbolic.
	a := NewObject().WithProperty("x", Number).Intern(in)
	b := NewObject().WithProperty("y", String).Intern(in)
	isect := NewIntersection(in, a, b)
	_, ok := in.Lookup(isect).(*IntersectionKey)
	require.True(t, ok)
	require.Equal(t, isect, NewIntersection(in, b, a))
}

func TestWidened(t *testing.T) {
	in := NewInterner()

	require.Equal(t, String, Widened(in, NewStringLiteral(in, "hi")))
	require.Equal(t, Number, Widened(in, NewNumberLiteral(in, 42)))
	require.Equal(t, Boolean, Widened(in, True))

	// Deep widening strips freshness and widens property literals.
	fresh := NewObject().
		WithProperty("mode", NewStringLiteral(in, "fast")).
		Fresh().
		Intern(in)
	wide := Widened(in, fresh)
	obj, ok := in.Lookup(wide).(*ObjectKey)
	require.True(t, ok)
	require.False(t, obj.IsFresh())
	p, ok := obj.Prop("mode")
	require.True(t, ok)
	require.Equal(t, String, p.Type)

	// Shallow widening keeps the literal but drops freshness.
	shallow := WidenedShallow(in, fresh)
	obj, ok = in.Lookup(shallow).(*ObjectKey)
	require.True(t, ok)
	require.False(t, obj.IsFresh())
	p, _ = obj.Prop("mode")
	require.Equal(t, NewStringLiteral(in, "fast"), p.Type)

	// Widening an already-wide type returns the same handle.
	require.Equal(t, wide, Widened(in, wide))
}

func TestScopedPartition(t *testing.T) {
	global := NewInterner()
	scoped := NewScoped(global)

	// Global types resolve through the scoped view without allocating.
	g := NewStringLiteral(global, "shared")
	require.Equal(t, g, scoped.Intern(&LiteralKey{Value: StringValue("shared")}))

	// A key unseen globally allocates in the local partition.
	l := scoped.Intern(&LiteralKey{Value: StringValue("ephemeral")})
	require.True(t, l.IsLocal())
	require.False(t, g.IsLocal())

	// Local handles resolve locally and stay idempotent.
	require.Equal(t, l, scoped.Intern(&LiteralKey{Value: StringValue("ephemeral")}))
	k, ok := scoped.Lookup(l).(*LiteralKey)
	require.True(t, ok)
	require.Equal(t, "ephemeral", k.Value.Str)

	// Lift re-interns the key globally.
	lifted := scoped.Lift(l)
	require.False(t, lifted.IsLocal())
	require.Equal(t, lifted, global.Intern(&LiteralKey{Value: StringValue("ephemeral")}))
}

func TestGlobalRejectsLocalChildren(t *testing.T) {
	global := NewInterner()
	scoped := NewScoped(global)

	l := scoped.Intern(&LiteralKey{Value: StringValue("local-only")})
	require.True(t, l.IsLocal())

	// A global key referencing a local child degrades to the error type.
	require.Equal(t, ErrorType, global.Intern(&ArrayKey{Elem: l}))

	// Foreign ids resolve to the error key instead of panicking.
	_, isIntrinsic := global.Lookup(l).(*IntrinsicKey)
	require.True(t, isIntrinsic)
}

func TestClassify(t *testing.T) {
	in := NewInterner()

	fn := NewFunc(in, NewSignature(Number).Returns(String))
	require.True(t, IsCallable(in, fn))
	require.False(t, IsCallable(in, String))

	sigs := CallSignaturesOf(in, fn)
	require.Len(t, sigs, 1)
	require.Equal(t, String, sigs[0].Return)

	arr := NewArray(in, Number)
	require.True(t, IsArrayLike(in, arr))
	elem, ok := IterableElementOf(in, arr)
	require.True(t, ok)
	require.Equal(t, Number, elem)

	tup := NewTuple(in, String, Number)
	elem, ok = IterableElementOf(in, tup)
	require.True(t, ok)
	require.Equal(t, NewUnion(in, String, Number), elem)

	require.Equal(t, TruthyNever, TruthinessOf(in, Null))
	require.Equal(t, TruthyAlways, TruthinessOf(in, fn))
	require.Equal(t, TruthyNever, TruthinessOf(in, NewStringLiteral(in, "")))
	require.Equal(t, TruthyAlways, TruthinessOf(in, NewStringLiteral(in, "x")))
	require.Equal(t, TruthyUnknown, TruthinessOf(in, String))

	tag, ok := TypeofTagOf(in, NewNumberLiteral(in, 1))
	require.True(t, ok)
	require.Equal(t, "number", tag)
	_, ok = TypeofTagOf(in, NewUnion(in, String, Number))
	require.False(t, ok)
}

func TestSprint(t *testing.T) {
	in := NewInterner()

	require.Equal(t, "string", Sprint(in, String))
	require.Equal(t, `"hi"`, Sprint(in, NewStringLiteral(in, "hi")))
	require.Equal(t, "number[]", Sprint(in, NewArray(in, Number)))
	require.Equal(t, "number | string", Sprint(in, NewUnion(in, String, Number)))

	tmpl := NewTemplate(in,
		TemplateSpan{Text: "id-"},
		TemplateSpan{Type: Number})
	require.Equal(t, "`id-${number}`", Sprint(in, tmpl))

	obj := NewObject().WithProperty("x", Number).Intern(in)
	require.Equal(t, "{ x: number }", Sprint(in, obj))
}
