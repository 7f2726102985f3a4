package solver

import (
	"github.com/benbjohnson/immutable"

	"tsolve/pkg/types"
)

// env is a persistent substitution environment binding type-parameter
// and infer-binder names to handles. Persistence matters: conditional
// distribution and mapped-type fan-out evaluate one body under many
// single-binding extensions of a shared environment, and a persistent
// map makes each extension O(log n) without copying.
type env = *immutable.Map[string, types.TypeId]

func emptyEnv() env {
	return immutable.NewMap[string, types.TypeId](nil)
}

func bind(e env, name string, id types.TypeId) env {
	return e.Set(name, id)
}

func lookupEnv(e env, name string) (types.TypeId, bool) {
	return e.Get(name)
}

// instantiate applies a generic declaration to type arguments: missing
// arguments fall back to the parameter's default, then unknown. The
// body is resolved through the store and evaluated under the extended
// environment.
func (ev *evaluator) instantiate(key *types.ApplicationKey, e env) types.TypeId {
	ref, ok := ev.s.in.Lookup(key.Base).(*types.RefKey)
	if !ok {
		return types.ErrorType
	}
	if ev.instDepth >= types.MaxInstantiationDepth {
		ev.s.logEval.Warn("instantiation depth exceeded", "def", uint32(ref.Def))
		return types.Unknown
	}

	params := ev.s.defs.TypeParams(ref.Def)
	for i, p := range params {
		arg := types.NoType
		if i < len(key.Args) {
			arg = ev.eval(key.Args[i], e)
		} else if p.Default != types.NoType {
			arg = ev.eval(p.Default, e)
		}
		if arg == types.NoType {
			arg = types.Unknown
		}
		e = bind(e, p.Name, arg)
	}

	body := ev.s.defs.Resolve(ref.Def)
	if body == types.Cyclic {
		// Self-reference mid-resolution: keep the application symbolic.
		return ev.s.in.Intern(key)
	}

	ev.instDepth++
	result := ev.eval(body, e)
	ev.instDepth--
	return result
}

// shadowed removes bindings captured by a signature's own type
// parameters, so an inner generic's T is not substituted by an outer
// binding of the same name.
func shadowed(e env, tps []types.TypeParam) env {
	for _, tp := range tps {
		if _, ok := e.Get(tp.Name); ok {
			e = e.Delete(tp.Name)
		}
	}
	return e
}
