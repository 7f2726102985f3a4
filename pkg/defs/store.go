// Package defs owns named declarations: the mapping from stable DefId
// handles to lazily-resolved type bodies. Recursion in the type graph
// flows through Ref(DefId) handles, so laziness here is what lets
// `type Json = ... | Json[]` terminate everywhere else.
package defs

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	ilog "tsolve/internal/log"
	"tsolve/pkg/types"
)

// DefKind classifies a declaration. The Judge consults it for the
// nominal rules (classes and enums) and the store for namespaces.
type DefKind uint8

const (
	KindTypeAlias DefKind = iota
	KindInterface
	KindClass
	KindEnum
	KindNamespace
)

// String returns the declaration keyword.
func (k DefKind) String() string {
	switch k {
	case KindTypeAlias:
		return "type"
	case KindInterface:
		return "interface"
	case KindClass:
		return "class"
	case KindEnum:
		return "enum"
	case KindNamespace:
		return "namespace"
	default:
		return "unknown"
	}
}

// DefInfo is the eagerly-known part of a declaration: its name, kind
// and type parameters. The body stays unresolved until first use.
type DefInfo struct {
	Name       string
	Kind       DefKind
	TypeParams []types.TypeParam
}

// Resolver computes the structural body of a declaration on demand.
// The binder implements it; the store never sees syntax.
type Resolver interface {
	// ResolveType builds and interns the body of the declaration. It is
	// called at most once per DefId per process (memoized), possibly
	// re-entrantly through Resolve for definitions the body references.
	ResolveType(id types.DefId) (types.TypeId, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id types.DefId) (types.TypeId, error)

func (f ResolverFunc) ResolveType(id types.DefId) (types.TypeId, error) { return f(id) }

type defEntry struct {
	info DefInfo
	// exports is the member table for namespace declarations.
	exports map[string]types.DefId

	resolved bool
	body     types.TypeId
}

// Store maps DefIds to declarations and memoizes body resolution. It is
// safe for concurrent use; concurrent first resolutions of one DefId
// collapse into a single Resolver call.
type Store struct {
	resolver Resolver
	logger   *slog.Logger

	mu        sync.RWMutex
	entries   []*defEntry // index is DefId-1; NoDef never allocates
	resolving map[types.DefId]bool

	flight singleflight.Group
}

// NewStore creates an empty store backed by the given resolver.
func NewStore(resolver Resolver) *Store {
	return &Store{
		resolver:  resolver,
		logger:    ilog.DefaultLogger.With("section", "defs"),
		resolving: make(map[types.DefId]bool),
	}
}

// Register allocates a DefId for a declaration. Bodies are not touched;
// the id is usable in Ref keys immediately, which is what permits
// mutually recursive declarations to register in any order.
func (s *Store) Register(info DefInfo) types.DefId {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &defEntry{info: info})
	return types.DefId(len(s.entries))
}

// RegisterExport records a member of a namespace declaration.
func (s *Store) RegisterExport(ns types.DefId, name string, member types.DefId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(ns)
	if e == nil {
		return
	}
	if e.exports == nil {
		e.exports = make(map[string]types.DefId)
	}
	e.exports[name] = member
}

// entry returns the entry for id. Callers hold s.mu.
func (s *Store) entry(id types.DefId) *defEntry {
	if id == types.NoDef || int(id) > len(s.entries) {
		return nil
	}
	return s.entries[id-1]
}

// Name returns the declared name, or "" for an unknown id.
func (s *Store) Name(id types.DefId) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.entry(id); e != nil {
		return e.info.Name
	}
	return ""
}

// Kind returns the declaration kind.
func (s *Store) Kind(id types.DefId) DefKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.entry(id); e != nil {
		return e.info.Kind
	}
	return KindTypeAlias
}

// TypeParams returns the declaration's type parameters. Callers must
// not mutate the result.
func (s *Store) TypeParams(id types.DefId) []types.TypeParam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.entry(id); e != nil {
		return e.info.TypeParams
	}
	return nil
}

// LookupExport resolves a member of a namespace declaration.
func (s *Store) LookupExport(ns types.DefId, name string) (types.DefId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.entry(ns); e != nil {
		member, ok := e.exports[name]
		return member, ok
	}
	return types.NoDef, false
}

// Resolve returns the declaration's body, computing and memoizing it on
// first use. A definition that references itself while its own body is
// being computed observes the Cyclic provisional instead of diverging;
// resolver failures poison the definition with ErrorType and log, so
// the result is total.
func (s *Store) Resolve(id types.DefId) types.TypeId {
	s.mu.RLock()
	e := s.entry(id)
	if e == nil {
		s.mu.RUnlock()
		s.logger.Warn("resolve of unknown DefId", "def", uint32(id))
		return types.ErrorType
	}
	if e.resolved {
		body := e.body
		s.mu.RUnlock()
		return body
	}
	inFlight := s.resolving[id]
	s.mu.RUnlock()

	if inFlight {
		// Either re-entrance from this definition's own body or a
		// concurrent cycle partner. Both get the provisional.
		return types.Cyclic
	}

	body, _, _ := s.flight.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		s.mu.Lock()
		if e.resolved {
			s.mu.Unlock()
			return e.body, nil
		}
		s.resolving[id] = true
		s.mu.Unlock()

		resolved, err := s.resolver.ResolveType(id)
		if err != nil {
			err = errors.Wrapf(err, "resolving %s %s", e.info.Kind, e.info.Name)
			s.logger.Warn("definition resolution failed", "def", uint32(id), "err", err)
			resolved = types.ErrorType
		}

		s.mu.Lock()
		delete(s.resolving, id)
		e.resolved = true
		e.body = resolved
		s.mu.Unlock()
		return resolved, nil
	})
	return body.(types.TypeId)
}

// Resolved reports whether the body has been computed, without
// triggering resolution.
func (s *Store) Resolved(id types.DefId) (types.TypeId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.entry(id); e != nil && e.resolved {
		return e.body, true
	}
	return types.NoType, false
}

// Len returns the number of registered declarations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
