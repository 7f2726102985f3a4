package types

// Scoped is a per-request interner layered over a global Interner. It
// allocates handles in the local (MSB-set) partition; discarding the
// Scoped value reclaims every local type at once, with no effect on
// surviving global handles. A Scoped interner is single-request state
// and is not safe for concurrent use; each checking thread owns its own.
type Scoped struct {
	parent *Interner
	keys   []TypeKey
	byHash map[uint64][]TypeId
}

// NewScoped creates an empty local partition over parent.
func NewScoped(parent *Interner) *Scoped {
	return &Scoped{parent: parent, byHash: make(map[uint64][]TypeId)}
}

// Parent returns the underlying global interner.
func (s *Scoped) Parent() *Interner { return s.parent }

// Intern returns a handle for key. Keys already present globally keep
// their global handle, so a local composite that happens to equal a
// global one does not fork identity; unseen keys get local handles.
func (s *Scoped) Intern(key TypeKey) TypeId {
	if id, ok := s.parent.Find(key); ok {
		return id
	}
	h := hashKey(key)
	for _, id := range s.byHash[h] {
		if s.keys[uint32(id&^LocalMask)].equalKey(key) {
			return id
		}
	}
	index := len(s.keys)
	s.keys = append(s.keys, key)
	id := LocalMask | TypeId(index)
	s.byHash[h] = append(s.byHash[h], id)
	return id
}

// Lift interns key globally, for export of a request-local result into
// the long-lived partition. It fails (ErrorType) if any component is
// still local; callers lift bottom-up.
func (s *Scoped) Lift(id TypeId) TypeId {
	if !id.IsLocal() {
		return id
	}
	return s.parent.Intern(s.Lookup(id))
}

// Lookup resolves local handles from the scope and forwards global
// handles to the parent.
func (s *Scoped) Lookup(id TypeId) TypeKey {
	if !id.IsLocal() {
		return s.parent.Lookup(id)
	}
	index := uint32(id &^ LocalMask)
	if int(index) >= len(s.keys) {
		return sentinelKeys[ErrorType]
	}
	return s.keys[index]
}

// Count returns the number of local types in this scope.
func (s *Scoped) Count() int { return len(s.keys) }

// Saturated defers to the parent's global ceiling; local arenas are
// reclaimed wholesale so they do not count against it.
func (s *Scoped) Saturated() bool { return s.parent.Saturated() }
