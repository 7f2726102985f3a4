package types

import (
	"log/slog"
	"sync"
	"sync/atomic"

	ilog "tsolve/internal/log"
)

// Interning is the capability the rest of the algebra needs from an
// interner: exchange keys for handles and back. Both the global
// Interner and the per-request Scoped interner satisfy it.
type Interning interface {
	// Intern returns the handle for key, allocating one if the key has
	// not been seen. It never fails; invalid construction (a global
	// composite referencing a local component) degrades to ErrorType.
	Intern(key TypeKey) TypeId

	// Lookup returns the key previously interned under id. It is total
	// for any id this interner (or, for a Scoped interner, its parent)
	// returned; a foreign id is a programming error.
	Lookup(id TypeId) TypeKey

	// Saturated reports whether the hard ceiling on interned types has
	// been crossed. Evaluation consults this to degrade expansion
	// results to Unknown instead of growing without bound.
	Saturated() bool
}

// Interner hash-conses TypeKeys into dense TypeId handles. It is safe
// for concurrent use: the key space is sharded by hash so independent
// checking threads do not serialize on one lock. Storage is append-only;
// handles are never reused or remapped.
type Interner struct {
	shards [ShardCount]internShard
	count  atomic.Int64
	logger *slog.Logger
}

type internShard struct {
	mu     sync.RWMutex
	keys   []TypeKey         // append-only; index recovered from the id
	byHash map[uint64][]TypeId
}

// sentinelKeys maps the fixed sentinel handles to their keys, in id
// order starting at ErrorType.
var sentinelKeys = []TypeKey{
	ErrorType:    &IntrinsicKey{Kind: KindError},
	Cyclic:       &IntrinsicKey{Kind: KindCyclic},
	Never:        &IntrinsicKey{Kind: KindNever},
	Unknown:      &IntrinsicKey{Kind: KindUnknown},
	Any:          &IntrinsicKey{Kind: KindAny},
	Void:         &IntrinsicKey{Kind: KindVoid},
	Undefined:    &IntrinsicKey{Kind: KindUndefined},
	Null:         &IntrinsicKey{Kind: KindNull},
	Boolean:      &IntrinsicKey{Kind: KindBoolean},
	Number:       &IntrinsicKey{Kind: KindNumber},
	String:       &IntrinsicKey{Kind: KindString},
	Bigint:       &IntrinsicKey{Kind: KindBigint},
	SymbolPrim:   &IntrinsicKey{Kind: KindSymbol},
	ObjectPrim:   &IntrinsicKey{Kind: KindObject},
	True:         &LiteralKey{Value: BoolValue(true)},
	False:        &LiteralKey{Value: BoolValue(false)},
	FunctionPrim: &IntrinsicKey{Kind: KindFunction},
}

// NewInterner creates an interner with all sentinels pre-registered, so
// interning an intrinsic or boolean-literal key returns its fixed id.
func NewInterner() *Interner {
	in := &Interner{logger: ilog.DefaultLogger.With("section", "intern")}
	for i := range in.shards {
		in.shards[i].byHash = make(map[uint64][]TypeId)
	}
	for id, key := range sentinelKeys {
		if key == nil {
			continue
		}
		h := hashKey(key)
		shard := &in.shards[h&ShardMask]
		shard.byHash[h] = append(shard.byHash[h], TypeId(id))
	}
	return in
}

// Intern returns the handle for key, allocating a new global handle if
// the key is unseen. Two goroutines interning structurally-equal keys
// concurrently converge on one handle.
func (in *Interner) Intern(key TypeKey) TypeId {
	if bad, ok := firstLocalChild(key); ok {
		// Global types must never reference local ones; enforced here
		// rather than by convention.
		in.logger.Warn("rejected global intern of key with local component", "component", uint32(bad))
		return ErrorType
	}
	h := hashKey(key)
	shard := &in.shards[h&ShardMask]

	shard.mu.RLock()
	if id, ok := in.findInShard(shard, h, key); ok {
		shard.mu.RUnlock()
		return id
	}
	shard.mu.RUnlock()

	shard.mu.Lock()
	defer shard.mu.Unlock()
	// Double-check: another goroutine may have inserted while we
	// upgraded the lock.
	if id, ok := in.findInShard(shard, h, key); ok {
		return id
	}
	index := len(shard.keys)
	shard.keys = append(shard.keys, key)
	id := FirstUserTypeId + TypeId(uint32(index)<<ShardBits|uint32(h&ShardMask))
	shard.byHash[h] = append(shard.byHash[h], id)
	in.count.Add(1)
	return id
}

// findInShard scans the hash bucket for a structurally equal key.
// Callers hold at least a read lock on the shard; keys are read
// directly rather than through Lookup to avoid re-locking.
func (in *Interner) findInShard(shard *internShard, h uint64, key TypeKey) (TypeId, bool) {
	for _, id := range shard.byHash[h] {
		var stored TypeKey
		if id.IsIntrinsic() {
			stored = sentinelKeys[id]
		} else {
			stored = shard.keys[uint32(id-FirstUserTypeId)>>ShardBits]
		}
		if stored.equalKey(key) {
			return id, true
		}
	}
	return NoType, false
}

// Find returns the existing handle for key without allocating.
func (in *Interner) Find(key TypeKey) (TypeId, bool) {
	h := hashKey(key)
	shard := &in.shards[h&ShardMask]
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return in.findInShard(shard, h, key)
}

// Lookup returns the key interned under id.
func (in *Interner) Lookup(id TypeId) TypeKey {
	if id.IsIntrinsic() {
		if int(id) < len(sentinelKeys) && sentinelKeys[id] != nil {
			return sentinelKeys[id]
		}
		return sentinelKeys[ErrorType]
	}
	n := uint32(id - FirstUserTypeId)
	shard := &in.shards[n&ShardMask]
	index := n >> ShardBits
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	if int(index) >= len(shard.keys) {
		// A handle this interner never produced: a broken invariant at
		// the caller, not adversarial input. Degrade rather than crash.
		in.logger.Warn("lookup of foreign TypeId", "id", uint32(id))
		return sentinelKeys[ErrorType]
	}
	return shard.keys[index]
}

// Count returns the number of non-sentinel interned types.
func (in *Interner) Count() int { return int(in.count.Load()) }

// Saturated reports whether the interner crossed MaxInternedTypes.
func (in *Interner) Saturated() bool { return in.count.Load() >= MaxInternedTypes }

// firstLocalChild returns a local component handle of key, if any.
func firstLocalChild(key TypeKey) (TypeId, bool) {
	found := NoType
	visitChildren(key, func(id TypeId) bool {
		if id.IsLocal() {
			found = id
			return false
		}
		return true
	})
	return found, found != NoType
}

// visitChildren calls fn for every component TypeId of key, stopping
// early when fn returns false. This is the one place that pattern
// matches the full variant set for traversal; everything else goes
// through classifier queries or the solver's dispatch.
func visitChildren(key TypeKey, fn func(TypeId) bool) {
	visitSig := func(s *Signature) bool {
		for _, tp := range s.TypeParams {
			if tp.Constraint != NoType && !fn(tp.Constraint) {
				return false
			}
			if tp.Default != NoType && !fn(tp.Default) {
				return false
			}
		}
		for _, p := range s.Params {
			if !fn(p.Type) {
				return false
			}
		}
		if s.This != NoType && !fn(s.This) {
			return false
		}
		if !fn(s.Return) {
			return false
		}
		if s.Predicate != nil && s.Predicate.Type != NoType && !fn(s.Predicate.Type) {
			return false
		}
		return true
	}
	switch k := key.(type) {
	case *ObjectKey:
		for _, p := range k.Properties {
			if !fn(p.Type) {
				return
			}
		}
		for _, idx := range []*IndexSignature{k.StringIndex, k.NumberIndex} {
			if idx != nil && !fn(idx.Value) {
				return
			}
		}
		for i := range k.Calls {
			if !visitSig(&k.Calls[i]) {
				return
			}
		}
		for i := range k.Constructs {
			if !visitSig(&k.Constructs[i]) {
				return
			}
		}
	case *FunctionKey:
		visitSig(&k.Sig)
	case *ArrayKey:
		fn(k.Elem)
	case *TupleKey:
		for _, e := range k.Elems {
			if !fn(e.Type) {
				return
			}
		}
	case *UnionKey:
		for _, m := range k.Members {
			if !fn(m) {
				return
			}
		}
	case *IntersectionKey:
		for _, m := range k.Members {
			if !fn(m) {
				return
			}
		}
	case *ApplicationKey:
		if !fn(k.Base) {
			return
		}
		for _, a := range k.Args {
			if !fn(a) {
				return
			}
		}
	case *ConditionalKey:
		_ = fn(k.Check) && fn(k.Extends) && fn(k.True) && fn(k.False)
	case *MappedKey:
		if !fn(k.Constraint) {
			return
		}
		if k.NameTemplate != NoType && !fn(k.NameTemplate) {
			return
		}
		fn(k.Template)
	case *TemplateLiteralKey:
		for _, s := range k.Spans {
			if s.Type != NoType && !fn(s.Type) {
				return
			}
		}
	case *IndexedAccessKey:
		_ = fn(k.Object) && fn(k.Index)
	case *KeyofKey:
		fn(k.Operand)
	case *TypeParameterKey:
		if k.Constraint != NoType {
			fn(k.Constraint)
		}
	case *InferKey:
		if k.Constraint != NoType {
			fn(k.Constraint)
		}
	case *StringIntrinsicKey:
		fn(k.Arg)
	case *EnumKey:
		fn(k.Members)
	}
}
