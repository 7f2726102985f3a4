package types

// --- Symbolic References and Generics ---

// RefKey is the TypeKey for a reference to a named declaration. It is
// the only variant that names an external entity; recursion in the type
// graph flows exclusively through it, broken by the Definition Store's
// laziness.
type RefKey struct {
	Def DefId
}

func (k *RefKey) typeKey() {}

func (k *RefKey) appendHash(b []byte) []byte {
	b = append(b, tagRef)
	return appendU32(b, uint32(k.Def))
}

func (k *RefKey) equalKey(other TypeKey) bool {
	o, ok := other.(*RefKey)
	return ok && k.Def == o.Def
}

// ApplicationKey is the TypeKey for an uninstantiated generic
// application Base<Args>. Base is a Ref handle.
type ApplicationKey struct {
	Base TypeId
	Args []TypeId
}

func (k *ApplicationKey) typeKey() {}

func (k *ApplicationKey) appendHash(b []byte) []byte {
	b = append(b, tagApplication)
	b = appendID(b, k.Base)
	return appendIDs(b, k.Args)
}

func (k *ApplicationKey) equalKey(other TypeKey) bool {
	o, ok := other.(*ApplicationKey)
	return ok && k.Base == o.Base && sameIDs(k.Args, o.Args)
}

// TypeParameterKey is the TypeKey for an in-scope type parameter
// occurrence (the T inside a generic body). Identity is by name within
// the enclosing declaration plus constraint, matching how substitution
// binds them.
type TypeParameterKey struct {
	Name       string
	Constraint TypeId
	Const      bool
}

func (k *TypeParameterKey) typeKey() {}

func (k *TypeParameterKey) appendHash(b []byte) []byte {
	b = append(b, tagTypeParameter)
	b = appendStr(b, k.Name)
	b = appendID(b, k.Constraint)
	return appendBool(b, k.Const)
}

func (k *TypeParameterKey) equalKey(other TypeKey) bool {
	o, ok := other.(*TypeParameterKey)
	return ok && *k == *o
}

// InferKey is the TypeKey for an `infer R` binder inside the extends
// clause of a conditional type.
type InferKey struct {
	Name       string
	Constraint TypeId
}

func (k *InferKey) typeKey() {}

func (k *InferKey) appendHash(b []byte) []byte {
	b = append(b, tagInfer)
	b = appendStr(b, k.Name)
	return appendID(b, k.Constraint)
}

func (k *InferKey) equalKey(other TypeKey) bool {
	o, ok := other.(*InferKey)
	return ok && *k == *o
}

// EnumKey is the TypeKey for an enum type. Enums are nominal: two enums
// with identical member types are distinct. Members is the structural
// union of the member literal types, used for enum-to-primitive
// assignability.
type EnumKey struct {
	Def     DefId
	Members TypeId
}

func (k *EnumKey) typeKey() {}

func (k *EnumKey) appendHash(b []byte) []byte {
	b = append(b, tagEnum)
	b = appendU32(b, uint32(k.Def))
	return appendID(b, k.Members)
}

func (k *EnumKey) equalKey(other TypeKey) bool {
	o, ok := other.(*EnumKey)
	return ok && *k == *o
}

// ModuleNamespaceKey is the TypeKey for `typeof import(...)` and
// `import * as ns` namespace types. The member table lives in the
// Definition Store.
type ModuleNamespaceKey struct {
	Def DefId
}

func (k *ModuleNamespaceKey) typeKey() {}

func (k *ModuleNamespaceKey) appendHash(b []byte) []byte {
	b = append(b, tagModuleNamespace)
	return appendU32(b, uint32(k.Def))
}

func (k *ModuleNamespaceKey) equalKey(other TypeKey) bool {
	o, ok := other.(*ModuleNamespaceKey)
	return ok && k.Def == o.Def
}
