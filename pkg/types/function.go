package types

// --- Function Shapes ---

// Param describes one parameter of a signature.
type Param struct {
	Name     string
	Type     TypeId
	Optional bool
	Rest     bool // ...args; Type is the array type of the rest elements
}

// TypeParam describes one type parameter of a generic signature or
// declaration.
type TypeParam struct {
	Name       string
	Constraint TypeId // NoType if unconstrained
	Default    TypeId // NoType if no default
	Const      bool   // `const T`: inference preserves literal structure
}

// Predicate describes a type predicate return position
// (`x is T` / `asserts x is T` / `asserts x`).
type Predicate struct {
	Asserts    bool
	ParamIndex int    // index of the narrowed parameter, -1 for `this`
	Type       TypeId // NoType for a plain truthiness assertion
}

// Signature is one call or construct signature: parameters, return
// type, optional type parameters and an optional predicate.
type Signature struct {
	TypeParams []TypeParam
	Params     []Param
	This       TypeId // NoType if no `this` parameter
	Return     TypeId
	Predicate  *Predicate
	// Method signatures compare parameters bivariantly, matching the
	// reference language's documented unsoundness for methods.
	IsMethod bool
}

func (s *Signature) appendHash(b []byte) []byte {
	b = appendU32(b, uint32(len(s.TypeParams)))
	for _, tp := range s.TypeParams {
		b = appendStr(b, tp.Name)
		b = appendID(b, tp.Constraint)
		b = appendID(b, tp.Default)
		b = appendBool(b, tp.Const)
	}
	b = appendU32(b, uint32(len(s.Params)))
	for _, p := range s.Params {
		b = appendID(b, p.Type)
		b = appendBool(b, p.Optional)
		b = appendBool(b, p.Rest)
	}
	b = appendID(b, s.This)
	b = appendID(b, s.Return)
	if s.Predicate != nil {
		b = appendBool(b, s.Predicate.Asserts)
		b = appendU32(b, uint32(int32(s.Predicate.ParamIndex)))
		b = appendID(b, s.Predicate.Type)
	} else {
		b = append(b, 0xff)
	}
	return appendBool(b, s.IsMethod)
}

func (s *Signature) equalSig(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.TypeParams) != len(o.TypeParams) || len(s.Params) != len(o.Params) {
		return false
	}
	for i, tp := range s.TypeParams {
		op := o.TypeParams[i]
		if tp.Name != op.Name || tp.Constraint != op.Constraint || tp.Default != op.Default || tp.Const != op.Const {
			return false
		}
	}
	for i, p := range s.Params {
		op := o.Params[i]
		// Parameter names are ignored: signatures are positional.
		if p.Type != op.Type || p.Optional != op.Optional || p.Rest != op.Rest {
			return false
		}
	}
	if s.This != o.This || s.Return != o.Return || s.IsMethod != o.IsMethod {
		return false
	}
	if (s.Predicate == nil) != (o.Predicate == nil) {
		return false
	}
	if s.Predicate != nil && *s.Predicate != *o.Predicate {
		return false
	}
	return true
}

// RestType returns the rest parameter's array type, or NoType.
func (s *Signature) RestType() TypeId {
	if n := len(s.Params); n > 0 && s.Params[n-1].Rest {
		return s.Params[n-1].Type
	}
	return NoType
}

// FixedParamCount returns the number of non-rest parameters.
func (s *Signature) FixedParamCount() int {
	n := len(s.Params)
	if n > 0 && s.Params[n-1].Rest {
		return n - 1
	}
	return n
}

// RequiredParamCount returns the number of parameters that are neither
// optional nor rest.
func (s *Signature) RequiredParamCount() int {
	count := 0
	for _, p := range s.Params {
		if !p.Optional && !p.Rest {
			count++
		}
	}
	return count
}

// FunctionKey is the TypeKey for a standalone function or constructor
// type. Callable interfaces with properties or overloads use ObjectKey
// with signature lists instead.
type FunctionKey struct {
	Sig           Signature
	IsConstructor bool
}

func (k *FunctionKey) typeKey() {}

func (k *FunctionKey) appendHash(b []byte) []byte {
	b = append(b, tagFunction)
	b = appendBool(b, k.IsConstructor)
	return k.Sig.appendHash(b)
}

func (k *FunctionKey) equalKey(other TypeKey) bool {
	o, ok := other.(*FunctionKey)
	return ok && k.IsConstructor == o.IsConstructor && k.Sig.equalSig(&o.Sig)
}

// NewSignature creates a signature with the given parameter types, all
// required, returning Void until Returns is called.
func NewSignature(paramTypes ...TypeId) *Signature {
	params := make([]Param, len(paramTypes))
	for i, t := range paramTypes {
		params[i] = Param{Type: t}
	}
	return &Signature{Params: params, Return: Void}
}

// Returns sets the return type (fluent interface).
func (s *Signature) Returns(ret TypeId) *Signature {
	s.Return = ret
	return s
}

// WithOptionalAt marks the parameters at the given indices optional.
func (s *Signature) WithOptionalAt(indices ...int) *Signature {
	for _, i := range indices {
		if i >= 0 && i < len(s.Params) {
			s.Params[i].Optional = true
		}
	}
	return s
}

// WithRest appends a rest parameter. elemArray must already be an array
// type handle.
func (s *Signature) WithRest(elemArray TypeId) *Signature {
	s.Params = append(s.Params, Param{Type: elemArray, Rest: true})
	return s
}

// WithTypeParams attaches type parameters (fluent interface).
func (s *Signature) WithTypeParams(tps ...TypeParam) *Signature {
	s.TypeParams = tps
	return s
}

// WithPredicate attaches a type predicate (fluent interface).
func (s *Signature) WithPredicate(p Predicate) *Signature {
	s.Predicate = &p
	return s
}

// AsMethod marks the signature as method-position (bivariant params).
func (s *Signature) AsMethod() *Signature {
	s.IsMethod = true
	return s
}
