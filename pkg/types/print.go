package types

import (
	"fmt"
	"strconv"
	"strings"
)

// maxPrintDepth caps recursive rendering so cyclic or very deep type
// graphs still print.
const maxPrintDepth = 8

// Sprint renders the type in TypeScript-ish syntax for diagnostics and
// logging. The rendering is best-effort and not guaranteed stable
// across releases.
func Sprint(in Interning, id TypeId) string {
	var sb strings.Builder
	sprintInto(&sb, in, id, maxPrintDepth)
	return sb.String()
}

// Sprint renders through the global interner.
func (in *Interner) Sprint(id TypeId) string { return Sprint(in, id) }

// Sprint renders through the scope, resolving local handles.
func (s *Scoped) Sprint(id TypeId) string { return Sprint(s, id) }

func sprintInto(sb *strings.Builder, in Interning, id TypeId, depth int) {
	if depth <= 0 {
		sb.WriteString("...")
		return
	}
	key := in.Lookup(id)
	switch k := key.(type) {
	case *IntrinsicKey:
		sb.WriteString(k.Kind.String())
	case *LiteralKey:
		sb.WriteString(k.Value.String())
	case *ObjectKey:
		sprintObject(sb, in, k, depth)
	case *FunctionKey:
		if k.IsConstructor {
			sb.WriteString("new ")
		}
		sprintSignature(sb, in, &k.Sig, depth, true)
	case *ArrayKey:
		if k.Readonly {
			sb.WriteString("readonly ")
		}
		sprintAtom(sb, in, k.Elem, depth-1)
		sb.WriteString("[]")
	case *TupleKey:
		if k.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteByte('[')
		for i, e := range k.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			if e.Rest {
				sb.WriteString("...")
			}
			if e.Name != "" {
				sb.WriteString(e.Name)
				if e.Optional {
					sb.WriteByte('?')
				}
				sb.WriteString(": ")
			}
			sprintInto(sb, in, e.Type, depth-1)
			if e.Name == "" && e.Optional {
				sb.WriteByte('?')
			}
		}
		sb.WriteByte(']')
	case *UnionKey:
		for i, m := range k.Members {
			if i > 0 {
				sb.WriteString(" | ")
			}
			sprintAtom(sb, in, m, depth-1)
		}
	case *IntersectionKey:
		for i, m := range k.Members {
			if i > 0 {
				sb.WriteString(" & ")
			}
			sprintAtom(sb, in, m, depth-1)
		}
	case *RefKey:
		fmt.Fprintf(sb, "#%d", uint32(k.Def))
	case *ApplicationKey:
		sprintInto(sb, in, k.Base, depth-1)
		sb.WriteByte('<')
		for i, a := range k.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sprintInto(sb, in, a, depth-1)
		}
		sb.WriteByte('>')
	case *ConditionalKey:
		sprintInto(sb, in, k.Check, depth-1)
		sb.WriteString(" extends ")
		sprintInto(sb, in, k.Extends, depth-1)
		sb.WriteString(" ? ")
		sprintInto(sb, in, k.True, depth-1)
		sb.WriteString(" : ")
		sprintInto(sb, in, k.False, depth-1)
	case *MappedKey:
		sb.WriteString("{ ")
		switch k.ReadonlyMod {
		case ModifierAdd:
			sb.WriteString("readonly ")
		case ModifierRemove:
			sb.WriteString("-readonly ")
		}
		sb.WriteByte('[')
		sb.WriteString(k.ParamName)
		sb.WriteString(" in ")
		sprintInto(sb, in, k.Constraint, depth-1)
		if k.NameTemplate != NoType {
			sb.WriteString(" as ")
			sprintInto(sb, in, k.NameTemplate, depth-1)
		}
		sb.WriteByte(']')
		switch k.OptionalMod {
		case ModifierAdd:
			sb.WriteByte('?')
		case ModifierRemove:
			sb.WriteString("-?")
		}
		sb.WriteString(": ")
		sprintInto(sb, in, k.Template, depth-1)
		sb.WriteString(" }")
	case *TemplateLiteralKey:
		sb.WriteByte('`')
		for _, s := range k.Spans {
			if s.IsText() {
				sb.WriteString(s.Text)
			} else {
				sb.WriteString("${")
				sprintInto(sb, in, s.Type, depth-1)
				sb.WriteByte('}')
			}
		}
		sb.WriteByte('`')
	case *IndexedAccessKey:
		sprintAtom(sb, in, k.Object, depth-1)
		sb.WriteByte('[')
		sprintInto(sb, in, k.Index, depth-1)
		sb.WriteByte(']')
	case *KeyofKey:
		sb.WriteString("keyof ")
		sprintAtom(sb, in, k.Operand, depth-1)
	case *TypeParameterKey:
		sb.WriteString(k.Name)
	case *InferKey:
		sb.WriteString("infer ")
		sb.WriteString(k.Name)
	case *StringIntrinsicKey:
		sb.WriteString(k.Kind.String())
		sb.WriteByte('<')
		sprintInto(sb, in, k.Arg, depth-1)
		sb.WriteByte('>')
	case *EnumKey:
		fmt.Fprintf(sb, "enum#%d", uint32(k.Def))
	case *ModuleNamespaceKey:
		fmt.Fprintf(sb, "typeof import(#%d)", uint32(k.Def))
	default:
		fmt.Fprintf(sb, "<%s>", strconv.FormatUint(uint64(id), 10))
	}
}

// sprintAtom parenthesizes compound operands so union/intersection and
// array suffixes read unambiguously.
func sprintAtom(sb *strings.Builder, in Interning, id TypeId, depth int) {
	switch in.Lookup(id).(type) {
	case *UnionKey, *IntersectionKey, *FunctionKey, *ConditionalKey:
		sb.WriteByte('(')
		sprintInto(sb, in, id, depth)
		sb.WriteByte(')')
	default:
		sprintInto(sb, in, id, depth)
	}
}

func sprintSignature(sb *strings.Builder, in Interning, sig *Signature, depth int, arrow bool) {
	if len(sig.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, tp := range sig.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			if tp.Const {
				sb.WriteString("const ")
			}
			sb.WriteString(tp.Name)
			if tp.Constraint != NoType {
				sb.WriteString(" extends ")
				sprintInto(sb, in, tp.Constraint, depth-1)
			}
		}
		sb.WriteByte('>')
	}
	sb.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.Rest {
			sb.WriteString("...")
		}
		name := p.Name
		if name == "" {
			name = "arg" + strconv.Itoa(i)
		}
		sb.WriteString(name)
		if p.Optional {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sprintInto(sb, in, p.Type, depth-1)
	}
	sb.WriteByte(')')
	if arrow {
		sb.WriteString(" => ")
	} else {
		sb.WriteString(": ")
	}
	if pred := sig.Predicate; pred != nil && pred.Type != NoType {
		if pred.Asserts {
			sb.WriteString("asserts ")
		}
		fmt.Fprintf(sb, "arg%d is ", pred.ParamIndex)
		sprintInto(sb, in, pred.Type, depth-1)
		return
	}
	sprintInto(sb, in, sig.Return, depth-1)
}

func sprintObject(sb *strings.Builder, in Interning, k *ObjectKey, depth int) {
	if len(k.Properties) == 0 && k.StringIndex == nil && k.NumberIndex == nil &&
		len(k.Calls) == 0 && len(k.Constructs) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteString("{ ")
	first := true
	sep := func() {
		if !first {
			sb.WriteString("; ")
		}
		first = false
	}
	for i := range k.Calls {
		sep()
		sprintSignature(sb, in, &k.Calls[i], depth, false)
	}
	for i := range k.Constructs {
		sep()
		sb.WriteString("new ")
		sprintSignature(sb, in, &k.Constructs[i], depth, false)
	}
	for _, p := range k.Properties {
		sep()
		if p.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteString(p.Name)
		if p.Optional {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sprintInto(sb, in, p.Type, depth-1)
	}
	if k.StringIndex != nil {
		sep()
		if k.StringIndex.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteString("[key: string]: ")
		sprintInto(sb, in, k.StringIndex.Value, depth-1)
	}
	if k.NumberIndex != nil {
		sep()
		if k.NumberIndex.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteString("[key: number]: ")
		sprintInto(sb, in, k.NumberIndex.Value, depth-1)
	}
	sb.WriteString(" }")
}
