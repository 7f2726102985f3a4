package solver

import (
	"fmt"
	"strings"

	"tsolve/pkg/types"
)

// Failure describes one incompatibility found by the Judge, as a chain
// of nested reasons from the outer mismatch down to the specific
// sub-term. The checker renders it; the solver never formats
// diagnostics itself beyond Render.
type Failure struct {
	Source types.TypeId
	Target types.TypeId

	// Property is set when the mismatch is at a named member.
	Property string
	// ParamIndex is the mismatched parameter position, or -1.
	ParamIndex int
	// ElementIndex is the mismatched tuple/union member position, or -1.
	ElementIndex int
	// Reason is a short human phrase ("missing property", "excess
	// property", "parameter count").
	Reason string

	Nested *Failure
}

func newFailure(src, tgt types.TypeId, reason string) *Failure {
	return &Failure{Source: src, Target: tgt, Reason: reason, ParamIndex: -1, ElementIndex: -1}
}

func (f *Failure) withProperty(name string) *Failure {
	f.Property = name
	return f
}

func (f *Failure) withParam(i int) *Failure {
	f.ParamIndex = i
	return f
}

func (f *Failure) withElement(i int) *Failure {
	f.ElementIndex = i
	return f
}

func (f *Failure) because(nested *Failure) *Failure {
	f.Nested = nested
	return f
}

// Render formats the failure chain, one reason per line, innermost
// last, resolving handles through the interner.
func (f *Failure) Render(in types.Interning) string {
	var sb strings.Builder
	indent := ""
	for cur := f; cur != nil; cur = cur.Nested {
		sb.WriteString(indent)
		switch {
		case cur.Property != "":
			fmt.Fprintf(&sb, "property %q: ", cur.Property)
		case cur.ParamIndex >= 0:
			fmt.Fprintf(&sb, "parameter %d: ", cur.ParamIndex)
		case cur.ElementIndex >= 0:
			fmt.Fprintf(&sb, "element %d: ", cur.ElementIndex)
		}
		fmt.Fprintf(&sb, "%s is not assignable to %s",
			types.Sprint(in, cur.Source), types.Sprint(in, cur.Target))
		if cur.Reason != "" {
			fmt.Fprintf(&sb, " (%s)", cur.Reason)
		}
		if cur.Nested != nil {
			sb.WriteByte('\n')
			indent += "  "
		}
	}
	return sb.String()
}
