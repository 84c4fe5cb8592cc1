package protogen

import "strings"

// Expr is a chained value transform. Transforms compose into a source
// fragment string through Apply rather than being modeled as first-class
// higher-order functions, keeping the fragments they build inspectable and
// testable (spec.md design notes, §9).
type Expr interface {
	// exprNode is a private marker restricting Expr to the variants
	// declared in this file — the sealed-interface pattern used
	// throughout protoreflect.Kind-style switches in the teacher.
	exprNode()
}

// Identity is the no-op transform: Apply(Identity{}, recv) == recv.
type Identity struct{}

// MethodApplication renders recv.Name(args...).
type MethodApplication struct {
	Name string
	Args []string
}

// FunctionApplication renders Func(recv, args...), used for lifts like
// toBase(x) that are free functions rather than methods on the value.
type FunctionApplication struct {
	Func Ident
	Args []string
}

// OperatorApplication renders "recv Op Operand" (infix) or "Op recv"
// (prefix, when Operand == "").
type OperatorApplication struct {
	Op      string
	Operand string
}

// Compose chains transforms left to right: Apply(Compose{A,B}, recv) ==
// Apply(B, Apply(A, recv)).
type Compose struct {
	Steps []Expr
}

func (Identity) exprNode()            {}
func (MethodApplication) exprNode()   {}
func (FunctionApplication) exprNode() {}
func (OperatorApplication) exprNode() {}
func (Compose) exprNode()             {}

// Apply folds e over recv, a source fragment for the value being
// transformed, producing the resulting source fragment. qualify is used to
// render any Ident referenced by a FunctionApplication through the
// generated file's import-tracking qualification.
func Apply(e Expr, recv string, qualify func(Ident) string) string {
	switch t := e.(type) {
	case Identity:
		return recv
	case MethodApplication:
		return recv + "." + t.Name + "(" + strings.Join(t.Args, ", ") + ")"
	case FunctionApplication:
		name := t.Func.Name
		if qualify != nil {
			name = qualify(t.Func)
		}
		args := append([]string{recv}, t.Args...)
		return name + "(" + strings.Join(args, ", ") + ")"
	case OperatorApplication:
		if t.Operand == "" {
			return t.Op + recv
		}
		return recv + " " + t.Op + " " + t.Operand
	case Compose:
		out := recv
		for _, step := range t.Steps {
			out = Apply(step, out, qualify)
		}
		return out
	default:
		panic("protogen: unknown Expr variant")
	}
}

// IsIdentity reports whether e is definitely a no-op transform, so callers
// (e.g. the map-entry TypeMapper emitter) can elide a dead .map(identity)
// call. A Compose of only-Identity steps, or an empty Compose, also counts.
func IsIdentity(e Expr) bool {
	switch t := e.(type) {
	case Identity:
		return true
	case Compose:
		for _, step := range t.Steps {
			if !IsIdentity(step) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
