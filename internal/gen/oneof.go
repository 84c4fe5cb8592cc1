package gen

import (
	"github.com/aranyx/protoc-gen-scala/protogen"
)

// oneofSumTypeName returns the sealed sum-type name for oneof, failing with
// a domain error if it collides with a sibling nested message or enum in
// the same scope (spec.md §4.A naming-collision guard). Grounded on the
// teacher's fieldOneofType collision loop (cmd/protoc-gen-go/internal_gengo/
// oneof.go's fieldOneofType), which instead silently appends underscores —
// spec.md requires failing here instead.
func oneofSumTypeName(oneof *protogen.Oneof) (string, error) {
	name := oneof.ParentMessage.GoIdent.Name + "_" + oneof.GoName
	for _, message := range oneof.ParentMessage.Messages {
		if message.GoIdent.Name == name {
			return "", errorf("", "oneof %q: sum-type name %q collides with nested message %q",
				oneof.Desc.Name(), name, message.Desc.Name())
		}
	}
	for _, enum := range oneof.ParentMessage.Enums {
		if enum.GoIdent.Name == name {
			return "", errorf("", "oneof %q: sum-type name %q collides with nested enum %q",
				oneof.Desc.Name(), name, enum.Desc.Name())
		}
	}
	return name, nil
}

// genOneof emits the sealed sum type for oneof (component E, spec.md
// §4.E): an Empty variant and one CaseName(value: T) variant per member
// field, each exposing number, isX predicates, and an Option-shaped x
// accessor.
func genOneof(g *protogen.GeneratedFile, oneof *protogen.Oneof) error {
	sumName, err := oneofSumTypeName(oneof)
	if err != nil {
		return err
	}

	g.P("sealed trait ", sumName, " {")
	g.Indent()
	g.P("def number: Int")
	for _, field := range oneof.Fields {
		g.P("def is", field.GoName, ": Boolean = false")
		g.P("def ", field.AccessorName, ": Option[", protogen.ElementType(field), "] = None")
	}
	g.Dedent()
	g.P("}")
	g.P("object ", sumName, " {")
	g.Indent()

	g.P("case object Empty extends ", sumName, " {")
	g.Indent()
	g.P("override def number: Int = 0")
	g.Dedent()
	g.P("}")
	g.P()

	for _, field := range oneof.Fields {
		caseName := field.GoName
		elemType := protogen.ElementType(field)
		g.P("final case class ", caseName, "(value: ", elemType, ") extends ", sumName, " {")
		g.Indent()
		g.P("override def number: Int = ", field.Desc.Number())
		g.P("override def is", caseName, ": Boolean = true")
		g.P("override def ", field.AccessorName, ": Option[", elemType, "] = Some(value)")
		g.Dedent()
		g.P("}")
		g.P()
	}

	g.Dedent()
	g.P("}")
	g.P()

	// The enclosing message additionally carries per-member predicates and
	// Option-shaped accessors that read its oneof field, emitted by
	// message.go's genOneofAccessors.
	return nil
}

// genOneofAccessors emits, for each member field of oneof, an isX
// predicate and an x: Option[T] accessor on the enclosing message
// (spec.md §4.E).
func genOneofAccessors(g *protogen.GeneratedFile, message *protogen.Message, oneof *protogen.Oneof, sumName string) {
	fieldName := oneof.GoName
	for _, field := range oneof.Fields {
		g.P("def is", field.GoName, ": Boolean = ", fieldName, ".isInstanceOf[", sumName, ".", field.GoName, "]")
		g.P("def ", field.AccessorName, ": Option[", protogen.ElementType(field), "] = ", fieldName, " match {")
		g.Indent()
		g.P("case ", sumName, ".", field.GoName, "(v) => Some(v)")
		g.P("case _ => None")
		g.Dedent()
		g.P("}")
	}
}
