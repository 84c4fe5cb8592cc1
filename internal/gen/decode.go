package gen

import (
	"github.com/aranyx/protoc-gen-scala/protogen"
)

// genMergeFrom emits the decode loop (component F.4, spec.md §4.F.4): read
// tags until end-of-stream, dispatching on field number, merging
// message-typed fields on top of any existing value, appending to mutable
// builders for repeated fields, and retaining unknown tags in
// unknownFields rather than discarding them outright — this is what lets
// extension.go's get/set pair (component H) recover extension values a
// message's own descriptor knows nothing about (spec.md §4.H "including
// unknown-field decoders").
//
// A field that is packable accepts its alternate encoding regardless of
// how it was declared (spec.md §4.F.4 "also accepts its alternate
// encoding"): the non-packed case always additionally handles the
// length-delimited form, and vice versa.
func genMergeFrom(g *protogen.GeneratedFile, message *protogen.Message, name string) {
	g.P("def mergeFrom(in: CodedInputStream, base: ", name, " = ", name, ".defaultInstance): ", name, " = {")
	g.Indent()
	g.P("var m = base")
	g.P("var __unknownFields = base.unknownFields")
	for _, field := range message.Fields {
		if field.IsRepeated() && !field.IsMap() {
			g.P("val __", field.AccessorName, " = scala.collection.mutable.ArrayBuffer.empty[", protogen.ElementType(field), "]")
			g.P("__", field.AccessorName, " ++= m.", field.AccessorName)
		}
	}
	g.P("var done = false")
	g.P("while (!done) {")
	g.Indent()
	g.P("val tag = in.readTag()")
	g.P("if (tag == 0) {")
	g.Indent()
	g.P("done = true")
	g.Dedent()
	g.P("} else {")
	g.Indent()
	g.P("val fieldNumber = tag >>> 3")
	g.P("val wireType = tag & 0x7")
	g.P("fieldNumber match {")
	g.Indent()
	for _, field := range message.Fields {
		if field.IsInOneof() {
			continue
		}
		genFieldDecodeCase(g, field)
	}
	for _, oneof := range message.Oneofs {
		for _, field := range oneof.Fields {
			genOneofFieldDecodeCase(g, oneof, field)
		}
	}
	g.P("case n => __unknownFields = __unknownFields.addField(n, wireType, in)")
	g.Dedent()
	g.P("}")
	g.Dedent()
	g.P("}")
	g.Dedent()
	g.P("}")
	for _, field := range message.Fields {
		if field.IsRepeated() && !field.IsMap() {
			g.P("m = m.copy(", field.AccessorName, " = __", field.AccessorName, ".toSeq)")
		}
	}
	g.P("m.copy(unknownFields = __unknownFields)")
	g.Dedent()
	g.P("}")
}

func genFieldDecodeCase(g *protogen.GeneratedFile, field *protogen.Field) {
	acc := field.AccessorName
	readExpr := readBaseValueExpr(field)
	lifted := liftToCustom(field, readExpr)

	switch {
	case field.IsMap():
		g.P("case ", field.Desc.Number(), " =>")
		g.Indent()
		g.P("val (k, v) = readMapEntry[", protogen.ElementType(mapKeyFieldOf(field)), ", ", protogen.ElementType(mapValueFieldOf(field)), "](in)")
		g.P("m = m.copy(", acc, " = m.", acc, " + (k -> v))")
		g.Dedent()
	case field.IsRepeated():
		g.P("case ", field.Desc.Number(), " =>")
		g.Indent()
		g.P("if (wireType == 2 && ", boolLit(packable(field)), ") {")
		g.Indent()
		g.P("val limit = in.pushLengthLimit()")
		g.P("while (in.bytesUntilLimit() > 0) { __", acc, " += ", lifted, " }")
		g.P("in.popLimit(limit)")
		g.Dedent()
		g.P("} else { __", acc, " += ", lifted, " }")
		g.Dedent()
	case field.IsMessage():
		g.P("case ", field.Desc.Number(), " =>")
		g.Indent()
		g.P("val existing = m.", acc, "OrDefault")
		g.P("m = m.copy(", acc, " = Some(", field.MessageType.GoIdent.Name, ".mergeFrom(in, existing)))")
		g.Dedent()
	default:
		g.P("case ", field.Desc.Number(), " => m = m.copy(", acc, " = ", wrapForContainer(field, lifted), ")")
	}
}

func genOneofFieldDecodeCase(g *protogen.GeneratedFile, oneof *protogen.Oneof, field *protogen.Field) {
	sumName := oneof.ParentMessage.GoIdent.Name + "_" + oneof.GoName
	if field.IsMessage() {
		g.P("case ", field.Desc.Number(), " =>")
		g.Indent()
		g.P("val existing = m.", oneof.GoName, " match { case ", sumName, ".", field.GoName, "(v) => v; case _ => ", field.MessageType.GoIdent.Name, ".defaultInstance }")
		g.P("m = m.copy(", oneof.GoName, " = ", sumName, ".", field.GoName, "(", field.MessageType.GoIdent.Name, ".mergeFrom(in, existing)))")
		g.Dedent()
		return
	}
	lifted := liftToCustom(field, readBaseValueExpr(field))
	g.P("case ", field.Desc.Number(), " => m = m.copy(", oneof.GoName, " = ", sumName, ".", field.GoName, "(", lifted, "))")
}

func readBaseValueExpr(field *protogen.Field) string {
	if field.IsEnum() {
		return field.EnumType.GoIdent.Name + ".fromValue(in.readEnumNoTag())"
	}
	if field.IsMessage() {
		return field.MessageType.GoIdent.Name + ".mergeFrom(in, " + field.MessageType.GoIdent.Name + ".defaultInstance)"
	}
	return "in.read" + scalarWriteSuffix(field) + "NoTag()"
}

func liftToCustom(field *protogen.Field, expr string) string {
	if field.CustomType != nil && !field.CustomType.IsIdentity() {
		return protogen.Apply(field.CustomType.ToCustom, expr, nil)
	}
	return expr
}

func packable(field *protogen.Field) bool {
	switch field.Desc.Kind().String() {
	case "string", "bytes", "message", "group":
		return false
	default:
		return true
	}
}

func boolLit(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func mapKeyFieldOf(field *protogen.Field) *protogen.Field   { return field.MessageType.Fields[0] }
func mapValueFieldOf(field *protogen.Field) *protogen.Field { return field.MessageType.Fields[1] }
