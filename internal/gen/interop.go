package gen

import "github.com/aranyx/protoc-gen-scala/protogen"

// genInteropToJava and genInteropFromJava emit the optional interop shims
// of spec.md §4.F.8, active only when the java_conversions parameter flag
// is set (spec.md §6). They delegate to the host-runtime's builder API
// field by field; for proto3 enums the interop goes through the numeric
// value (setXValue) to preserve unknown values, while proto2 goes through
// the typed enum, exactly as spec.md prescribes.
func genInteropToJava(g *protogen.GeneratedFile, message *protogen.Message) {
	javaName := "Java" + message.GoIdent.Name
	g.P("def toJavaProto: ", javaName, " = {")
	g.Indent()
	g.P("val b = ", javaName, ".newBuilder()")
	for _, field := range message.Fields {
		if field.IsInOneof() {
			continue
		}
		genFieldToJava(g, field)
	}
	for _, oneof := range message.Oneofs {
		genOneofToJava(g, oneof)
	}
	g.P("b.build()")
	g.Dedent()
	g.P("}")
}

func genFieldToJava(g *protogen.GeneratedFile, field *protogen.Field) {
	acc := field.AccessorName
	setter := "set" + field.GoName
	switch {
	case field.IsMap():
		g.P("b.putAll", field.GoName, "(", acc, ".map { case (k, v) => (k, ", toJavaElemExpr(field, "v"), ") }.asJava)")
	case field.IsRepeated():
		g.P(acc, ".foreach(v => b.add", field.GoName, "(", toJavaElemExpr(field, "v"), "))")
	case field.IsEnum() && isProto3(field):
		if field.SupportsPresence() {
			g.P(acc, ".foreach(v => b.", setter, "Value(v.value))")
		} else {
			g.P("b.", setter, "Value(", acc, ".value)")
		}
	case field.SupportsPresence():
		g.P(acc, ".foreach(v => b.", setter, "(", toJavaElemExpr(field, "v"), "))")
	default:
		g.P("b.", setter, "(", toJavaElemExpr(field, acc), ")")
	}
}

func genOneofToJava(g *protogen.GeneratedFile, oneof *protogen.Oneof) {
	sumName := oneof.ParentMessage.GoIdent.Name + "_" + oneof.GoName
	g.P(oneof.GoName, " match {")
	g.Indent()
	for _, field := range oneof.Fields {
		g.P("case ", sumName, ".", field.GoName, "(v) => b.set", field.GoName, "(", toJavaElemExpr(field, "v"), ")")
	}
	g.P("case _ =>")
	g.Dedent()
	g.P("}")
}

func toJavaElemExpr(field *protogen.Field, expr string) string {
	if field.IsMessage() {
		return "(" + expr + ").toJavaProto"
	}
	if field.IsEnum() && !isProto3(field) {
		return "Java" + field.EnumType.GoIdent.Name + ".forNumber((" + expr + ").value)"
	}
	if field.IsEnum() {
		return "(" + expr + ").value"
	}
	return applyToBase(field, expr)
}

func genInteropFromJava(g *protogen.GeneratedFile, message *protogen.Message, name string) {
	javaName := "Java" + name
	g.P("def fromJavaProto(j: ", javaName, "): ", name, " = {")
	g.Indent()
	g.P("var m = ", name, ".defaultInstance")
	for _, field := range message.Fields {
		if field.IsInOneof() {
			continue
		}
		genFieldFromJava(g, field)
	}
	for _, oneof := range message.Oneofs {
		genOneofFromJava(g, oneof)
	}
	g.P("m")
	g.Dedent()
	g.P("}")
}

func genFieldFromJava(g *protogen.GeneratedFile, field *protogen.Field) {
	acc, getter := field.AccessorName, "get"+field.GoName
	switch {
	case field.IsMap():
		g.P("m = m.copy(", acc, " = j.get", field.GoName, "Map.asScala.map { case (k, v) => (k, ", fromJavaElemExpr(field, "v"), ") }.toMap)")
	case field.IsRepeated():
		g.P("m = m.copy(", acc, " = j.", getter, "List.asScala.map(v => ", fromJavaElemExpr(field, "v"), ").toSeq)")
	case field.IsEnum() && isProto3(field):
		g.P("m = m.copy(", acc, " = ", field.EnumType.GoIdent.Name, ".fromValue(j.get", field.GoName, "Value))")
	case field.SupportsPresence():
		g.P("m = m.copy(", acc, " = if (j.has", field.GoName, "()) Some(", fromJavaElemExpr(field, "j."+getter+"()"), ") else None)")
	default:
		g.P("m = m.copy(", acc, " = ", fromJavaElemExpr(field, "j."+getter+"()"), ")")
	}
}

func genOneofFromJava(g *protogen.GeneratedFile, oneof *protogen.Oneof) {
	sumName := oneof.ParentMessage.GoIdent.Name + "_" + oneof.GoName
	g.P("j.get", oneof.GoName, "Case.name match {")
	g.Indent()
	for _, field := range oneof.Fields {
		g.P(`case "`, field.Desc.Name(), `" => m = m.copy(`, oneof.GoName, " = ", sumName, ".", field.GoName, "(", fromJavaElemExpr(field, "j.get"+field.GoName+"()"), "))")
	}
	g.P("case _ =>")
	g.Dedent()
	g.P("}")
}

func fromJavaElemExpr(field *protogen.Field, expr string) string {
	if field.IsMessage() {
		return field.MessageType.GoIdent.Name + ".fromJavaProto(" + expr + ")"
	}
	if field.IsEnum() {
		return field.EnumType.GoIdent.Name + ".fromValue((" + expr + ").getNumber)"
	}
	return liftToCustom(field, expr)
}

// isProto3 reports whether field's enclosing file uses proto3 syntax,
// determining whether enum interop goes through the numeric *Value
// accessor (proto3, to preserve unknown values) or the typed enum
// (proto2) per spec.md §4.F.8.
func isProto3(field *protogen.Field) bool {
	return field.Desc.ParentFile().Syntax().String() == "proto3"
}
