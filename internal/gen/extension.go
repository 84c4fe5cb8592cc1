package gen

import "github.com/aranyx/protoc-gen-scala/protogen"

// genExtension emits a typed accessor object for a protobuf extension
// field (component H, spec.md §4.H): a getter that decodes the extension
// from a message's unknown-field set, typed as fieldLookupResultType
// shapes it (Option[T] for a singular extension, Seq[T] for a repeated
// one), and a setter that encodes a value back into that set. Both lift
// through any custom-type mapping declared on the extension field.
func genExtension(g *protogen.GeneratedFile, ext *protogen.Extension) {
	extendedName := ext.ExtendedType.GoIdent.Name
	name := ext.GoName
	elem := protogen.ElementType(ext)
	tag := (uint64(ext.Desc.Number()) << 3) | uint64(protogen.WireType(ext))

	g.P("object ", name, "Ext {")
	g.Indent()
	g.P("val fieldNumber: Int = ", ext.Desc.Number())
	g.P()
	g.P("def get(m: ", extendedName, "): ", fieldLookupResultType(ext), " = {")
	g.Indent()
	g.P("m.unknownFields.decodeAs[", elem, "](fieldNumber, ", tag, ") { in => ", liftToCustom(ext, readBaseValueExpr(ext)), " }")
	g.Dedent()
	g.P("}")
	g.P()
	g.P("def set(m: ", extendedName, ", v: ", elem, "): ", extendedName, " =")
	g.P("  m.copy(unknownFields = m.unknownFields.encodeExtension(fieldNumber, ", tag, ", ", applyToBase(ext, "v"), "))")
	g.Dedent()
	g.P("}")
	g.P()
}

// fieldLookupResultType mirrors spec.md §4.F.5's getField result shaping
// for extensions: presence-bearing fields return Option[T], repeated
// fields a Seq[T], everything else a bare T with the field's default.
func fieldLookupResultType(field *protogen.Field) string {
	if field.IsRepeated() {
		return "Seq[" + protogen.ElementType(field) + "]"
	}
	if field.SupportsPresence() {
		return "Option[" + protogen.ElementType(field) + "]"
	}
	return protogen.ElementType(field)
}
