package gen

import (
	"strconv"

	"github.com/aranyx/protoc-gen-scala/protogen"
)

// genEnum emits the sealed sum type and companion for enum (component D,
// spec.md §4.D).
//
// Invariants upheld here: fromValue(v).value == v for all v, and
// fromValue(v).isUnrecognized iff v was not declared. enum_test.go checks
// the emitted text of the decode switch and the predicates; the generated
// Scala is not compiled or run by the tests.
func genEnum(g *protogen.GeneratedFile, enum *protogen.Enum) {
	name := enum.GoIdent.Name

	if g.PrintLeadingComments(enum.Location) {
		// leading proto comment printed as-is immediately above the type
	}
	g.P("sealed trait ", name, " {")
	g.Indent()
	g.P("def value: Int")
	g.P("def index: Int")
	g.P("def name: String")
	for _, v := range enum.Values {
		g.P("def is", protogen.CamelCase(string(v.Desc.Name())), ": Boolean = false")
	}
	g.P("def isUnrecognized: Boolean = false")
	g.Dedent()
	g.P("}")
	g.P()

	// First-occurrence-only dedup: duplicates (aliases) still get a case
	// object and a predicate, but only the first declared name per number
	// participates in the fromValue decode switch (spec.md §3 EnumType).
	firstByNumber := map[int32]*protogen.EnumValue{}
	var decodeOrder []*protogen.EnumValue
	for _, v := range enum.Values {
		n := int32(v.Desc.Number())
		if _, ok := firstByNumber[n]; !ok {
			firstByNumber[n] = v
			decodeOrder = append(decodeOrder, v)
		}
	}

	for i, v := range enum.Values {
		caseName := name + "_" + string(v.Desc.Name())
		g.P("case object ", caseName, " extends ", name, " {")
		g.Indent()
		g.P("override def value: Int = ", v.Desc.Number())
		g.P("override def index: Int = ", i)
		g.P("override def name: String = ", strconv.Quote(string(v.Desc.Name())))
		g.P("override def is", protogen.CamelCase(string(v.Desc.Name())), ": Boolean = true")
		g.Dedent()
		g.P("}")
		g.P()
	}

	g.P("final case class ", name, "Unrecognized(value: Int) extends ", name, " {")
	g.Indent()
	g.P("override def index: Int = -1")
	g.P(`override def name: String = "UNRECOGNIZED"`)
	g.P("override def isUnrecognized: Boolean = true")
	g.Dedent()
	g.P("}")
	g.P()

	g.P("object ", name, " {")
	g.Indent()
	g.P("val values: Seq[", name, "] = Seq(")
	g.Indent()
	for _, v := range enum.Values {
		g.P(name, "_", v.Desc.Name(), ",")
	}
	g.Dedent()
	g.P(")")
	g.P()
	g.P("def fromValue(v: Int): ", name, " = v match {")
	g.Indent()
	for _, v := range decodeOrder {
		g.P("case ", v.Desc.Number(), " => ", name, "_", v.Desc.Name())
	}
	g.P("case _ => ", name, "Unrecognized(v)")
	g.Dedent()
	g.P("}")
	g.P()
	g.P("def descriptor = ", enum.GoIdent.Name, "Descriptor")
	g.Dedent()
	g.P("}")
	g.P()
}
