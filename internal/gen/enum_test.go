package gen

import (
	"strings"
	"testing"

	descriptorpb "google.golang.org/protobuf/types/descriptorpb"
	pluginpb "google.golang.org/protobuf/types/pluginpb"

	"github.com/aranyx/protoc-gen-scala/protogen"
)

func strPtr(s string) *string { return &s }
func i32Ptr(i int32) *int32   { return &i }
func boolPtr(b bool) *bool    { return &b }

func buildTestPlugin(t *testing.T, fd *descriptorpb.FileDescriptorProto) *protogen.Plugin {
	t.Helper()
	req := &pluginpb.CodeGeneratorRequest{
		ProtoFile:      []*descriptorpb.FileDescriptorProto{fd},
		FileToGenerate: []string{fd.GetName()},
	}
	gen, err := protogen.New(req, nil)
	if err != nil {
		t.Fatalf("protogen.New() = %v", err)
	}
	return gen
}

// enumWithAlias builds enum `E { A=0; B=1; C=1; }` — value C aliases B's
// number, exercising spec.md §3's "only the first occurrence participates
// in the decode switch" invariant.
func enumWithAlias() *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("e.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		EnumType: []*descriptorpb.EnumDescriptorProto{
			{
				Name:    strPtr("E"),
				Options: &descriptorpb.EnumOptions{AllowAlias: boolPtr(true)},
				Value: []*descriptorpb.EnumValueDescriptorProto{
					{Name: strPtr("A"), Number: i32Ptr(0)},
					{Name: strPtr("B"), Number: i32Ptr(1)},
					{Name: strPtr("C"), Number: i32Ptr(1)},
				},
			},
		},
	}
}

func TestGenEnumAliasDedup(t *testing.T) {
	p := buildTestPlugin(t, enumWithAlias())
	f := p.Files[0]
	g := p.NewGeneratedFile("e.scala", f.PackagePath)
	genEnum(g, f.Enums[0])

	out := string(g.Content())

	for _, want := range []string{
		"sealed trait E {",
		"case object E_A extends E {",
		"case object E_B extends E {",
		"case object E_C extends E {",
		"final case class EUnrecognized(value: Int) extends E {",
		"def fromValue(v: Int): E = v match {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("genEnum output missing %q\n---\n%s", want, out)
		}
	}

	// Only the first declared value for number 1 (B) participates in the
	// decode switch; C must not get its own case in fromValue.
	decodeSection := out[strings.Index(out, "def fromValue"):]
	if strings.Contains(decodeSection, "case 1 => E_C") {
		t.Errorf("fromValue decode switch must not dispatch an alias to its own case:\n%s", decodeSection)
	}
	if !strings.Contains(decodeSection, "case 1 => E_B") {
		t.Errorf("fromValue decode switch missing first-occurrence case for number 1:\n%s", decodeSection)
	}

	// Every declared value, including aliases, gets its own isX predicate
	// defaulted to false on the trait and overridden to true only on its
	// own case object (spec.md §4.D item 1).
	for _, want := range []string{
		"def isA: Boolean = false",
		"def isB: Boolean = false",
		"def isC: Boolean = false",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("genEnum output missing default predicate %q\n---\n%s", want, out)
		}
	}
	caseB := out[strings.Index(out, "case object E_B"):strings.Index(out, "case object E_C")]
	if !strings.Contains(caseB, "override def isB: Boolean = true") {
		t.Errorf("case object E_B missing isB override:\n%s", caseB)
	}
	if strings.Contains(caseB, "override def isA") || strings.Contains(caseB, "override def isC") {
		t.Errorf("case object E_B must only override its own predicate:\n%s", caseB)
	}
}
