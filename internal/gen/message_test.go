package gen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	descriptorpb "google.golang.org/protobuf/types/descriptorpb"

	"github.com/aranyx/protoc-gen-scala/protogen"
)

// scalarMessageFile builds `message M { int32 x = 1; }` under proto3.
func scalarMessageFile() *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	int32Type := descriptorpb.FieldDescriptorProto_TYPE_INT32
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("m.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("x"), Number: i32Ptr(1), Type: &int32Type, Label: &optLabel},
				},
			},
		},
	}
}

// outOfOrderFieldsFile declares fields 3, 1, 2 in that source order, to
// exercise spec.md §4.F.3's "ascending field-number order... regardless of
// declaration order" invariant.
func outOfOrderFieldsFile() *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	int32Type := descriptorpb.FieldDescriptorProto_TYPE_INT32
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("oo.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("c"), Number: i32Ptr(3), Type: &int32Type, Label: &optLabel},
					{Name: strPtr("a"), Number: i32Ptr(1), Type: &int32Type, Label: &optLabel},
					{Name: strPtr("b"), Number: i32Ptr(2), Type: &int32Type, Label: &optLabel},
				},
			},
		},
	}
}

func TestSortedByNumberIgnoresDeclarationOrder(t *testing.T) {
	p := buildTestPlugin(t, outOfOrderFieldsFile())
	message := p.Files[0].Messages[0]

	var got []int32
	for _, field := range sortedByNumber(message) {
		got = append(got, int32(field.Desc.Number()))
	}
	want := []int32{1, 2, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sortedByNumber() field-number order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenMessageScalarSingleton(t *testing.T) {
	p := buildTestPlugin(t, scalarMessageFile())
	message := p.Files[0].Messages[0]

	g := p.NewGeneratedFile("m.scala", p.Files[0].PackagePath)
	if err := genMessage(g, Options{}, message); err != nil {
		t.Fatalf("genMessage() = %v", err)
	}
	out := string(g.Content())

	for _, want := range []string{
		"final case class M(",
		"x: Int = 0,",
		"def serializedSize: Int = {",
		"def writeTo(out: CodedOutputStream): Unit = {",
		"if (x != 0) n += tagSize(8) + payloadSize(x)",
		"out.writeTag(8)",
		"val defaultInstance: M = M()",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("genMessage output missing %q\n---\n%s", want, out)
		}
	}
}

// repeatedCustomTypeMessageFile builds `message M { repeated int64 xs = 1; }`,
// with xs given a non-identity CustomType by the test below (spec.md §9:
// a custom-type lift must run before any size computation, including for a
// repeated non-packed field — the packed and write paths already did this;
// this fixture exercises the one that didn't).
func repeatedCustomTypeMessageFile() *descriptorpb.FileDescriptorProto {
	syntax := "proto2" // non-packed: proto2 repeated fields default to unpacked.
	repLabel := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	int64Type := descriptorpb.FieldDescriptorProto_TYPE_INT64
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("ct.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("xs"), Number: i32Ptr(1), Type: &int64Type, Label: &repLabel},
				},
			},
		},
	}
}

func TestGenMessageRepeatedCustomTypeSizeMatchesWrite(t *testing.T) {
	p := buildTestPlugin(t, repeatedCustomTypeMessageFile())
	message := p.Files[0].Messages[0]
	field := message.Fields[0]
	field.CustomType = &protogen.CustomType{
		Base:     "Long",
		Custom:   "Duration",
		ToBase:   protogen.MethodApplication{Name: "toMillis"},
		ToCustom: protogen.FunctionApplication{Func: protogen.Ident{Name: "Duration.ofMillis"}},
	}

	g := p.NewGeneratedFile("ct.scala", p.Files[0].PackagePath)
	if err := genMessage(g, Options{}, message); err != nil {
		t.Fatalf("genMessage() = %v", err)
	}
	out := string(g.Content())

	// Both the size and write paths for this repeated non-packed field must
	// lift the same way through the custom-type's ToBase transform, or the
	// emitted serializedSize disagrees with what writeTo actually encodes.
	if !strings.Contains(out, "n += xs.map(v => tagSize(8) + payloadSize(v.toMillis())).sum") {
		t.Errorf("genMessage serializedSize missing toBase-lifted repeated element size:\n%s", out)
	}
	if !strings.Contains(out, "writeTag(8)") || !strings.Contains(out, "v.toMillis()") {
		t.Errorf("genMessage writeTo missing toBase-lifted repeated element write:\n%s", out)
	}
}

func TestGenMessageFieldReflectionIsDescriptorKeyed(t *testing.T) {
	p := buildTestPlugin(t, scalarMessageFile())
	message := p.Files[0].Messages[0]

	g := p.NewGeneratedFile("m.scala", p.Files[0].PackagePath)
	if err := genMessage(g, Options{}, message); err != nil {
		t.Fatalf("genMessage() = %v", err)
	}
	out := string(g.Content())

	// getField/fromFieldsMap/toFieldsMap dispatch off a host-runtime
	// FieldDescriptor, not a bare field number (spec.md §4.F.5/§4.F.6): a
	// reflection-protocol caller only ever holds a descriptor, never a
	// raw number, and toFieldsMap is the missing counterpart the §8
	// round-trip property `fromFieldsMap(toFieldsMap(v)) == v` presupposes.
	for _, want := range []string{
		"def descriptorForType: Descriptor = ",
		"def getField(descriptor: FieldDescriptor): Any = descriptor.getNumber match {",
		"def toFieldsMap: Map[FieldDescriptor, Any] = {",
		"def fromFieldsMap(fieldsByDescriptor: Map[FieldDescriptor, Any]): M = {",
		"val fields: Map[Int, Any] = fieldsByDescriptor.map { case (d, v) => d.getNumber -> v }",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("genMessage output missing %q\n---\n%s", want, out)
		}
	}
	if strings.Contains(out, "fieldNumber: Int") {
		t.Errorf("genMessage reflection API must not be keyed by a bare field number:\n%s", out)
	}
}

// mapMessageFile builds `message M { map<string, int32> m = 1; }`.
func mapMessageFile() *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repLabel := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	stringType := descriptorpb.FieldDescriptorProto_TYPE_STRING
	int32Type := descriptorpb.FieldDescriptorProto_TYPE_INT32
	msgType := descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	entryName := ".test.pkg.M.MEntry"
	trueVal := true
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("mm.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("m"), Number: i32Ptr(1), Type: &msgType, TypeName: strPtr(entryName), Label: &repLabel},
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{
						Name: strPtr("MEntry"),
						Field: []*descriptorpb.FieldDescriptorProto{
							{Name: strPtr("key"), Number: i32Ptr(1), Type: &stringType, Label: &optLabel},
							{Name: strPtr("value"), Number: i32Ptr(2), Type: &int32Type, Label: &optLabel},
						},
						Options: &descriptorpb.MessageOptions{MapEntry: &trueVal},
					},
				},
			},
		},
	}
}

func TestGenMessageMapField(t *testing.T) {
	p := buildTestPlugin(t, mapMessageFile())
	message := p.Files[0].Messages[0]

	g := p.NewGeneratedFile("mm.scala", p.Files[0].PackagePath)
	if err := genMessage(g, Options{}, message); err != nil {
		t.Fatalf("genMessage() = %v", err)
	}
	out := string(g.Content())

	if !strings.Contains(out, "m: Map[String, Int] = Map.empty,") {
		t.Errorf("genMessage output missing map field declaration:\n%s", out)
	}
	if !strings.Contains(out, "object M_MEntryTypeMapper extends TypeMapper[") {
		t.Errorf("genMessage output missing map-entry TypeMapper:\n%s", out)
	}
}
