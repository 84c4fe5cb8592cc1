package gen

import (
	"strings"
	"testing"

	descriptorpb "google.golang.org/protobuf/types/descriptorpb"
)

// oneofFile builds `message M { oneof k { int32 a = 1; string b = 2; } }`.
func oneofFile() *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	int32Type := descriptorpb.FieldDescriptorProto_TYPE_INT32
	stringType := descriptorpb.FieldDescriptorProto_TYPE_STRING
	return &descriptorpb.FileDescriptorProto{
		Name:    strPtr("o.proto"),
		Package: strPtr("test.pkg"),
		Syntax:  &syntax,
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: strPtr("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: strPtr("a"), Number: i32Ptr(1), Type: &int32Type, Label: &optLabel, OneofIndex: i32Ptr(0)},
					{Name: strPtr("b"), Number: i32Ptr(2), Type: &stringType, Label: &optLabel, OneofIndex: i32Ptr(0)},
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: strPtr("k")},
				},
			},
		},
	}
}

func TestGenOneofSumType(t *testing.T) {
	p := buildTestPlugin(t, oneofFile())
	message := p.Files[0].Messages[0]
	oneof := message.Oneofs[0]

	g := p.NewGeneratedFile("o.scala", p.Files[0].PackagePath)
	if err := genOneof(g, oneof); err != nil {
		t.Fatalf("genOneof() = %v", err)
	}
	out := string(g.Content())

	for _, want := range []string{
		"sealed trait M_K {",
		"case object Empty extends M_K {",
		"final case class A(value: Int) extends M_K {",
		"final case class B(value: String) extends M_K {",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("genOneof output missing %q\n---\n%s", want, out)
		}
	}
}

// oneofCollisionFile is oneofFile with a nested message "K" added; its
// derived identifier ("M" + "_" + "K", from the dotted full name M.K) is
// exactly the sum-type name genOneof would derive for oneof `k` on message
// `M` (spec.md §4.A naming-collision guard).
func oneofCollisionFile() *descriptorpb.FileDescriptorProto {
	fd := oneofFile()
	m := fd.MessageType[0]
	m.NestedType = append(m.NestedType, &descriptorpb.DescriptorProto{Name: strPtr("K")})
	return fd
}

func TestOneofSumTypeNameCollision(t *testing.T) {
	p := buildTestPlugin(t, oneofCollisionFile())
	message := p.Files[0].Messages[0]
	oneof := message.Oneofs[0]

	if _, err := oneofSumTypeName(oneof); err == nil {
		t.Error("oneofSumTypeName: want error on sum-type/nested-message name collision, got nil")
	}
}
