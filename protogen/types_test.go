package protogen

import (
	"strings"
	"testing"

	descriptorpb "google.golang.org/protobuf/types/descriptorpb"
	pluginpb "google.golang.org/protobuf/types/pluginpb"
)

// buildPlugin constructs a Plugin from a single hand-built
// FileDescriptorProto, mirroring how the teacher's own golden tests build
// fixtures without invoking the protoc binary.
func buildPlugin(t *testing.T, fd *descriptorpb.FileDescriptorProto) *Plugin {
	t.Helper()
	req := &pluginpb.CodeGeneratorRequest{
		ProtoFile:      []*descriptorpb.FileDescriptorProto{fd},
		FileToGenerate: []string{fd.GetName()},
	}
	gen, err := New(req, nil)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return gen
}

func scalarField(name string, number int32, kind descriptorpb.FieldDescriptorProto_Type, label descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   strPtr(name),
		Number: int32Ptr(number),
		Type:   &kind,
		Label:  &label,
	}
}

func strPtr(s string) *string    { return &s }
func int32Ptr(i int32) *int32    { return &i }

func testFile(messages ...*descriptorpb.DescriptorProto) *descriptorpb.FileDescriptorProto {
	syntax := "proto3"
	return &descriptorpb.FileDescriptorProto{
		Name:        strPtr("test.proto"),
		Package:     strPtr("test.pkg"),
		Syntax:      &syntax,
		MessageType: messages,
	}
}

func TestContainerTypeScalarSingular(t *testing.T) {
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	msg := &descriptorpb.DescriptorProto{
		Name: strPtr("M"),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("x", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32, optLabel),
		},
	}
	gen := buildPlugin(t, testFile(msg))
	f := gen.Files[0]
	field := f.Messages[0].Fields[0]

	if got := ContainerType(field); got != "Int" {
		t.Errorf("ContainerType(proto3 singular int32) = %q, want %q", got, "Int")
	}
	if got := DefaultExpr(field); got != "0" {
		t.Errorf("DefaultExpr(proto3 singular int32) = %q, want %q", got, "0")
	}
	if field.IsRepeated() || field.IsMap() || field.SupportsPresence() {
		t.Errorf("unexpected flags on singular proto3 scalar: %+v", field)
	}
}

func TestContainerTypeRepeated(t *testing.T) {
	repLabel := descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	msg := &descriptorpb.DescriptorProto{
		Name: strPtr("M"),
		Field: []*descriptorpb.FieldDescriptorProto{
			scalarField("xs", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32, repLabel),
		},
	}
	gen := buildPlugin(t, testFile(msg))
	field := gen.Files[0].Messages[0].Fields[0]

	if got := ContainerType(field); got != "Seq[Int]" {
		t.Errorf("ContainerType(repeated int32) = %q, want %q", got, "Seq[Int]")
	}
	if !field.IsRepeated() {
		t.Error("IsRepeated() = false, want true")
	}
}

func TestNewRejectsGroupField(t *testing.T) {
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	groupType := descriptorpb.FieldDescriptorProto_TYPE_GROUP
	msg := &descriptorpb.DescriptorProto{
		Name: strPtr("M"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{Name: strPtr("g"), Number: int32Ptr(1), Type: &groupType, TypeName: strPtr(".test.pkg.M.G"), Label: &optLabel},
		},
		NestedType: []*descriptorpb.DescriptorProto{
			{Name: strPtr("G")},
		},
	}
	syntax := "proto2" // GROUP is a proto2-only wire representation.
	fd := &descriptorpb.FileDescriptorProto{
		Name:        strPtr("test.proto"),
		Package:     strPtr("test.pkg"),
		Syntax:      &syntax,
		MessageType: []*descriptorpb.DescriptorProto{msg},
	}
	req := &pluginpb.CodeGeneratorRequest{
		ProtoFile:      []*descriptorpb.FileDescriptorProto{fd},
		FileToGenerate: []string{"test.proto"},
	}
	if _, err := New(req, nil); err == nil {
		t.Error("New() with a GROUP-kind field: want domain error, got nil")
	} else if !strings.Contains(err.Error(), "GROUP") {
		t.Errorf("New() error = %v, want mention of GROUP", err)
	}
}

// TestNewRejectsUnknownParameter exercises spec.md §7 channel 1: an
// unrecognised parameter token is a plain error out of New, which run()
// (protogen.go) turns into a CodeGeneratorResponse.Error rather than a
// fatal process exit.
func TestNewRejectsUnknownParameter(t *testing.T) {
	req := &pluginpb.CodeGeneratorRequest{
		Parameter:      strPtr("not_a_real_flag"),
		ProtoFile:      []*descriptorpb.FileDescriptorProto{testFile()},
		FileToGenerate: []string{"test.proto"},
	}
	_, err := New(req, nil)
	if err == nil {
		t.Fatal("New() with unknown parameter: want error, got nil")
	}
	if !strings.Contains(err.Error(), "not_a_real_flag") {
		t.Errorf("New() error = %v, want mention of the offending token", err)
	}
}

func TestWireType(t *testing.T) {
	optLabel := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	tests := []struct {
		kind descriptorpb.FieldDescriptorProto_Type
		want int
	}{
		{descriptorpb.FieldDescriptorProto_TYPE_INT32, 0},
		{descriptorpb.FieldDescriptorProto_TYPE_FIXED64, 1},
		{descriptorpb.FieldDescriptorProto_TYPE_STRING, 2},
		{descriptorpb.FieldDescriptorProto_TYPE_FIXED32, 5},
	}
	for _, tc := range tests {
		msg := &descriptorpb.DescriptorProto{
			Name:  strPtr("M"),
			Field: []*descriptorpb.FieldDescriptorProto{scalarField("x", 1, tc.kind, optLabel)},
		}
		gen := buildPlugin(t, testFile(msg))
		field := gen.Files[0].Messages[0].Fields[0]
		if got := WireType(field); got != tc.want {
			t.Errorf("WireType(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}
