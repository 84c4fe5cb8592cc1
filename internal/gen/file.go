package gen

import (
	"encoding/base64"
	"strconv"
	"strings"

	"google.golang.org/protobuf/proto"
	descriptorpb "google.golang.org/protobuf/types/descriptorpb"

	"github.com/aranyx/protoc-gen-scala/protogen"
)

// maxChunkBytes is the conservative per-string-literal chunk size spec.md
// §4.G calls for ("a conservative 55,000-byte chunk policy is adequate for
// all targets").
const maxChunkBytes = 55000

// genFileDescriptorBootstrap emits a companion object, `<file>Descriptor`
// (named by packageNameOf from the .proto file name), that rebuilds the file's FileDescriptor at run time by decoding an
// embedded base64-chunked copy of the raw, source-info-stripped
// FileDescriptorProto and linking it against its already-built dependency
// descriptors (component G, spec.md §4.G).
func genFileDescriptorBootstrap(g *protogen.GeneratedFile, f *protogen.File) error {
	raw, err := marshalWithoutSourceInfo(f.Proto)
	if err != nil {
		return errorf(f.Desc.Path(), "marshal descriptor: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	descVar := packageNameOf(f.Desc.Path()) + "Descriptor"
	g.P("object ", descVar, " {")
	g.Indent()
	g.P("private val encodedChunks: Array[String] = Array(")
	g.Indent()
	for i := 0; i < len(encoded); i += maxChunkBytes {
		end := i + maxChunkBytes
		if end > len(encoded) {
			end = len(encoded)
		}
		g.P(strconv.Quote(encoded[i:end]), ",")
	}
	g.Dedent()
	g.P(")")
	g.P()
	g.P("lazy val fileDescriptorProto: FileDescriptorProto = {")
	g.Indent()
	g.P("val bytes = java.util.Base64.getDecoder.decode(encodedChunks.mkString)")
	g.P("FileDescriptorProto.parseFrom(bytes)")
	g.Dedent()
	g.P("}")
	g.P()
	g.P("lazy val descriptor: FileDescriptor = FileDescriptor.buildFrom(")
	g.Indent()
	g.P("fileDescriptorProto,")
	g.P("Array(", dependencyDescriptorRefs(f), "),")
	g.Dedent()
	g.P(")")
	g.Dedent()
	g.P("}")
	g.P()
	return nil
}

// marshalWithoutSourceInfo returns the wire-format bytes of p with
// SourceCodeInfo cleared, matching spec.md §4.G's "source-info stripped"
// requirement: leading comments are already reproduced as line comments at
// emission time, so there is no reason to pay for them twice in the embedded
// descriptor.
func marshalWithoutSourceInfo(p *descriptorpb.FileDescriptorProto) ([]byte, error) {
	clone := proto.Clone(p).(*descriptorpb.FileDescriptorProto)
	clone.SourceCodeInfo = nil
	return proto.Marshal(clone)
}

// dependencyDescriptorRefs builds the array literal of already-built
// dependency FileDescriptor references a file's descriptor bootstrap links
// against, in import order.
func dependencyDescriptorRefs(f *protogen.File) string {
	var refs string
	for i := 0; i < f.Desc.Imports().Len(); i++ {
		imp := f.Desc.Imports().Get(i)
		if i > 0 {
			refs += ", "
		}
		refs += packageNameOf(imp.Path()) + "Descriptor.descriptor"
	}
	return refs
}

// descriptorForTypeExpr builds the expression that reaches message's own
// Descriptor off its file's descriptor bootstrap (spec.md §4.G), chaining
// findMessageTypeByName/findNestedTypeByName down message's nesting path —
// the same lookup protobuf-java's own generated code performs to populate
// a message's FieldAccessorTable, reused here by getField/toFieldsMap
// (spec.md §4.F.5/§4.F.6) instead of materializing one statically.
func descriptorForTypeExpr(message *protogen.Message) string {
	full := string(message.Desc.FullName())
	pkg := string(message.Desc.ParentFile().Package())
	rel := full
	if pkg != "" {
		rel = strings.TrimPrefix(full, pkg+".")
	}
	parts := strings.Split(rel, ".")
	fileVar := packageNameOf(string(message.Desc.ParentFile().Path())) + "Descriptor"
	expr := fileVar + ".descriptor.findMessageTypeByName(" + strconv.Quote(parts[0]) + ")"
	for _, p := range parts[1:] {
		expr += ".findNestedTypeByName(" + strconv.Quote(p) + ")"
	}
	return expr
}

// packageNameOf derives, from a .proto file name, the name stem of that
// file's generated descriptor companion: the last path element with its
// last dotted suffix removed. genFileDescriptorBootstrap names a file's own
// companion the same way, so dependency and descriptorForType references
// resolve to it.
func packageNameOf(filename string) string {
	base := filename
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			base = base[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
