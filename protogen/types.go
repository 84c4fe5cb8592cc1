package protogen

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// CustomType is a user-declared pair of functions lifting a protobuf-native
// type to and from a custom target-language type (spec.md Glossary "Type
// mapper"; spec.md §3 Field "custom-type mapping").
type CustomType struct {
	// Base is the uncustomized Scala type name this field would otherwise
	// have (e.g. "String", "Long").
	Base string
	// Custom is the user-declared replacement type.
	Custom string
	// ToBase lifts a Custom value to a Base value, applied before writing
	// and before any size computation (spec.md §9 open question,
	// resolved in DESIGN.md: toBase always precedes size computation,
	// including the packed-size fast path).
	ToBase Expr
	// ToCustom lifts a Base value (as read off the wire) to a Custom
	// value, applied after reading.
	ToCustom Expr
}

// IsIdentity reports whether both lifts are no-ops, letting map-entry
// TypeMapper emission elide a dead .map(identity) call (spec.md §9).
func (c *CustomType) IsIdentity() bool {
	if c == nil {
		return true
	}
	return IsIdentity(c.ToBase) && IsIdentity(c.ToCustom)
}

// FieldCategory tags the dispatch-relevant shape of a field, expressed as
// the tagged-variant dispatch spec.md's design notes call for ("Scalar |
// Message | Enum | Map | Oneof"), rather than a class hierarchy over
// descriptors.
type FieldCategory int

const (
	CategoryScalar FieldCategory = iota
	CategoryEnum
	CategoryMessage
	CategoryMap
	CategoryGroup
)

// Category returns the dispatch-relevant category of field. A map field's
// Category is CategoryMap even though its underlying descriptor is a
// repeated message of a synthesized MapEntry (spec.md §3 invariant).
func (field *Field) Category() FieldCategory {
	if field.Desc.IsMap() {
		return CategoryMap
	}
	switch field.Desc.Kind() {
	case protoreflect.EnumKind:
		return CategoryEnum
	case protoreflect.MessageKind:
		return CategoryMessage
	case protoreflect.GroupKind:
		return CategoryGroup
	default:
		return CategoryScalar
	}
}

// IsRepeated, IsMap, IsPacked, IsMessage, IsEnum, IsInOneof and
// SupportsPresence mirror spec.md §3 Field's derived flags.
func (field *Field) IsRepeated() bool { return field.Desc.IsList() }
func (field *Field) IsMap() bool      { return field.Desc.IsMap() }
func (field *Field) IsPacked() bool   { return field.Desc.IsPacked() }
func (field *Field) IsMessage() bool  { return field.Category() == CategoryMessage }
func (field *Field) IsEnum() bool     { return field.Category() == CategoryEnum }
func (field *Field) IsInOneof() bool  { return field.OneofType != nil }
func (field *Field) IsRequired() bool {
	return field.Desc.Cardinality() == protoreflect.Required
}
func (field *Field) IsOptional() bool {
	return field.Desc.HasOptionalKeyword()
}

// SupportsPresence is true iff proto2 optional, any oneof member, or a
// message field (spec.md Glossary "Presence").
func (field *Field) SupportsPresence() bool {
	return field.Desc.HasPresence()
}

// IsSingular is true iff not repeated and not presence-tracked (spec.md
// §3 invariant).
func (field *Field) IsSingular() bool {
	return !field.IsRepeated() && !field.SupportsPresence()
}

// singleElementType returns the Scala type name for one element of field,
// ignoring container shape (Option/Seq/Map) and custom-type mapping — the
// "T" in spec.md §4.A's "single element type name (the T)".
func singleElementType(field *Field) string {
	switch field.Category() {
	case CategoryMap:
		key := singleElementType(mapKeyField(field))
		val := singleElementType(mapValueField(field))
		return "(" + key + ", " + val + ")"
	case CategoryEnum:
		return field.EnumType.GoIdent.Name
	case CategoryMessage, CategoryGroup:
		return field.MessageType.GoIdent.Name
	default:
		return scalarTypeName(field.Desc.Kind())
	}
}

func scalarTypeName(kind protoreflect.Kind) string {
	switch kind {
	case protoreflect.BoolKind:
		return "Boolean"
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return "Int"
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return "Int" // unsigned 32-bit values are represented as Int, per spec's wire-compat-first stance
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return "Long"
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return "Long"
	case protoreflect.FloatKind:
		return "Float"
	case protoreflect.DoubleKind:
		return "Double"
	case protoreflect.StringKind:
		return "String"
	case protoreflect.BytesKind:
		return "ByteString"
	default:
		return "Unit"
	}
}

// BaseType returns the single-element type a field has before any custom
// mapping is applied.
func BaseType(field *Field) string {
	return singleElementType(field)
}

// ElementType returns the single-element type a field has after a custom
// mapping, if any, is applied.
func ElementType(field *Field) string {
	if field.CustomType != nil {
		return field.CustomType.Custom
	}
	return singleElementType(field)
}

// ContainerType returns the full container type: T, Option<T>, Seq<T>, or
// Map<K,V>, determined by presence/repeated/map status (spec.md §4.A).
func ContainerType(field *Field) string {
	t := ElementType(field)
	switch {
	case field.IsMap():
		key := ElementType(mapKeyField(field))
		val := ElementType(mapValueField(field))
		return "Map[" + key + ", " + val + "]"
	case field.IsRepeated():
		return "Seq[" + t + "]"
	case field.SupportsPresence() && !field.IsMessage():
		return "Option[" + t + "]"
	case field.IsMessage() && !field.IsRequired():
		return "Option[" + t + "]"
	default:
		return t
	}
}

// mapKeyField and mapValueField recover the synthesized key (field number
// 1) and value (field number 2) fields of a map field's MapEntry message
// (spec.md §3 invariant).
func mapKeyField(field *Field) *Field {
	return field.MessageType.Fields[0]
}
func mapValueField(field *Field) *Field {
	return field.MessageType.Fields[1]
}

// WireType returns the protobuf wire type tag a field's values are
// encoded with (spec.md Glossary "Tag").
func WireType(field *Field) int {
	switch field.Desc.Kind() {
	case protoreflect.Int32Kind, protoreflect.Int64Kind, protoreflect.Uint32Kind,
		protoreflect.Uint64Kind, protoreflect.Sint32Kind, protoreflect.Sint64Kind,
		protoreflect.BoolKind, protoreflect.EnumKind:
		return 0 // varint
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return 1 // fixed64
	case protoreflect.StringKind, protoreflect.BytesKind, protoreflect.MessageKind:
		return 2 // length-delimited
	case protoreflect.GroupKind:
		return 3 // start group (unsupported, spec.md §7 channel 2)
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return 5 // fixed32
	default:
		return 2
	}
}

// DefaultExpr returns the default-value expression D(f) used both when
// materialising the default instance and when deciding whether to omit a
// singular field during serialization (spec.md §4.A "Defaults").
//
// D(f) respects the proto2 default option; in proto3 it is the zero/empty
// of the type. For message fields D(f) is the enclosing message's default
// instance, referenced by a companion lookup by field number rather than a
// direct value reference, so cyclic message graphs never need to
// forward-reference each other at the value level (spec.md §9 "Descriptor
// graph").
func DefaultExpr(field *Field) string {
	base := defaultBaseExpr(field)
	if field.CustomType != nil && !field.CustomType.IsIdentity() {
		return Apply(field.CustomType.ToCustom, base, nil)
	}
	return base
}

func defaultBaseExpr(field *Field) string {
	switch field.Category() {
	case CategoryMap:
		return "Map.empty"
	case CategoryEnum:
		return defaultEnumExpr(field)
	case CategoryMessage, CategoryGroup:
		return field.MessageType.GoIdent.Name + ".defaultInstance"
	}
	if field.IsRepeated() {
		return "Seq.empty"
	}
	if field.Desc.HasDefault() {
		return scalarDefaultLiteral(field.Desc)
	}
	return scalarZeroLiteral(field.Desc.Kind())
}

func defaultEnumExpr(field *Field) string {
	if field.Desc.HasDefault() {
		return field.EnumType.GoIdent.Name + ".fromValue(" + strconv.Itoa(int(field.Desc.Default().Enum())) + ")"
	}
	return field.EnumType.GoIdent.Name + ".fromValue(0)"
}

func scalarDefaultLiteral(desc protoreflect.FieldDescriptor) string {
	v := desc.Default()
	switch desc.Kind() {
	case protoreflect.BoolKind:
		return strconv.FormatBool(v.Bool())
	case protoreflect.StringKind:
		return strconv.Quote(v.String())
	case protoreflect.BytesKind:
		return fmt.Sprintf("ByteString.copyFrom(%q.getBytes)", string(v.Bytes()))
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	default:
		return strconv.FormatInt(v.Int(), 10)
	}
}

func scalarZeroLiteral(kind protoreflect.Kind) string {
	switch kind {
	case protoreflect.BoolKind:
		return "false"
	case protoreflect.StringKind:
		return `""`
	case protoreflect.BytesKind:
		return "ByteString.EMPTY"
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return "0.0"
	default:
		return "0"
	}
}
