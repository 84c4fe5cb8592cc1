package protogen

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// An Ident is a target-language identifier, consisting of a name and the
// Scala package it lives in.
type Ident struct {
	Name        string
	PackagePath PackagePath
}

func (id Ident) String() string { return strconv.Quote(string(id.PackagePath)) + "." + id.Name }

// A PackagePath is the fully qualified Scala package of a generated symbol,
// e.g. "com.example.orders".
type PackagePath string

func (p PackagePath) String() string { return strconv.Quote(string(p)) }

// Ident returns an Ident with s as the Name and p as the PackagePath.
func (p PackagePath) Ident(s string) Ident {
	return Ident{Name: s, PackagePath: p}
}

// A PackageName is the Scala identifier derived from a PackagePath by
// baseName (its last dotted component dropped) and cleanPackageName, e.g.
// "com_example" for "com.example.orders".
type PackageName string

// cleanPackageName converts a string to a valid Scala package component.
func cleanPackageName(name string) PackageName {
	return PackageName(cleanScalaName(name))
}

// scalaKeywords is the fixed set of reserved words in the Scala language.
var scalaKeywords = map[string]bool{
	"abstract": true, "case": true, "catch": true, "class": true,
	"def": true, "do": true, "else": true, "extends": true,
	"false": true, "final": true, "finally": true, "for": true,
	"forSome": true, "if": true, "implicit": true, "import": true,
	"lazy": true, "match": true, "new": true, "null": true,
	"object": true, "override": true, "package": true, "private": true,
	"protected": true, "return": true, "sealed": true, "super": true,
	"this": true, "throw": true, "trait": true, "try": true,
	"true": true, "type": true, "val": true, "var": true,
	"while": true, "with": true, "yield": true,
}

// cleanScalaName converts a string to a valid Scala identifier, mapping any
// byte outside the set of valid characters to '_'.
func cleanScalaName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
	r, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(r) {
		return "_" + s
	}
	return s
}

// baseName returns the last path element of the name, with the last dotted
// suffix removed.
func baseName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

// camelCase converts a proto identifier to UpperCamelCase, matching the
// protoc-gen-go algorithm: an interior underscore followed by a lower-case
// letter is dropped and the letter upper-cased.
func camelCase(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.' && i+1 < len(s) && isASCIILower(s[i+1]):
		case c == '.':
			b = append(b, '_')
		case c == '_' && (i == 0 || s[i-1] == '.'):
			b = append(b, 'X')
		case c == '_' && i+1 < len(s) && isASCIILower(s[i+1]):
		case isASCIIDigit(c):
			b = append(b, c)
		default:
			if isASCIILower(c) {
				c -= 'a' - 'A'
			}
			b = append(b, c)
			for ; i+1 < len(s) && isASCIILower(s[i+1]); i++ {
				b = append(b, s[i+1])
			}
		}
	}
	return string(b)
}

// CamelCase converts a proto identifier to UpperCamelCase. Exported for
// emitters that need to derive a sibling identifier (e.g. an enum value's
// "isX" predicate name) from a raw proto name without going through a
// Field/Message/Enum wrapper.
func CamelCase(s string) string { return camelCase(s) }

// lowerCamel converts a proto identifier to lowerCamelCase, used for the
// derived accessor stem (the field's own parameter name and xOrDefault;
// withX, clearX and addX are built from the UpperCamelCase GoName).
// Delegates to strcase rather than reimplementing a second casing algorithm.
func lowerCamel(s string) string {
	return strcase.ToLowerCamel(s)
}

func isASCIILower(c byte) bool { return 'a' <= c && c <= 'z' }
func isASCIIDigit(c byte) bool { return '0' <= c && c <= '9' }
