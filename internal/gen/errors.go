package gen

import "fmt"

// Error is a domain error raised during emission: a oneof naming conflict
// or a failure to marshal the embedded descriptor (spec.md §7 channel 2).
// The preamble-without-single_file and GROUP errors are raised earlier, as
// plain errors from protogen.New. An Error is caught at the request
// driver boundary (driver.go's GenerateFile caller) and set as the
// response's error string; no partial output is ever emitted once one is
// raised.
type Error struct {
	// File is the .proto source file the error was raised while
	// processing, for a useful message; empty if not file-specific.
	File string
	Msg  string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("protoc-gen-scala: %s: %s", e.File, e.Msg)
	}
	return fmt.Sprintf("protoc-gen-scala: %s", e.Msg)
}

// errorf constructs a *Error with a formatted message.
func errorf(file, format string, args ...interface{}) *Error {
	return &Error{File: file, Msg: fmt.Sprintf(format, args...)}
}
