// location.go — source-location capture for ledgercore constructors.
//
// Go has no call-site macros, so the C ancestor's "macro/inline shim that
// captures file, line, and function at expansion time" (spec.md §9)
// becomes a thin function built on runtime.Caller, matching the
// guidance: "Languages lacking call-site macros should use their built-in
// location primitive."
package ledgercore

import "runtime"

// SourceLocation is a value record describing where an Error was raised:
// file, line, and function name. A location with File == "" reports
// IsZero and is rendered without file/line in JSON; func is emitted
// independently whenever Func is non-empty (spec.md §4.4).
type SourceLocation struct {
	File string
	Line int
	Func string
}

// IsZero reports whether loc carries no location information.
func (loc SourceLocation) IsZero() bool { return loc.File == "" }

// Here captures the immediate caller's file, line, and function name. Use
// it at the exact call site of an Error constructor:
//
//	err := ledgercore.New(ctx, ledgercore.DomainIO, ledgercore.CodeIOError,
//	        ledgercore.Here(), "disk full")
//
// Calling Here() from inside a helper that itself calls New will capture
// the helper's location, not its caller's; use HereSkip for wrapper
// helpers that need to attribute the location further up the stack.
func Here() SourceLocation {
	return hereSkip(1)
}

// HereSkip behaves like Here but skips extra frames above the immediate
// caller, for use in wrapper constructors that want to attribute the
// capture site to their own caller rather than themselves.
func HereSkip(extra int) SourceLocation {
	return hereSkip(1 + extra)
}

func hereSkip(skip int) SourceLocation {
	pc, file, line, ok := runtime.Caller(skip + 1) // +1 to skip hereSkip itself
	if !ok {
		return SourceLocation{}
	}
	fn := runtime.FuncForPC(pc)
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	return SourceLocation{File: file, Line: line, Func: name}
}
