package diag

import (
	"fmt"
)

// Code is a stable numeric diagnostic identifier. The thousands digit selects the
// family and therefore the textual prefix returned by ID.
type Code uint16

const (
	UnknownCode Code = 0

	// Declaration-level user diagnostics.
	DclInfo                 Code = 1000
	DclUnusableBaseType     Code = 1001
	DclMutableValueTypeArg  Code = 1002
	DclDuplicateUnnamedCtor Code = 1003
	DclUserStructNotAllowed Code = 1004
	DclInlineCodeBody       Code = 1005

	// Program export loading.
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001

	// Observability.
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Internal errors: resolution failures and contained faults.
	IntInfo            Code = 9000
	IntError           Code = 9001
	IntUnresolvedDecl  Code = 9002
	IntWrongSymbolKind Code = 9003
)

// codeFormat holds the message template for each code; Locator.Message feeds
// its arguments through fmt.Sprintf with this template.
var codeFormat = map[Code]string{
	UnknownCode:             "unknown error",
	DclInfo:                 "declaration information",
	DclUnusableBaseType:     "type %s cannot be used by %s because it is not usable from script",
	DclMutableValueTypeArg:  "mutable value type %s cannot be used as a generic argument of a base type of %s",
	DclDuplicateUnnamedCtor: "type %s already has an unnamed constructor",
	DclUserStructNotAllowed: "user-defined value type %s is not supported",
	DclInlineCodeBody:       "member %s has inline code semantics and its body is ignored",
	IOInfo:                  "I/O information",
	IOLoadFileError:         "cannot load %s: %s",
	ObsInfo:                 "observability information",
	ObsTimings:              "pass timings",
	IntInfo:                 "internal information",
	IntError:                "internal error: %s",
	IntUnresolvedDecl:       "%s declaration %s does not resolve to a symbol",
	IntWrongSymbolKind:      "%s declaration %s resolves to a %s",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

// Format returns the message template of the code.
func (c Code) Format() string {
	f, ok := codeFormat[c]
	if !ok {
		return codeFormat[UnknownCode]
	}
	return f
}

// Sprintf renders the code's template with args.
func (c Code) Sprintf(args ...any) string {
	return fmt.Sprintf(c.Format(), args...)
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]", c.ID())
}
