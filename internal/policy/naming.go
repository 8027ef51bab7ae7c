package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalizeName brings a source identifier to its target spelling.
func normalizeName(name string, lowerCamel bool) string {
	name = norm.NFC.String(name)
	if !lowerCamel || name == "" {
		return name
	}
	return lowerFirst(name)
}

// lowerFirst lowers the leading run of upper-case letters, keeping the last
// one of a longer run upper-case when it starts the next word ("XMLParser" -> "xmlParser").
func lowerFirst(name string) string {
	runes := []rune(name)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}
	switch {
	case i == 0:
		return name
	case i == 1 || i == len(runes):
		// single letter, or the whole name is upper-case
	case unicode.IsLetter(runes[i]):
		i--
	}
	for j := 0; j < i; j++ {
		runes[j] = unicode.ToLower(runes[j])
	}
	return string(runes)
}

// stripAccessorPrefix turns "get_Name" into "Name".
func stripAccessorPrefix(name string) string {
	for _, p := range []string{"get_", "set_", "add_", "remove_"} {
		if rest, ok := strings.CutPrefix(name, p); ok && utf8.RuneCountInString(rest) > 0 {
			return rest
		}
	}
	return name
}

// event accessors are never native
func isPropertyAccessor(name string) bool {
	return strings.HasPrefix(name, "get_") || strings.HasPrefix(name, "set_")
}
