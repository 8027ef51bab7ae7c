// Package modelio serializes the frozen target model for the next stage.
package modelio

import (
	"strings"

	"github.com/cockroachdb/errors"
)

type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatMsgpack
)

var formatNames = [...]string{
	FormatText:    "text",
	FormatJSON:    "json",
	FormatMsgpack: "msgpack",
}

var formatExts = [...]string{
	FormatText:    ".model.txt",
	FormatJSON:    ".model.json",
	FormatMsgpack: ".model.mp",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return "unknown"
}

// Ext is the file suffix used for f.
func (f Format) Ext() string {
	if int(f) < len(formatExts) {
		return formatExts[f]
	}
	return ".model"
}

// ParseFormat parses a format name; the empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return 0, errors.Newf("unknown output format %q (want text, json or msgpack)", s)
}

// FormatOf guesses the format from a file name.
func FormatOf(path string) (Format, bool) {
	for f, ext := range formatExts {
		if strings.HasSuffix(path, ext) {
			return Format(f), true
		}
	}
	return 0, false
}
