package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"scriptc/internal/diag"
	"scriptc/internal/source"
)

const unitText = "class Point {\n\tint x;\n}\n"

func testBag(t *testing.T) (*diag.Bag, *source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/unit.cs", []byte(unitText))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.DclDuplicateUnnamedCtor, source.Span{File: id, Start: 6, End: 11},
		diag.DclDuplicateUnnamedCtor.Sprintf("Point")))
	return bag, fs, id
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs, _ := testBag(t)
	tests := []struct {
		name string
		mode PathMode
		want string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/unit.cs:1:7:"},
		{"relative", PathModeRelative, "src/unit.cs:1:7:"},
		{"basename", PathModeBasename, "unit.cs:1:7:"},
		{"auto", PathModeAuto, "src/unit.cs:1:7:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("want prefix %q, got:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	bag, fs, _ := testBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	want := "unit.cs:1:7: ERROR DCL1003: type Point already has an unnamed constructor\n" +
		"1 | class Point {\n" +
		"  |       ^~~~~\n"
	if buf.String() != want {
		t.Fatalf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestPrettyExpandsTabs(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("unit.cs", []byte(unitText))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevWarning, diag.DclInlineCodeBody, source.Span{File: id, Start: 19, End: 20}, "field x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})
	want := "unit.cs:2:6: WARNING DCL1005: field x\n" +
		"1 | class Point {\n" +
		"2 |     int x;\n" +
		"  |         ^\n"
	if buf.String() != want {
		t.Fatalf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestPrettyNotesAndColor(t *testing.T) {
	bag, fs, id := testBag(t)
	bag.Items()[0].WithNote(source.Span{File: id, Start: 15, End: 21}, "first declared here")

	var plain bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(plain.String(), "note:") {
		t.Fatalf("notes must be hidden by default:\n%s", plain.String())
	}

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, Color: true})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI colors:\n%q", out)
	}
	if !strings.Contains(out, "unit.cs:2:2: first declared here") {
		t.Fatalf("note missing:\n%s", out)
	}
}

func TestPrettyWithoutFile(t *testing.T) {
	fs := source.NewFileSet()
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IntError, source.Span{}, "internal error: boom"))
	bag.Add(diag.NewError(diag.IntError, source.Span{}, "dropped"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	want := "<unknown>: ERROR INT9001: internal error: boom\n" +
		"note: 1 more diagnostics were not reported\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}

func TestPrettyTruncatesLongLines(t *testing.T) {
	fs := source.NewFileSet()
	line := "class " + strings.Repeat("A", 60) + " {}\n"
	id := fs.AddVirtual("wide.cs", []byte(line))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.DclUserStructNotAllowed, source.Span{File: id, Start: 6, End: 66}, "struct"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Width: 20})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if got := lines[1]; got != "1 | class AAAAAAAAAAAAA…" {
		t.Errorf("source line %q", got)
	}
	if got := lines[2]; got != "  |       ^~~~~~~~~~~~~" {
		t.Errorf("marker line %q", got)
	}
}

func TestShort(t *testing.T) {
	bag, fs, _ := testBag(t)
	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeRelative)
	want := "src/unit.cs:1:7: ERROR DCL1003: type Point already has an unnamed constructor\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
}
