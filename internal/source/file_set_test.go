package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetReservesZeroID(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(0) != nil {
		t.Fatal("file 0 must not exist")
	}
	id := fs.AddVirtual("a.cs", []byte("class A {}"))
	if id != 1 {
		t.Fatalf("expected first FileID to be 1, got %d", id)
	}
	if fs.Len() != 1 {
		t.Fatalf("expected 1 file, got %d", fs.Len())
	}
	if got, ok := fs.Lookup("./a.cs"); !ok || got != id {
		t.Fatalf("lookup mismatch: %d %v", got, ok)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.cs", []byte("ab\ncd\n\nef"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the newline itself
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: want %+v, got %+v", tc.off, tc.want, start)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.cs", []byte("first\nsecond\nthird")))
	for i, want := range []string{"first", "second", "third", ""} {
		if got := f.GetLine(uint32(i + 1)); got != want {
			t.Errorf("line %d: want %q, got %q", i+1, want, got)
		}
	}
}

func TestAddNormalizesCRLFAndBOM(t *testing.T) {
	fs := NewFileSet()
	id := fs.Add("x.cs", []byte("\xEF\xBB\xBFa\r\nb"), 0)
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags not recorded: %b", f.Flags)
	}
}

func TestLoadAndRelPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "a.cs")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("class A {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := fs.Get(id).RelPath(fs.BaseDir()); got != "src/a.cs" {
		t.Fatalf("want src/a.cs, got %q", got)
	}
	if _, err := fs.Load(filepath.Join(dir, "missing.cs")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
