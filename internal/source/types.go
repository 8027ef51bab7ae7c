package source

// FileID indexes FileSet. Zero is reserved for "no file".
type FileID uint32

// FileFlags records how a unit entered the set and what Add normalized.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // text came with the program export
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // CRLF line ends were folded to LF
)

// File is one registered unit. Content is already normalized, spans index it.
type File struct {
	ID       FileID
	Path     string
	Content  []byte
	Newlines []uint32 // offsets of '\n', ascending
	Flags    FileFlags
}

// LineCol is a 1-based line and a 1-based byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}
