package modelio

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"scriptc/internal/model"
)

// Write serializes forest in format.
func Write(w io.Writer, program string, forest *model.Forest, format Format) error {
	switch format {
	case FormatText:
		return model.Dump(w, forest)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(FromForest(program, forest))
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.UseCompactInts(true)
		return enc.Encode(FromForest(program, forest))
	default:
		return errors.Newf("cannot write format %s", format)
	}
}

// WriteFile writes forest to path. The file is replaced atomically: the
// content goes to a temp file in the same directory which is then renamed.
func WriteFile(path, program string, forest *model.Forest, format Format) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	bw := bufio.NewWriter(f)
	if err = Write(bw, program, forest, format); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	// атомарная замена
	if err = os.Rename(f.Name(), path); err != nil {
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// Read decodes a Document written in format. The text dump cannot be read back.
func Read(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding json model")
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding msgpack model")
		}
	default:
		return nil, errors.Newf("format %s cannot be read back", format)
	}
	if doc.Schema != SchemaVersion {
		return nil, errors.Newf("model schema %d, want %d", doc.Schema, SchemaVersion)
	}
	return &doc, nil
}

// ReadFile decodes the model at path, choosing the format by its suffix.
func ReadFile(path string) (*Document, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.Newf("%s: unknown model file suffix", path)
	}
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()
	doc, err := Read(bufio.NewReader(f), format)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return doc, nil
}
