package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"scriptc/internal/diagfmt"
	"scriptc/internal/driver"
	"scriptc/internal/version"
)

type diagFormat string

const (
	diagPretty diagFormat = "pretty"
	diagShort  diagFormat = "short"
	diagJSON   diagFormat = "json"
	diagSarif  diagFormat = "sarif"
)

func readDiagFormat(value string) (diagFormat, error) {
	switch f := diagFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case diagPretty, diagShort, diagJSON, diagSarif:
		return f, nil
	case "":
		return diagPretty, nil
	}
	return "", errors.Newf("unknown diagnostics format %q (expected pretty|short|json|sarif)", value)
}

type renderOptions struct {
	format    diagFormat
	color     bool
	withNotes bool
	paths     diagfmt.PathMode
}

func (o renderOptions) pathMode() diagfmt.PathMode {
	return o.paths
}

// readPathMode combines --path-mode with the --fullpath shorthand.
func readPathMode(value string, fullPath bool) (diagfmt.PathMode, error) {
	if fullPath {
		return diagfmt.PathModeAbsolute, nil
	}
	mode, ok := diagfmt.ParsePathMode(strings.ToLower(strings.TrimSpace(value)))
	if !ok {
		return 0, errors.Newf("unknown path mode %q (expected auto|absolute|relative|basename)", value)
	}
	return mode, nil
}

// renderDiagnostics prints the diagnostics of every result. JSON output is
// one object keyed by program name; SARIF output is a single run.
func renderDiagnostics(w io.Writer, results []*driver.Result, opts renderOptions) error {
	switch opts.format {
	case diagJSON:
		out := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			if r == nil {
				continue
			}
			out[r.Name()] = diagfmt.BuildDiagnosticsOutput(r.Bag, r.FileSet(), diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         opts.pathMode(),
				IncludeNotes:     opts.withNotes,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case diagSarif:
		inputs := make([]diagfmt.SarifInput, 0, len(results))
		for _, r := range results {
			if r != nil {
				inputs = append(inputs, diagfmt.SarifInput{Bag: r.Bag, Files: r.FileSet()})
			}
		}
		return diagfmt.Sarif(w, diagfmt.SarifRunMeta{
			ToolName:       "scriptc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		}, inputs...)
	}

	first := true
	for _, r := range results {
		if r == nil || r.Bag.Len() == 0 {
			continue
		}
		if opts.format == diagShort {
			diagfmt.Short(w, r.Bag, r.FileSet(), opts.pathMode())
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		diagfmt.Pretty(w, r.Bag, r.FileSet(), diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   1,
			PathMode:  opts.pathMode(),
			ShowNotes: opts.withNotes,
		})
	}
	return nil
}
