package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptc/internal/modelio"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[policy]
native_accessors = true

[output]
format = "json"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Policy.NativeAccessors || !cfg.Policy.GenerateBackingFields {
		t.Fatalf("policy %+v", cfg.Policy)
	}
	if f, _ := cfg.OutputFormat(); f != modelio.FormatJSON {
		t.Fatalf("format %s", f)
	}
	if cfg.Output.MaxDiagnostics != 100 || cfg.Log.Level != "warn" {
		t.Fatalf("defaults lost: %+v %+v", cfg.Output, cfg.Log)
	}
	if opts := cfg.PolicyOptions(); !opts.NativeAccessors || !opts.GenerateBackingFields {
		t.Fatalf("policy options %+v", opts)
	}
	if cfg.Path != path {
		t.Fatalf("path %q", cfg.Path)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[policy\n", "failed to parse TOML"},
		{"unknown key", "[policy]\nstrict = true\n", "unknown keys: policy.strict"},
		{"empty format", "[output]\nformat = \"\"\n", "[output].format is empty"},
		{"bad format", "[output]\nformat = \"xml\"\n", "unknown output format"},
		{"negative limit", "[output]\nmax_diagnostics = -1\n", "must not be negative"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "[log].level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[log]\nlevel = \"debug\"\n")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(deep)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("level %q", cfg.Log.Level)
	}
}

func TestFindWithoutConfig(t *testing.T) {
	// a fresh temp dir may still sit below a scriptc.toml on the host; only
	// check that a found file is really named like one
	path, ok, err := Find(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok && filepath.Base(path) != FileName {
		t.Fatalf("found %q", path)
	}
}
