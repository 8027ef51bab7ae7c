// Package config loads scriptc.toml, the per-project settings of the
// compiler. Command line flags override what the file says.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"scriptc/internal/logging"
	"scriptc/internal/modelio"
	"scriptc/internal/policy"
)

// FileName is the name config discovery looks for.
const FileName = "scriptc.toml"

type Config struct {
	// Path of the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`

	Policy PolicyConfig `toml:"policy"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

type PolicyConfig struct {
	AllowUserDefinedStructs bool `toml:"allow_user_defined_structs"`
	GenerateBackingFields   bool `toml:"generate_backing_fields"`
	NativeAccessors         bool `toml:"native_accessors"`
	LowerCamelCase          bool `toml:"lower_camel_case"`
	IgnoreGenericArguments  bool `toml:"ignore_generic_arguments"`
}

type OutputConfig struct {
	Format         string `toml:"format"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// Default is the configuration used when no scriptc.toml is found. Load
// starts from it, so keys missing from a file keep these values.
func Default() Config {
	return Config{
		Policy: PolicyConfig{GenerateBackingFields: true},
		Output: OutputConfig{Format: modelio.FormatText.String(), MaxDiagnostics: 100},
		Log:    LogConfig{Level: "warn"},
	}
}

// PolicyOptions converts the [policy] section for policy.NewDefault.
func (c Config) PolicyOptions() policy.Options {
	return policy.Options{
		GenerateBackingFields:  c.Policy.GenerateBackingFields,
		NativeAccessors:        c.Policy.NativeAccessors,
		LowerCamelCase:         c.Policy.LowerCamelCase,
		IgnoreGenericArguments: c.Policy.IgnoreGenericArguments,
	}
}

// OutputFormat parses [output].format.
func (c Config) OutputFormat() (modelio.Format, error) {
	return modelio.ParseFormat(c.Output.Format)
}

// Find walks up from startDir looking for scriptc.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "failed to stat %q", candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads the config file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("output", "format") && strings.TrimSpace(cfg.Output.Format) == "" {
		return Config{}, errors.Newf("%s: [output].format is empty", path)
	}
	if meta.IsDefined("log", "level") && strings.TrimSpace(cfg.Log.Level) == "" {
		return Config{}, errors.Newf("%s: [log].level is empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Discover loads the nearest scriptc.toml above startDir, or returns the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks values that the TOML types cannot.
func (c Config) Validate() error {
	if _, err := c.OutputFormat(); err != nil {
		return errors.Wrap(err, "[output].format")
	}
	if c.Output.MaxDiagnostics < 0 {
		return errors.Newf("[output].max_diagnostics must not be negative, got %d", c.Output.MaxDiagnostics)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "[log].level")
	}
	return nil
}
