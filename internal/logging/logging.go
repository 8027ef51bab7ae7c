// Package logging builds the zap loggers used by the driver and the lowering
// passes. Diagnostics never go through the logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names, used instead of raw strings.
const (
	FieldProgram   = "program"
	FieldUnit      = "unit"
	FieldPass      = "pass"
	FieldDecl      = "decl"
	FieldSymbol    = "symbol"
	FieldCount     = "count"
	FieldErrors    = "errors"
	FieldDuration  = "duration"
	FieldComponent = "component"
)

// Options configure New.
type Options struct {
	Level  string    // debug|info|warn|error, default warn
	JSON   bool      // production JSON encoder instead of the console one
	Output io.Writer // default stderr
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", s)
	}
	return lvl, nil
}

// New builds a logger writing to opts.Output.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// OrNop returns l, or a nop logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
