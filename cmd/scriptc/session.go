package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scriptc/internal/config"
	"scriptc/internal/logging"
	"scriptc/internal/prof"
	"scriptc/internal/trace"
)

// session is what every compiling command sets up from the persistent flags:
// the effective config, the logger, the tracer and the profilers.
type session struct {
	cfg     config.Config
	color   colorMode
	timings bool
	log     *zap.Logger
	tracer  trace.Tracer

	closers []func()
}

func openSession(cmd *cobra.Command, inputs []string) (_ *session, err error) {
	pf := cmd.Root().PersistentFlags()
	s := &session{log: logging.Nop(), tracer: trace.Nop}
	defer func() {
		if err != nil {
			s.close()
		}
	}()

	colorStr, err := pf.GetString("color")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get color flag")
	}
	if s.color, err = readColorMode(colorStr); err != nil {
		return nil, err
	}
	if s.timings, err = pf.GetBool("timings"); err != nil {
		return nil, errors.Wrap(err, "failed to get timings flag")
	}
	if s.cfg, err = loadConfig(cmd, inputs); err != nil {
		return nil, err
	}

	logJSON, err := pf.GetBool("log-json")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get log-json flag")
	}
	log, err := logging.New(logging.Options{
		Level:  s.cfg.Log.Level,
		JSON:   s.cfg.Log.JSON || logJSON,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	s.log = log
	s.closers = append(s.closers, func() { _ = log.Sync() })
	if s.cfg.Path != "" {
		log.Debug("config loaded", zap.String("path", s.cfg.Path))
	}

	if err := s.setupTracing(cmd); err != nil {
		return nil, err
	}
	if err := s.setupProfiling(cmd); err != nil {
		return nil, err
	}
	return s, nil
}

// close runs the cleanups in reverse order. Safe to call more than once.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// loadConfig reads --config or discovers scriptc.toml next to the first
// input, then applies the flag overrides.
func loadConfig(cmd *cobra.Command, inputs []string) (config.Config, error) {
	pf := cmd.Root().PersistentFlags()
	path, err := pf.GetString("config")
	if err != nil {
		return config.Config{}, errors.Wrap(err, "failed to get config flag")
	}

	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(discoveryDir(inputs))
	}
	if err != nil {
		return config.Config{}, err
	}

	if pf.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, errors.Wrap(err, "failed to get max-diagnostics flag")
		}
	}
	if pf.Changed("log-level") {
		if cfg.Log.Level, err = pf.GetString("log-level"); err != nil {
			return config.Config{}, errors.Wrap(err, "failed to get log-level flag")
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid flags")
	}
	return cfg, nil
}

func discoveryDir(inputs []string) string {
	if len(inputs) == 0 {
		return "."
	}
	if st, err := os.Stat(inputs[0]); err == nil && st.IsDir() {
		return inputs[0]
	}
	return filepath.Dir(inputs[0])
}

// setupTracing inspects trace-related flags and initializes the tracer.
func (s *session) setupTracing(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	output, err := pf.GetString("trace")
	if err != nil {
		return errors.Wrap(err, "failed to get trace flag")
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return errors.Wrap(err, "failed to get trace-level flag")
	}
	modeStr, err := pf.GetString("trace-mode")
	if err != nil {
		return errors.Wrap(err, "failed to get trace-mode flag")
	}
	formatStr, err := pf.GetString("trace-format")
	if err != nil {
		return errors.Wrap(err, "failed to get trace-format flag")
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return errors.Wrap(err, "failed to get trace-ring-size flag")
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		return nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return err
	}
	s.tracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	s.closers = append(s.closers, func() {
		if ring := trace.RingOf(tracer); ring != nil && mode == trace.ModeRing {
			if err := ring.Dump(cmd.ErrOrStderr(), format); err != nil {
				s.log.Warn("trace: dump failed", zap.Error(err))
			}
		}
		if err := tracer.Flush(); err != nil {
			s.log.Warn("trace: flush failed", zap.Error(err))
		}
		if err := tracer.Close(); err != nil {
			s.log.Warn("trace: close failed", zap.Error(err))
		}
	})
	return nil
}

// setupProfiling starts the profilers requested by the persistent flags.
func (s *session) setupProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	var paths prof.Paths
	var err error
	if paths.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return errors.Wrap(err, "failed to get cpu-profile flag")
	}
	if paths.Mem, err = pf.GetString("mem-profile"); err != nil {
		return errors.Wrap(err, "failed to get mem-profile flag")
	}
	if paths.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return errors.Wrap(err, "failed to get runtime-trace flag")
	}
	if paths == (prof.Paths{}) {
		return nil
	}
	p, err := prof.Start(paths)
	if err != nil {
		return err
	}
	s.closers = append(s.closers, func() {
		if err := p.Stop(); err != nil {
			s.log.Warn("profiling", zap.Error(err))
		}
	})
	return nil
}
