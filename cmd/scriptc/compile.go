package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scriptc/internal/driver"
	"scriptc/internal/logging"
	"scriptc/internal/modelio"
)

type commandKind uint8

const (
	cmdCompile commandKind = iota
	cmdCheck
	cmdDump
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] <file.prog.yaml|directory>...",
		Short: "Compile program exports and write their models",
		Long:  `Compile every program export and write one model file per error-free program into the output directory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd, args, cmdCompile)
		},
	}
	cmd.Flags().StringP("out", "o", ".", "output directory")
	cmd.Flags().String("format", "", "model format (text|json|msgpack), default from [output].format")
	addRunFlags(cmd)
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.prog.yaml|directory>...",
		Short: "Report diagnostics without writing models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd, args, cmdCheck)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [flags] <file.prog.yaml|directory>...",
		Short: "Print the compiled model to stdout",
		Long:  `Print the compiled model of every program to stdout; diagnostics go to stderr`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd, args, cmdDump)
		},
	}
	cmd.Flags().String("format", "text", "model format (text|json|msgpack)")
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("jobs", 0, "max programs compiled in parallel (0=auto)")
	cmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in diagnostics (same as --path-mode absolute)")
	cmd.Flags().String("path-mode", "auto", "diagnostic file paths (auto|absolute|relative|basename)")
}

func runPrograms(cmd *cobra.Command, args []string, kind commandKind) error {
	s, err := openSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.close()

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return errors.Wrap(err, "failed to get jobs flag")
	}
	diagStr, err := cmd.Flags().GetString("diag-format")
	if err != nil {
		return errors.Wrap(err, "failed to get diag-format flag")
	}
	dformat, err := readDiagFormat(diagStr)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return errors.Wrap(err, "failed to get with-notes flag")
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return errors.Wrap(err, "failed to get fullpath flag")
	}
	pathStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return errors.Wrap(err, "failed to get path-mode flag")
	}
	pathMode, err := readPathMode(pathStr, fullPath)
	if err != nil {
		return err
	}

	var format modelio.Format
	if kind != cmdCheck {
		format, err = modelFormat(cmd, s)
		if err != nil {
			return err
		}
	}

	paths, err := driver.Collect(args)
	if err != nil {
		return err
	}
	results, err := driver.Run(cmd.Context(), paths, driver.Options{
		Config:  s.cfg,
		Jobs:    jobs,
		Timings: s.timings,
		Phases: func(ev driver.PhaseEvent) {
			if ev.Status == driver.PhaseEnd {
				s.log.Info("program done",
					zap.String(logging.FieldProgram, ev.Program),
					zap.Duration(logging.FieldDuration, ev.Elapsed),
					zap.Int(logging.FieldErrors, ev.Errors))
			}
		},
		Logger: s.log,
		Tracer: s.tracer,
	})
	if err != nil {
		return err
	}

	// check пишет диагностики в stdout, остальные команды в stderr
	diagOut := cmd.ErrOrStderr()
	if kind == cmdCheck {
		diagOut = cmd.OutOrStdout()
	}
	if err := renderDiagnostics(diagOut, results, renderOptions{
		format:    dformat,
		color:     useColor(s.color, diagOut),
		withNotes: withNotes,
		paths:     pathMode,
	}); err != nil {
		return err
	}

	switch kind {
	case cmdCompile:
		outDir, err := cmd.Flags().GetString("out")
		if err != nil {
			return errors.Wrap(err, "failed to get out flag")
		}
		written, err := driver.WriteOutputs(results, outDir, format)
		for _, p := range written {
			s.log.Info("model written", zap.String("path", p))
		}
		if err != nil {
			return err
		}
	case cmdDump:
		if err := driver.Dump(cmd.OutOrStdout(), results, format); err != nil {
			return err
		}
	}

	if driver.HasErrors(results) {
		return errHadErrors
	}
	return nil
}

// modelFormat resolves --format against [output].format.
func modelFormat(cmd *cobra.Command, s *session) (modelio.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return 0, errors.Wrap(err, "failed to get format flag")
	}
	if value == "" {
		return s.cfg.OutputFormat()
	}
	f, err := modelio.ParseFormat(value)
	if err != nil {
		return 0, errors.Wrap(err, "--format")
	}
	return f, nil
}
