package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"scriptc/internal/version"
)

// errHadErrors makes the process exit with status 1 after the diagnostics
// have already been printed.
var errHadErrors = errors.New("compilation failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "scriptc",
		Short:         "Lower resolved script programs into the target object model",
		Long:          `scriptc reads resolved program exports (*.prog.yaml) and lowers their declarations into classes, enums and interfaces`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCompileCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("config", "", "path to scriptc.toml (default: search upwards from the first input)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 0, "maximum number of diagnostics per program (0 = from config)")
	pf.String("log-level", "", "log level (debug|info|warn|error), overrides [log].level")
	pf.Bool("log-json", false, "log as JSON")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "text", "trace format (text|ndjson)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errHadErrors) {
			fmt.Fprintf(os.Stderr, "scriptc: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
