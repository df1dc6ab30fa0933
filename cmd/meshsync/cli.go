package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chazu/meshsync/pkg/engine"
	"github.com/chazu/meshsync/pkg/kernel/sdfx"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns the validated config,
// whether the program should exit cleanly (help was shown), or an
// ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("meshsync", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
meshsync - incremental CSG recompute with display-cache reuse.

Usage:
  meshsync [options] SCENE

Arguments:
  SCENE
    Path to an .hcl scene file.

Runs a baseline cycle. With --set, the overrides are applied and a second
cycle runs against the merged client cache. A JSON report is written to
stdout.

Options:
`)
		flagSet.PrintDefaults()
	}

	var overrides overrideFlag
	flagSet.Var(&overrides, "set", "Override a parameter for the second cycle (name=value). Repeatable.")
	kernelFlag := flagSet.String("kernel", kernelSdfx, "Geometry kernel. Options: 'sdfx' or 'manifold'.")
	meshCellsFlag := flagSet.Int("mesh-cells", sdfx.DefaultMeshCells, "Marching cubes resolution for the sdfx kernel.")
	timeoutFlag := flagSet.Duration("timeout", engine.DefaultTimeout, "Evaluation time limit per cycle.")
	meshesFlag := flagSet.Bool("meshes", false, "Include mesh data in the report.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "only one scene may be given"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg, err := NewConfig(Config{
		ScenePath: flagSet.Arg(0),
		Overrides: overrides,
		Kernel:    strings.ToLower(*kernelFlag),
		MeshCells: *meshCellsFlag,
		Timeout:   *timeoutFlag,
		Meshes:    *meshesFlag,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}
