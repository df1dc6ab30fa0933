package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/meshsync/pkg/graph"
)

// Kernel backends selectable with --kernel.
const (
	kernelSdfx     = "sdfx"
	kernelManifold = "manifold"
)

// Override is one --set name=value pair applied before the second cycle.
type Override struct {
	Name  string
	Value float64
}

// Config holds everything an App needs to run.
type Config struct {
	ScenePath string
	Overrides []Override

	Kernel    string
	MeshCells int
	Timeout   time.Duration
	// Meshes adds the client's mesh data to the report.
	Meshes bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" {
		return nil, errors.New("a scene path is required")
	}
	switch cfg.Kernel {
	case kernelSdfx, kernelManifold:
	default:
		return nil, fmt.Errorf("invalid kernel %q: must be 'sdfx' or 'manifold'", cfg.Kernel)
	}
	if cfg.MeshCells < 1 {
		return nil, fmt.Errorf("invalid mesh-cells %d: must be positive", cfg.MeshCells)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("invalid timeout %s: must not be negative", cfg.Timeout)
	}
	seen := make(map[string]bool, len(cfg.Overrides))
	for _, o := range cfg.Overrides {
		if seen[o.Name] {
			return nil, fmt.Errorf("parameter %q is set more than once", o.Name)
		}
		seen[o.Name] = true
	}
	return &cfg, nil
}

// parseOverride splits a name=value argument.
func parseOverride(s string) (Override, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return Override{}, fmt.Errorf("invalid --set %q: want name=value", s)
	}
	name = strings.TrimSpace(name)
	if !graph.ValidParameterID(name) {
		return Override{}, fmt.Errorf("invalid --set %q: bad parameter name", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Override{}, fmt.Errorf("invalid --set %q: value is not a number", s)
	}
	return Override{Name: name, Value: v}, nil
}

// overrideFlag collects repeated --set flags.
type overrideFlag []Override

func (f *overrideFlag) String() string {
	parts := make([]string, len(*f))
	for i, o := range *f {
		parts[i] = o.Name + "=" + graph.FormatNumber(o.Value)
	}
	return strings.Join(parts, ",")
}

func (f *overrideFlag) Set(s string) error {
	o, err := parseOverride(s)
	if err != nil {
		return err
	}
	*f = append(*f, o)
	return nil
}
