package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/chazu/meshsync/pkg/engine"
	"github.com/chazu/meshsync/pkg/kernel/sdfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, shouldExit, err := Parse([]string{"scene.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, &Config{
		ScenePath: "scene.hcl",
		Kernel:    kernelSdfx,
		MeshCells: sdfx.DefaultMeshCells,
		Timeout:   engine.DefaultTimeout,
		LogFormat: "text",
		LogLevel:  "info",
	}, cfg)
}

func TestParseAllFlags(t *testing.T) {
	cfg, _, err := Parse([]string{
		"--set", "radius=25",
		"--set", "height = -1.5",
		"--kernel", "SDFX",
		"--mesh-cells", "32",
		"--timeout", "2s",
		"--meshes",
		"--log-format", "JSON",
		"--log-level", "debug",
		"scene.hcl",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, []Override{{Name: "radius", Value: 25}, {Name: "height", Value: -1.5}}, cfg.Overrides)
	assert.Equal(t, kernelSdfx, cfg.Kernel)
	assert.Equal(t, 32, cfg.MeshCells)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.True(t, cfg.Meshes)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad log format", []string{"--log-format", "xml", "s.hcl"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "loud", "s.hcl"}, "invalid log-level"},
		{"bad kernel", []string{"--kernel", "occt", "s.hcl"}, `invalid kernel "occt"`},
		{"zero mesh cells", []string{"--mesh-cells", "0", "s.hcl"}, "invalid mesh-cells 0"},
		{"negative timeout", []string{"--timeout", "-1s", "s.hcl"}, "invalid timeout"},
		{"set without value", []string{"--set", "radius", "s.hcl"}, "want name=value"},
		{"set bad name", []string{"--set", "2r=1", "s.hcl"}, "bad parameter name"},
		{"set bad value", []string{"--set", "r=wide", "s.hcl"}, "value is not a number"},
		{"set twice", []string{"--set", "r=1", "--set", "r=2", "s.hcl"}, `parameter "r" is set more than once`},
		{"two scenes", []string{"a.hcl", "b.hcl"}, "only one scene"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.want)
		})
	}
}

func TestOverrideFlagString(t *testing.T) {
	f := overrideFlag{{Name: "a", Value: 1}, {Name: "b", Value: 2.5}}
	assert.Equal(t, "a=1,b=2.5", f.String())
}

func TestNewConfigRequiresScene(t *testing.T) {
	_, err := NewConfig(Config{Kernel: kernelSdfx, MeshCells: 1})
	require.ErrorContains(t, err, "scene path is required")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger("warn", "json", &buf).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger("warn", "json", &buf).Warn("shown", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("bogus", "text", &buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
