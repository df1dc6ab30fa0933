// Package scene loads geometry graphs from HCL scene files.
//
// A scene is a sequence of blocks. Parameter blocks declare scalars;
// item blocks (box, cylinder, cut, fuse, common, transform) declare items
// in the order they should be evaluated:
//
//	parameter "radius" {
//	  default = 20
//	}
//
//	box "B" {
//	  size     = [100, 200, 200]
//	  position = [0, 0, 0]
//	}
//
//	cylinder "C" {
//	  height   = 40
//	  radius   = "radius"
//	  position = [50, 50, 10]
//	}
//
//	cut "S" {
//	  left  = "B"
//	  right = "C"
//	}
//
// Scalar attributes take a number or a string holding a Lisp expression
// over parameter ids. Items reference each other by block label.
package scene

import (
	"fmt"
	"os"

	"github.com/chazu/meshsync/pkg/graph"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Parse decodes a scene from src. filename is used in diagnostics only.
func Parse(filename string, src []byte) (*graph.Graph, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scene %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("scene %s is not in native HCL syntax", filename)
	}

	g, diags := decodeScene(body)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scene %s: %w", filename, diags)
	}
	return g, nil
}

// LoadFile reads and parses the scene at path.
func LoadFile(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return Parse(path, src)
}
