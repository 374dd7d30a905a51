// Package project locates the Go module a canopy command runs in and
// reports how it depends on canopy.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/go-drift/canopy/pkg/config"
)

// CanopyModule is the module path of this repository.
const CanopyModule = "github.com/go-drift/canopy"

// ErrNoModule is returned when no go.mod exists above the start directory.
var ErrNoModule = errors.New("not in a Go module (no go.mod found)")

// Info describes a project directory.
type Info struct {
	Root       string
	ModulePath string
	// CanopyVersion is the required canopy version, empty when the module
	// does not depend on canopy (or is canopy itself).
	CanopyVersion string
	// Replaced is set when canopy is redirected by a replace directive.
	Replaced bool
	// ConfigPath is the canopy.yaml path, empty when absent.
	ConfigPath string
}

// FindRoot walks up from dir to the nearest directory containing go.mod.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoModule
		}
		dir = parent
	}
}

// Inspect reads the go.mod in root.
func Inspect(root string) (*Info, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}
	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, fmt.Errorf("could not determine module path from go.mod")
	}
	if err := module.CheckPath(f.Module.Mod.Path); err != nil {
		return nil, fmt.Errorf("go.mod: %w", err)
	}

	info := &Info{Root: root, ModulePath: f.Module.Mod.Path}
	for _, req := range f.Require {
		if req.Mod.Path == CanopyModule {
			info.CanopyVersion = req.Mod.Version
		}
	}
	for _, rep := range f.Replace {
		if rep.Old.Path == CanopyModule {
			info.Replaced = true
		}
	}
	if _, err := os.Stat(filepath.Join(root, config.FileName)); err == nil {
		info.ConfigPath = filepath.Join(root, config.FileName)
	}
	return info, nil
}
