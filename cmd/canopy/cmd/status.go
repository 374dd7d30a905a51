package cmd

import (
	"fmt"
	"os"

	"github.com/go-drift/canopy/cmd/canopy/internal/project"
)

func init() {
	RegisterCommand(&Command{
		Name:  "status",
		Short: "Show project status",
		Long: `Show the Go module the command runs in, the canopy version it
requires and the configuration in effect.`,
		Usage: "canopy status",
		Run:   runStatus,
	})
}

func runStatus(args []string) error {
	cfg, err := prepare()
	if err != nil {
		return err
	}
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := project.FindRoot(dir)
	if err != nil {
		return err
	}
	info, err := project.Inspect(root)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Module:   %s (%s)\n", info.ModulePath, info.Root)
	switch {
	case info.ModulePath == project.CanopyModule:
		fmt.Fprintln(stdout, "Canopy:   this module")
	case info.CanopyVersion == "":
		fmt.Fprintln(stdout, "Canopy:   not required")
	case info.Replaced:
		fmt.Fprintf(stdout, "Canopy:   %s (replaced)\n", info.CanopyVersion)
	default:
		fmt.Fprintf(stdout, "Canopy:   %s\n", info.CanopyVersion)
	}
	if info.ConfigPath != "" {
		fmt.Fprintf(stdout, "Config:   %s\n", info.ConfigPath)
	} else {
		fmt.Fprintln(stdout, "Config:   defaults (no canopy.yaml)")
	}
	fmt.Fprintf(stdout, "Viewport: %gx%g\n", cfg.Viewport.Width, cfg.Viewport.Height)
	fmt.Fprintf(stdout, "Scene:    %d nodes\n", cfg.Scene.Count())
	return nil
}
