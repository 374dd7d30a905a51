package cmd

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/go-drift/canopy/pkg/engine"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tags",
		Short: "List registered backend tags",
		Long: `List the backend tags available to scenes, with the module that
provides each one, followed by the script classes defined in canopy.yaml.`,
		Usage: "canopy tags",
		Run:   runTags,
	})
}

func runTags(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}
	cfg, err := prepare()
	if err != nil {
		return err
	}
	e, err := engine.New(cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tPROVIDER")
	for _, entry := range e.Registry().Entries() {
		provider := entry.Provider.String()
		if provider == "" {
			provider = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", entry.Tag, provider)
	}
	if len(cfg.Classes) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CLASS\tTAG")
		for _, name := range slices.Sorted(maps.Keys(cfg.Classes)) {
			fmt.Fprintf(tw, "%s\t%s\n", name, cfg.Classes[name])
		}
	}
	return tw.Flush()
}
