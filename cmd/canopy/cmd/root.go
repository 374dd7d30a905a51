// Package cmd implements the canopy CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (tags, render, preview, status).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "canopy",
	Short: "Canopy - native component backends for retained-mode UI",
	Long: `Canopy renders element trees built from native backends registered
by tag. Scenes are described in canopy.yaml.

Use "canopy <command> --help" for more information about a command.`,
	Usage: "canopy [global flags] <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// globals holds flags accepted before the command name.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
}

var global globals

// stdout is where commands write their results. Tests replace it.
var stdout io.Writer = os.Stdout

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	global = globals{}

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(filteredArgs) > 0 {
			filteredArgs = append(filteredArgs, arg)
			continue
		}
		switch arg {
		case "-h", "--help", "help":
			printHelp(rootCmd)
			return nil
		case "-v", "--version", "version":
			fmt.Fprintf(stdout, "canopy version %s (built %s)\n", Version, BuildTime)
			return nil
		case "--config", "--log-level", "--log-format":
			if i+1 >= len(args) {
				return fmt.Errorf("%s requires a value", arg)
			}
			global.set(arg, args[i+1])
			i++
		default:
			if name, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "--") {
				if global.set(name, value) {
					continue
				}
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func (g *globals) set(name, value string) bool {
	switch name {
	case "--config":
		g.configPath = value
	case "--log-level":
		g.logLevel = value
	case "--log-format":
		g.logFormat = value
	default:
		return false
	}
	return true
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Global flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --config FILE        Configuration file (default: canopy.yaml in the module root)")
	fmt.Fprintln(stdout, "  --log-level LEVEL    debug, info, warn or error (overrides log.level)")
	fmt.Fprintln(stdout, "  --log-format FORMAT  text or json (overrides log.format)")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  canopy tags                      List registered backend tags")
	fmt.Fprintln(stdout, "  canopy render -o scene.png       Render the configured scene")
	fmt.Fprintln(stdout, "  canopy preview                   Preview the scene in the terminal")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
