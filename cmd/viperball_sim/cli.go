package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/viperball/matchsim/internal/config"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type command struct {
	name  string
	usage string
	flags func(fs *pflag.FlagSet)
	run   func(a *app, fs *pflag.FlagSet, stdout io.Writer) error
}

var commands = []command{
	{name: "game", usage: "simulate one game and print its result as JSON", flags: gameFlags, run: runGame},
	{name: "batch", usage: "simulate many games and store the results", flags: batchFlags, run: runBatch},
	{name: "evaluate", usage: "resolve a single snap from a given situation", flags: evaluateFlags, run: runEvaluate},
}

// flagKeys maps flags onto the configuration keys they override.
var flagKeys = map[string]string{
	"log-level":     "logLevel",
	"logs-dir":      "logsDir",
	"offense":       "sim.offenseStyle",
	"defense":       "sim.defenseStyle",
	"special-teams": "sim.specialTeams",
	"weather":       "sim.weather",
	"seed":          "sim.seed",
	"games":         "batch.games",
	"workers":       "batch.workers",
	"base-seed":     "batch.baseSeed",
	"roster-dir":    "batch.rosterDir",
	"label":         "batch.label",
	"storage":       "storage.type",
	"output-dir":    "storage.memory.outputDir",
	"write-plays":   "storage.writePlays",
}

// run executes one subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	name := strings.ToLower(args[0])
	switch name {
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	case "version", "--version":
		fmt.Fprintf(stdout, "%s %s (%s)\n", AppName, Version, BuildDate)
		return 0
	}

	cmd, ok := findCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	fs := pflag.NewFlagSet(AppName+" "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", ".", "directory holding "+config.FileName)
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("logs-dir", "", "directory for log files")
	cmd.flags(fs)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := bindFlags(fs); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	a := newApp(*configDir, stderr)
	defer a.close()

	if err := cmd.run(a, fs, stdout); err != nil {
		a.logger.Error("Command failed", "command", cmd.name, "error", err)
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// bindFlags lets every known flag override its configuration key when set.
func bindFlags(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			if err := viper.BindPFlag(key, f); err != nil {
				errs = append(errs, fmt.Errorf("binding --%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\nCommands:\n", AppName)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(w, "  %-9s %s\n", "version", "print the version")
	fmt.Fprintf(w, "\nRun '%s <command> --help' for the flags of a command.\n", AppName)
}

// simFlags registers the game settings shared by every command.
func simFlags(fs *pflag.FlagSet) {
	fs.String("offense", "", "default offense style")
	fs.String("defense", "", "default defense style")
	fs.String("weather", "", "weather key")
	fs.Int64("seed", 0, "random seed, 0 for a random one")
}
