package main

import (
	"context"
	"fmt"
	"os"

	isatty "github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/theflywheel/dhash/internal/logger"
)

// Version is set at build time.
var Version = "dev"

// globalFlags are available on every command.
var globalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "json",
		Usage: "Output logs as JSON. Set to true if stdout is not a TTY.",
	},
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "Enable verbose logging, including table resizes.",
	},
	&cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Value:   "info",
		Usage:   "Set the log level. One of: trace, debug, info, warn, error.",
	},
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to a YAML or JSON config file.",
		Sources: cli.EnvVars("DHASH_CONFIG"),
	},
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "dhash",
		Usage:   "Drive and measure a double hashing hash table.",
		Version: Version,
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("json") {
				os.Setenv("LOG_HANDLER", "json")
			}

			if os.Getenv("LOG_LEVEL") == "" {
				switch {
				case cmd.IsSet("log-level"):
					os.Setenv("LOG_LEVEL", cmd.String("log-level"))
				case cmd.Bool("verbose"):
					os.Setenv("LOG_LEVEL", "debug")
				default:
					os.Setenv("LOG_LEVEL", "info")
				}
			}

			return logger.WithContext(ctx, logger.New()), nil
		},
		Flags: globalFlags,
		Commands: []*cli.Command{
			runCommand(),
			benchCommand(),
			compareCommand(),
			versionCommand(),
		},
	}
}

func execute() {
	app := newApp()
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		// Always use JSON when not in a terminal
		os.Setenv("LOG_HANDLER", "json")
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Shows the dhash version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintln(cmd.Root().Writer, Version)
			return nil
		},
	}
}
