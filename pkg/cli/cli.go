// Package cli provides the command-line interface for backyard-e2e.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/backyard-e2e/pkg/core"
	"github.com/devicelab-dev/backyard-e2e/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config.yaml (default: ./config.yaml if present)",
		EnvVars: []string{"BACKYARD_E2E_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "appium-url",
		Usage:   "Appium server URL (overrides config)",
		EnvVars: []string{"APPIUM_URL"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"BACKYARD_E2E_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Write logs to this file instead of stderr",
	},
}

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "backyard-e2e",
		Usage:   "Probe and drive the Backyard Birds app through Appium",
		Version: Version,
		Description: `Each command opens an Appium session, performs one waited query or
action against the Backyard Birds app and prints a YAML result.

Examples:
  backyard-e2e probe
  backyard-e2e wait --until visible 'name == "Backyards" AND type == "XCUIElementTypeStaticText"'
  backyard-e2e count --wait --by a11y BirdsNavigationStack_Grid
  backyard-e2e launch-time --max 3s
  backyard-e2e diff before.png after.png --out diff.png`,
		Flags:     GlobalFlags,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Before:    setupLogging,
		After: func(*cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			probeCommand,
			waitCommand,
			countCommand,
			tapCommand,
			namesCommand,
			screenshotCommand,
			appearanceCommand,
			launchTimeCommand,
			diffCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine formats a command failure, tagged with its category when known.
func errorLine(err error) string {
	if cat := core.CategoryOf(err); cat != core.ErrCategoryNone {
		return fmt.Sprintf("Error [%s]: %v", cat, err)
	}
	return fmt.Sprintf("Error: %v", err)
}

func setupLogging(c *cli.Context) error {
	if path := c.String("log-file"); path != "" {
		return logger.Init(path, c.Bool("verbose"))
	}
	logger.SetOutput(c.App.ErrWriter, c.Bool("verbose"))
	return nil
}
