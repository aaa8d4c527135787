// synaptix is a command-line harness for the Synaptix node registry and
// manager: it runs deterministic in-memory network scenarios and
// inspects the effective protocol configuration.
package main

import (
	"fmt"
	"os"

	log "github.com/inconshreveable/log15"
	"github.com/urfave/cli/v2"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""

var app *cli.App

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML file overriding the default registry/manager parameters",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level (debug, info, warn, error, crit)",
		Value: "info",
	}
)

func init() {
	app = cli.NewApp()
	app.Name = "synaptix"
	app.Usage = "Synaptix compute-network node registry tooling"
	app.Version = version()
	app.Commands = []*cli.Command{
		commandSimulate,
		commandParams,
	}
	app.Flags = []cli.Flag{configFlag, verbosityFlag}
	app.Before = setupLogging
}

func version() string {
	if len(gitCommit) >= 8 {
		return gitCommit[:8]
	}
	if gitCommit != "" {
		return gitCommit
	}
	return "dev"
}

func setupLogging(c *cli.Context) error {
	lvl, err := log.LvlFromString(c.String(verbosityFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid verbosity: %w", err)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
