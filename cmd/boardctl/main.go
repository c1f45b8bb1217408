// Command boardctl previews, validates and analyzes landmines board
// configurations from the command line.
//
//	boardctl preview --seed 42 classic
//	boardctl validate configs/*.json
//	boardctl analyze --samples 100 four_players
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/landmines/game/config"
	"github.com/wricardo/mcp-training/landmines/game/engine"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "boardctl",
		Usage:  "inspect landmines board configurations",
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Commands: []*cli.Command{
			previewCommand(),
			validateCommand(),
			analyzeCommand(),
		},
	}
}

// resolveConfig loads a config by id from the config directory, or directly
// from a path when the argument looks like one. An empty argument selects the
// directory's default.
func resolveConfig(cmd *cli.Command, arg string) (*engine.GameConfig, error) {
	if strings.ContainsAny(arg, `/\`) {
		return config.LoadFile(arg)
	}

	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return nil, err
	}
	if arg == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(arg)
}
