package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/landmines/game/config"
	"github.com/wricardo/mcp-training/landmines/game/match"
)

// crowdedRatio is the share of free cells above which a board is reported as crowded
const crowdedRatio = 0.6

// ValidationResult captures the outcome of validating a single file.
// Notes are informational and never make a file invalid.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate configuration files (defaults to every file in --config-dir)",
		ArgsUsage: "[file.json ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				matches, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return err
				}
				files = matches
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found")
			}

			w := cmd.Root().Writer
			invalid := 0
			for _, file := range files {
				result := validateFile(file)
				if result.Valid {
					fmt.Fprintf(w, "✓ %s\n", result.File)
				} else {
					invalid++
					fmt.Fprintf(w, "✗ %s\n", result.File)
				}
				for _, e := range result.Errors {
					fmt.Fprintf(w, "    error: %s\n", e)
				}
				for _, n := range result.Notes {
					fmt.Fprintf(w, "    note: %s\n", n)
				}
			}

			fmt.Fprintf(w, "\n%d/%d valid\n", len(files)-invalid, len(files))
			if invalid > 0 {
				return fmt.Errorf("%d of %d configs invalid", invalid, len(files))
			}
			return nil
		},
	}
}

// validateFile loads a config file, validates it and checks that a board can
// actually be generated from it
func validateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	cfg, err := config.LoadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if _, err := match.New(cfg, 1); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Board generation failed: %v", err))
		return result
	}

	if id := strings.TrimSuffix(result.File, ".json"); cfg.Name != id {
		result.Notes = append(result.Notes, fmt.Sprintf("name %q differs from file id %q", cfg.Name, id))
	}
	free := cfg.Width*cfg.Height - cfg.PlayerCount
	if special := cfg.ToCounts().Total(); float64(special) > crowdedRatio*float64(free) {
		result.Notes = append(result.Notes, fmt.Sprintf("crowded board: %d special tiles on %d free cells", special, free))
	}
	if cfg.LandmineDamage >= cfg.MaxHealth {
		result.Notes = append(result.Notes, "a single landmine eliminates a player")
	}
	if cfg.LandmineCount == 0 {
		result.Notes = append(result.Notes, "no landmines")
	}

	return result
}
