package main

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/match"
)

// CornerStats aggregates what a player starting at one corner faces
type CornerStats struct {
	Start           engine.Coord
	AvgNearestMine  float64
	AvgMinesInReach float64
}

// Analysis summarizes a configuration over a range of generated boards
type Analysis struct {
	Config          string
	Samples         int
	Cells           int
	Density         map[engine.CellKind]float64
	AvgTeleportSpan float64
	MinTurnsToCross int
	Corners         []CornerStats
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "generate many boards and report layout statistics",
		ArgsUsage: "[config id or path]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "samples",
				Value: 50,
				Usage: "number of boards to generate",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "first seed, later samples use consecutive seeds",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd, cmd.Args().First())
			if err != nil {
				return err
			}

			samples := int(cmd.Int("samples"))
			if samples <= 0 {
				return fmt.Errorf("samples must be positive, got %d", samples)
			}

			seeds := make([]uint64, samples)
			for i := range seeds {
				seeds[i] = cmd.Uint64("seed") + uint64(i)
			}

			a, err := analyze(cfg, seeds)
			if err != nil {
				return err
			}
			formatAnalysis(cmd.Root().Writer, a)
			return nil
		},
	}
}

func analyze(cfg *engine.GameConfig, seeds []uint64) (*Analysis, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds to analyze")
	}

	a := &Analysis{
		Config:          cfg.Name,
		Samples:         len(seeds),
		Cells:           cfg.Width * cfg.Height,
		Density:         make(map[engine.CellKind]float64),
		MinTurnsToCross: minTurnsToCross(cfg),
	}

	starts := engine.StartCorners(cfg.Width, cfg.Height, cfg.PlayerCount)
	a.Corners = make([]CornerStats, len(starts))
	for i, c := range starts {
		a.Corners[i].Start = c
	}

	kinds := []engine.CellKind{engine.Landmine, engine.Freeze, engine.Paintball, engine.Teleporter}
	spans, pairs := 0, 0

	for _, seed := range seeds {
		game, err := match.New(cfg, seed)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
		grid := game.Board().Cells()

		for _, kind := range kinds {
			a.Density[kind] += float64(engine.CountCellKind(grid, kind))
		}

		for _, ends := range game.Board().Teleporters() {
			spans += engine.ManhattanDistance(ends[0], ends[1])
			pairs++
		}

		for i := range a.Corners {
			start := a.Corners[i].Start
			if _, d, ok := engine.FindNearestKind(grid, start, engine.Landmine); ok {
				a.Corners[i].AvgNearestMine += float64(d)
			}
			a.Corners[i].AvgMinesInReach += float64(minesWithin(grid, start, cfg.MovesPerTurn))
		}
	}

	n := float64(len(seeds))
	for kind := range a.Density {
		a.Density[kind] /= n * float64(a.Cells)
	}
	if pairs > 0 {
		a.AvgTeleportSpan = float64(spans) / float64(pairs)
	}
	for i := range a.Corners {
		a.Corners[i].AvgNearestMine /= n
		a.Corners[i].AvgMinesInReach /= n
	}

	return a, nil
}

// minesWithin counts landmines no more than reach steps away from c
func minesWithin(grid [][]engine.Cell, c engine.Coord, reach int) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == engine.Landmine && engine.ManhattanDistance(c, cell.Pos) <= reach {
				count++
			}
		}
	}
	return count
}

// minTurnsToCross is the number of full turns a player needs to walk from one
// corner to the opposite one on an empty board
func minTurnsToCross(cfg *engine.GameConfig) int {
	if cfg.MovesPerTurn <= 0 {
		return 0
	}
	steps := (cfg.Width - 1) + (cfg.Height - 1)
	return int(math.Ceil(float64(steps) / float64(cfg.MovesPerTurn)))
}

func formatAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Config: %s (%d boards, %d cells)\n", a.Config, a.Samples, a.Cells)
	fmt.Fprintln(w, "Density:")
	for _, kind := range []engine.CellKind{engine.Landmine, engine.Freeze, engine.Paintball, engine.Teleporter} {
		fmt.Fprintf(w, "  %-10s %5.1f%%\n", kind, a.Density[kind]*100)
	}
	if a.AvgTeleportSpan > 0 {
		fmt.Fprintf(w, "Average teleporter span: %.2f\n", a.AvgTeleportSpan)
	}
	fmt.Fprintf(w, "Minimum turns to cross: %d\n", a.MinTurnsToCross)
	fmt.Fprintln(w, "Starts:")
	for _, c := range a.Corners {
		fmt.Fprintf(w, "  (%d,%d) nearest mine %.2f, mines in reach %.2f\n",
			c.Start.X, c.Start.Z, c.AvgNearestMine, c.AvgMinesInReach)
	}
}
