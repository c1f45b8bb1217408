package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/match"
)

var (
	cellStyles = map[engine.CellKind]lipgloss.Style{
		engine.Plain:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		engine.Landmine:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		engine.Freeze:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		engine.Paintball:  lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		engine.Teleporter: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}

	playerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "generate a board and render it",
		ArgsUsage: "[config id or path]",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "generation seed (0 picks a random one)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := resolveConfig(cmd, cmd.Args().First())
			if err != nil {
				return err
			}

			game, err := match.New(cfg, cmd.Uint64("seed"))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, renderPreview(game.Snapshot()))
			return nil
		},
	}
}

// glyph is the single character drawn for a cell. Teleporter pairs get
// matching letters.
func glyph(cell engine.Cell) string {
	switch cell.Kind {
	case engine.Landmine:
		return "M"
	case engine.Freeze:
		return "F"
	case engine.Paintball:
		return "P"
	case engine.Teleporter:
		return string(rune('a' + (cell.PairID-1)%26))
	default:
		return "."
	}
}

func renderBoard(state *engine.GameState) string {
	players := make(map[engine.Coord]engine.PlayerID, len(state.Players))
	for _, p := range state.Players {
		players[p.Position] = p.ID
	}

	var rows []string
	for z, row := range state.Grid {
		cells := make([]string, 0, len(row))
		for x, cell := range row {
			if id, ok := players[engine.Coord{X: x, Z: z}]; ok {
				cells = append(cells, playerStyle.Render(fmt.Sprint(int(id)+1)))
				continue
			}
			cells = append(cells, cellStyles[cell.Kind].Render(glyph(cell)))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

func renderPreview(state *engine.GameState) string {
	title := titleStyle.Render(fmt.Sprintf("%s  seed %d  %dx%d", state.ConfigName, state.Seed, state.Width, state.Height))

	var names []string
	for _, p := range state.Players {
		names = append(names, fmt.Sprintf("%d=%s", p.ID+1, p.Name))
	}

	legend := dimStyle.Render(fmt.Sprintf(
		"M landmine (%d)  F freeze (%d)  P paintball (%d)  a-z teleporter pairs (%d)\n%s",
		engine.CountCellKind(state.Grid, engine.Landmine),
		engine.CountCellKind(state.Grid, engine.Freeze),
		engine.CountCellKind(state.Grid, engine.Paintball),
		engine.CountCellKind(state.Grid, engine.Teleporter)/2,
		strings.Join(names, "  "),
	))

	return lipgloss.JoinVertical(lipgloss.Left, title, boardStyle.Render(renderBoard(state)), legend)
}
