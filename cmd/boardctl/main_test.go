package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/landmines/game/engine"
)

const smallConfig = `{
	"name": "small",
	"width": 4,
	"height": 4,
	"moves_per_turn": 2,
	"landmine_count": 3,
	"freeze_count": 1,
	"paintball_count": 1,
	"teleporter_pair_count": 1,
	"player_count": 2
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{"boardctl"}, args...))
	return out.String(), err
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantValid bool
		wantNote  string
	}{
		{
			name:      "valid config",
			file:      "small.json",
			content:   smallConfig,
			wantValid: true,
		},
		{
			name:      "invalid JSON",
			file:      "broken.json",
			content:   `{"name": "broken", invalid}`,
			wantValid: false,
		},
		{
			name:      "too many tiles",
			file:      "full.json",
			content:   `{"name": "full", "width": 3, "height": 3, "landmine_count": 20, "player_count": 2}`,
			wantValid: false,
		},
		{
			name:      "name mismatch",
			file:      "other.json",
			content:   `{"name": "something_else"}`,
			wantValid: true,
			wantNote:  "differs from file id",
		},
		{
			name:      "lethal landmines",
			file:      "lethal.json",
			content:   `{"name": "lethal", "landmine_damage": 100}`,
			wantValid: true,
			wantNote:  "single landmine eliminates",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateFile(writeFile(t, dir, tt.file, tt.content))

			if result.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if result.File != tt.file {
				t.Errorf("Expected file %s, got %s", tt.file, result.File)
			}
			if !tt.wantValid && len(result.Errors) == 0 {
				t.Error("Expected at least one error")
			}
			if tt.wantNote != "" && !strings.Contains(strings.Join(result.Notes, "\n"), tt.wantNote) {
				t.Errorf("Expected note containing %q, got %v", tt.wantNote, result.Notes)
			}
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	result := validateFile(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected missing file to be invalid")
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.json", smallConfig)

	out, err := run(t, "--config-dir", dir, "validate")
	if err != nil {
		t.Fatalf("Failed to validate directory: %v", err)
	}
	if !strings.Contains(out, "✓ small.json") || !strings.Contains(out, "1/1 valid") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	writeFile(t, dir, "broken.json", `not json`)
	out, err = run(t, "--config-dir", dir, "validate")
	if err == nil {
		t.Error("Expected error when a config is invalid")
	}
	if !strings.Contains(out, "✗ broken.json") || !strings.Contains(out, "1/2 valid") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestValidateCommand_EmptyDir(t *testing.T) {
	if _, err := run(t, "--config-dir", t.TempDir(), "validate"); err == nil {
		t.Error("Expected error for a directory without configs")
	}
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.json", smallConfig)

	first, err := run(t, "--config-dir", dir, "preview", "--seed", "42", "small")
	if err != nil {
		t.Fatalf("Failed to preview: %v", err)
	}
	second, err := run(t, "--config-dir", dir, "preview", "--seed", "42", "small")
	if err != nil {
		t.Fatalf("Failed to preview: %v", err)
	}

	if first != second {
		t.Errorf("Expected identical previews for the same seed:\n%s\n---\n%s", first, second)
	}
	for _, want := range []string{"small", "seed 42", "4x4", "1=", "2=", "M landmine (3)"} {
		if !strings.Contains(first, want) {
			t.Errorf("Expected preview to contain %q:\n%s", want, first)
		}
	}
}

func TestPreviewCommand_ByPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "small.json", smallConfig)

	out, err := run(t, "preview", "--seed", "7", path)
	if err != nil {
		t.Fatalf("Failed to preview by path: %v", err)
	}
	if !strings.Contains(out, "seed 7") {
		t.Errorf("Expected seed in title:\n%s", out)
	}
}

func TestPreviewCommand_UnknownConfig(t *testing.T) {
	if _, err := run(t, "--config-dir", t.TempDir(), "preview", "missing"); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestRenderBoard(t *testing.T) {
	state := &engine.GameState{
		Width:  3,
		Height: 2,
		Grid: [][]engine.Cell{
			{{Kind: engine.Plain}, {Kind: engine.Landmine}, {Kind: engine.Teleporter, PairID: 1}},
			{{Kind: engine.Teleporter, PairID: 1}, {Kind: engine.Freeze}, {Kind: engine.Paintball}},
		},
		Players: []engine.Player{
			{ID: 0, Position: engine.Coord{X: 0, Z: 0}},
			{ID: 1, Position: engine.Coord{X: 2, Z: 1}},
		},
	}

	lines := strings.Split(renderBoard(state), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "1") || !strings.Contains(lines[0], "M") || !strings.Contains(lines[0], "a") {
		t.Errorf("Unexpected first row %q", lines[0])
	}
	if !strings.Contains(lines[1], "a") || !strings.Contains(lines[1], "F") || !strings.Contains(lines[1], "2") {
		t.Errorf("Unexpected second row %q", lines[1])
	}
	if strings.Contains(lines[1], "P") {
		t.Errorf("Expected player to hide the paintball tile, got %q", lines[1])
	}
}

func TestAnalyze(t *testing.T) {
	cfg := engine.DefaultGameConfig()

	a, err := analyze(cfg, []uint64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}

	if a.Samples != 5 || a.Cells != 75 {
		t.Errorf("Expected 5 samples of 75 cells, got %d and %d", a.Samples, a.Cells)
	}

	want := map[engine.CellKind]float64{
		engine.Landmine:   10.0 / 75,
		engine.Freeze:     2.0 / 75,
		engine.Paintball:  2.0 / 75,
		engine.Teleporter: 2.0 / 75,
	}
	for kind, density := range want {
		if diff := a.Density[kind] - density; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Expected %s density %.4f, got %.4f", kind, density, a.Density[kind])
		}
	}

	if len(a.Corners) != 3 {
		t.Fatalf("Expected 3 start corners, got %d", len(a.Corners))
	}
	for _, c := range a.Corners {
		if c.AvgNearestMine < 1 {
			t.Errorf("Expected start %v to be at least one step from a mine, got %.2f", c.Start, c.AvgNearestMine)
		}
	}
	if a.AvgTeleportSpan < 1 {
		t.Errorf("Expected positive teleporter span, got %.2f", a.AvgTeleportSpan)
	}
	// 4 + 14 steps at 3 per turn
	if a.MinTurnsToCross != 6 {
		t.Errorf("Expected 6 turns to cross, got %d", a.MinTurnsToCross)
	}
}

func TestAnalyze_NoSeeds(t *testing.T) {
	if _, err := analyze(engine.DefaultGameConfig(), nil); err == nil {
		t.Error("Expected error without seeds")
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.json", smallConfig)

	out, err := run(t, "--config-dir", dir, "analyze", "--samples", "10", "small")
	if err != nil {
		t.Fatalf("Failed to analyze: %v", err)
	}
	for _, want := range []string{"Config: small (10 boards, 16 cells)", "landmine", "Minimum turns to cross: 3", "(0,0)", "(3,3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "--config-dir", dir, "analyze", "--samples", "0", "small"); err == nil {
		t.Error("Expected error for zero samples")
	}
}
