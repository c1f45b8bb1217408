package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func createValidConfig() *GameConfig {
	config := DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "A valid test configuration"
	return config
}

func TestDefaultGameConfig(t *testing.T) {
	config := DefaultGameConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Expected default config to be valid, got: %v", err)
	}
	if config.Width != 5 || config.Height != 15 || config.MovesPerTurn != 3 {
		t.Errorf("Unexpected default geometry: %+v", config)
	}
	counts := config.ToCounts()
	if counts.Landmines != 10 || counts.Freezes != 2 || counts.Paintballs != 2 || counts.Teleporters != 2 {
		t.Errorf("Unexpected default counts: %+v", counts)
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	config := createValidConfig()
	err := ValidateGameConfig(config)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_MissingName(t *testing.T) {
	config := createValidConfig()
	config.Name = ""
	err := ValidateGameConfig(config)
	if err == nil {
		t.Fatal("Expected error for missing name")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Expected name validation error, got: %v", err)
	}
}

func TestValidateGameConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(c *GameConfig)
		expectedError string
	}{
		{"width too small", func(c *GameConfig) { c.Width = 1 }, "width must be between"},
		{"height too large", func(c *GameConfig) { c.Height = MaxBoardSize + 1 }, "height must be between"},
		{"zero spacing", func(c *GameConfig) { c.TileSpacing = 0 }, "tile_spacing must be positive"},
		{"no moves", func(c *GameConfig) { c.MovesPerTurn = 0 }, "moves_per_turn must be at least 1"},
		{"negative speed", func(c *GameConfig) { c.MovementSpeed = -1 }, "movement_speed must not be negative"},
		{"two players", func(c *GameConfig) { c.PlayerCount = 2 }, "player_count must be 3 or 4"},
		{"five players", func(c *GameConfig) { c.PlayerCount = 5 }, "player_count must be 3 or 4"},
		{"name count", func(c *GameConfig) { c.PlayerNames = []string{"a", "b"} }, "player_names must list 3 names"},
		{"zero health", func(c *GameConfig) { c.MaxHealth = 0 }, "max_health must be between"},
		{"negative landmines", func(c *GameConfig) { c.LandmineCount = -1 }, "landmine_count must not be negative"},
		{"negative freeze turns", func(c *GameConfig) { c.FreezeTurns = -2 }, "freeze_turns must not be negative"},
		{"negative cooldown", func(c *GameConfig) { c.TeleportCooldown = -0.5 }, "teleport durations"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createValidConfig()
			test.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatalf("Expected error containing '%s'", test.expectedError)
			}
			if !strings.Contains(err.Error(), test.expectedError) {
				t.Errorf("Expected error containing '%s', got: %v", test.expectedError, err)
			}
		})
	}
}

func TestValidateGameConfig_InsufficientSpace(t *testing.T) {
	config := createValidConfig()
	config.Width, config.Height = 3, 3
	config.LandmineCount = 6 // 9 cells, 3 start corners
	config.FreezeCount, config.PaintballCount, config.TeleporterPairCount = 0, 0, 0
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Expected exactly filling the board to be valid, got: %v", err)
	}

	config.LandmineCount = 7
	if err := ValidateGameConfig(config); !errors.Is(err, ErrInsufficientSpace) {
		t.Errorf("Expected ErrInsufficientSpace, got: %v", err)
	}
}

func TestGameConfig_Conversions(t *testing.T) {
	config := createValidConfig()
	config.PlayerNames = []string{"Ana", "", "Caio"}

	ec := config.ToEngineConfig(42)
	if ec.MovesPerTurn != 3 || ec.Seed != 42 || ec.ConfigName != "Test Config" {
		t.Errorf("Unexpected engine config: %+v", ec)
	}
	if ec.TeleportCooldown != 700*time.Millisecond || ec.TeleportImmunity != 700*time.Millisecond {
		t.Errorf("Expected 700ms teleport durations, got %v and %v", ec.TeleportCooldown, ec.TeleportImmunity)
	}

	if got := config.PlayerName(0); got != "Ana" {
		t.Errorf("Expected Ana, got %s", got)
	}
	if got := config.PlayerName(1); got != "Player 2" {
		t.Errorf("Expected default name for empty entry, got %s", got)
	}
}
