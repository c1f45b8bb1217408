package engine

import (
	"fmt"
	"time"
)

// GameConfig represents a board game configuration loaded from JSON
type GameConfig struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TileSpacing float64 `json:"tile_spacing"`

	MovesPerTurn  int     `json:"moves_per_turn"`
	MovementSpeed float64 `json:"movement_speed"`

	LandmineCount       int     `json:"landmine_count"`
	LandmineDamage      int     `json:"landmine_damage"`
	FreezeCount         int     `json:"freeze_count"`
	FreezeTurns         int     `json:"freeze_turns"`
	PaintballCount      int     `json:"paintball_count"`
	PaintballColor      string  `json:"paintball_color"`
	PaintballDamage     int     `json:"paintball_damage"`
	TeleporterPairCount int     `json:"teleporter_pair_count"`
	TeleportCooldown    float64 `json:"teleport_cooldown"`          // seconds
	TeleportImmunity    float64 `json:"teleport_immunity_duration"` // seconds

	MaxHealth             int      `json:"max_health"`
	PlayerCount           int      `json:"player_count"`
	PlayerNames           []string `json:"player_names,omitempty"`
	CanTeleportToOccupied bool     `json:"can_teleport_to_occupied"`
	Seed                  uint64   `json:"seed,omitempty"`
}

// DefaultGameConfig returns the classic 5x15 three player setup
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:                "classic",
		Description:         "Three players on a 5x15 board with ten landmines",
		Width:               5,
		Height:              15,
		TileSpacing:         1,
		MovesPerTurn:        3,
		MovementSpeed:       5,
		LandmineCount:       10,
		LandmineDamage:      15,
		FreezeCount:         2,
		FreezeTurns:         1,
		PaintballCount:      2,
		PaintballColor:      "magenta",
		TeleporterPairCount: 1,
		TeleportCooldown:    0.7,
		TeleportImmunity:    0.7,
		MaxHealth:           100,
		PlayerCount:         3,
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	// Validate board geometry
	if config.Width < MinBoardSize || config.Width > MaxBoardSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Width)
	}
	if config.Height < MinBoardSize || config.Height > MaxBoardSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Height)
	}
	if config.TileSpacing <= 0 {
		return fmt.Errorf("config validation: tile_spacing must be positive, got %v", config.TileSpacing)
	}

	// Validate movement
	if config.MovesPerTurn < 1 {
		return fmt.Errorf("config validation: moves_per_turn must be at least 1, got %d", config.MovesPerTurn)
	}
	if config.MovementSpeed < 0 {
		return fmt.Errorf("config validation: movement_speed must not be negative, got %v", config.MovementSpeed)
	}

	// Validate players
	if config.PlayerCount < MinPlayers || config.PlayerCount > MaxPlayers {
		return fmt.Errorf("config validation: player_count must be %d or %d, got %d", MinPlayers, MaxPlayers, config.PlayerCount)
	}
	if len(config.PlayerNames) != 0 && len(config.PlayerNames) != config.PlayerCount {
		return fmt.Errorf("config validation: player_names must list %d names, got %d", config.PlayerCount, len(config.PlayerNames))
	}
	if config.MaxHealth < 1 || config.MaxHealth > MaxHealthLimit {
		return fmt.Errorf("config validation: max_health must be between 1 and %d, got %d", MaxHealthLimit, config.MaxHealth)
	}

	// Validate special tiles
	for field, v := range map[string]int{
		"landmine_count":        config.LandmineCount,
		"landmine_damage":       config.LandmineDamage,
		"freeze_count":          config.FreezeCount,
		"freeze_turns":          config.FreezeTurns,
		"paintball_count":       config.PaintballCount,
		"paintball_damage":      config.PaintballDamage,
		"teleporter_pair_count": config.TeleporterPairCount,
	} {
		if v < 0 {
			return fmt.Errorf("config validation: %s must not be negative, got %d", field, v)
		}
	}
	if config.TeleportCooldown < 0 || config.TeleportImmunity < 0 {
		return fmt.Errorf("config validation: teleport durations must not be negative")
	}

	// Start corners are kept free of special tiles
	free := config.Width*config.Height - config.PlayerCount
	if total := config.ToCounts().Total(); total > free {
		return fmt.Errorf("config validation: %d special tiles do not fit in %d free cells: %w", total, free, ErrInsufficientSpace)
	}

	return nil
}

// ToCounts converts the tile settings into generation counts
func (c *GameConfig) ToCounts() SpecialCounts {
	return SpecialCounts{
		Landmines:   c.LandmineCount,
		Freezes:     c.FreezeCount,
		Paintballs:  c.PaintballCount,
		Teleporters: 2 * c.TeleporterPairCount,
	}
}

// ToEngineConfig extracts the rules enforced by the turn engine
func (c *GameConfig) ToEngineConfig(seed uint64) EngineConfig {
	return EngineConfig{
		MovesPerTurn:          c.MovesPerTurn,
		MovementSpeed:         c.MovementSpeed,
		TeleportCooldown:      seconds(c.TeleportCooldown),
		TeleportImmunity:      seconds(c.TeleportImmunity),
		CanTeleportToOccupied: c.CanTeleportToOccupied,
		ConfigName:            c.Name,
		Seed:                  seed,
	}
}

// PlayerName returns the configured name for player i, or a default
func (c *GameConfig) PlayerName(i int) string {
	if i >= 0 && i < len(c.PlayerNames) && c.PlayerNames[i] != "" {
		return c.PlayerNames[i]
	}
	return fmt.Sprintf("Player %d", i+1)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
