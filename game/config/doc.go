// Package config provides configuration management for the Landmines game server.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - Board size and tile spacing
//   - Moves per turn and movement speed
//   - Special tile counts and their effect parameters
//   - Player count, names and maximum health
//
// Fields missing from a file keep the built-in classic values, so a file may
// only override what it changes:
//
//	{
//	  "name": "four-way",
//	  "width": 9,
//	  "height": 9,
//	  "player_count": 4
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig("classic")
//	if errors.Is(err, config.ErrConfigNotFound) {
//		cfg = manager.GetDefault()
//	}
//
// Parsed configurations are kept in a small LRU cache; RefreshCache drops it.
package config
