// Package engine provides the core rules of the Landmines board game.
//
// The engine package implements the game mechanics including:
//   - Board geometry, world-space mapping and special tile generation
//   - The player registry with health, freeze and color bookkeeping
//   - The turn state machine with a Manhattan move budget
//   - Teleport lockouts and teleporter cooldowns on a virtual clock
//   - Configuration loading and validation
//
// Core Types:
//
// Board holds the grid and teleporter pairing table. Registry is the ordered
// player list, and its order is the turn order. TurnEngine implements the
// Engine interface and moves through the phases awaiting_move, resolving,
// turn_ended and game_over. Tile effects are applied by a TileResolver through
// the EffectTarget interface, which TurnEngine implements.
//
// Usage:
//
//	board, _ := engine.NewBoard(5, 15, 1)
//	board.Reserve(engine.StartCorners(5, 15, 3)...)
//	if err := board.GenerateSpecialTiles(cfg.ToCounts(), rng); err != nil {
//		log.Fatal(err)
//	}
//
//	e, err := engine.NewEngine(cfg.ToEngineConfig(seed), board, registry, resolver, rng, engine.NewClock())
//	if err != nil {
//		log.Fatal(err)
//	}
//	outcome, err := e.AttemptMove(engine.Coord{X: 2, Z: 1})
//
// Game Rules:
//
// Players take turns moving up to moves_per_turn cells by Manhattan distance.
// Landmines deal damage, freeze tiles end the turn and skip the player's next
// turns, paintballs recolor the player, and teleporters move the player to
// the paired tile. A player at zero health is eliminated and the last player
// standing wins.
package engine
