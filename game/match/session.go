// Package match composes a board, registry, resolver and turn engine into one
// playable game.
package match

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/landmines/game/effects"
	"github.com/wricardo/mcp-training/landmines/game/engine"
)

// GameSession owns every collaborator of a single game. It is not safe for
// concurrent use; callers serialize access.
type GameSession struct {
	config    *engine.GameConfig
	seed      uint64
	rng       *rand.Rand
	board     *engine.Board
	registry  *engine.Registry
	engine    *engine.TurnEngine
	clock     *engine.Clock
	listeners []func(engine.Event)
	restarts  int
}

// New builds a game from config. A zero seed falls back to config.Seed, and
// then to a random one.
func New(config *engine.GameConfig, seed uint64) (*GameSession, error) {
	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = config.Seed
	}
	if seed == 0 {
		seed = rand.Uint64()
	}

	s := &GameSession{config: config}
	if err := s.build(seed); err != nil {
		return nil, err
	}
	return s, nil
}

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// build generates a fresh board and player set from seed
func (s *GameSession) build(seed uint64) error {
	cfg := s.config
	rng := newRNG(seed)

	board, err := engine.NewBoard(cfg.Width, cfg.Height, cfg.TileSpacing)
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	starts := engine.StartCorners(cfg.Width, cfg.Height, cfg.PlayerCount)
	board.Reserve(starts...)
	if err := board.GenerateSpecialTiles(cfg.ToCounts(), rng); err != nil {
		return fmt.Errorf("generate board: %w", err)
	}

	registry, err := engine.NewRegistry(cfg.MaxHealth)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	for i, start := range starts {
		registry.AddPlayer(cfg.PlayerName(i), start)
	}

	clock := engine.NewClock()
	resolver := effects.NewResolver(effects.SettingsFromConfig(cfg))
	e, err := engine.NewEngine(cfg.ToEngineConfig(seed), board, registry, resolver, rng, clock)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	for _, fn := range s.listeners {
		e.Subscribe(fn)
	}

	s.seed = seed
	s.rng = rng
	s.board = board
	s.registry = registry
	s.clock = clock
	s.engine = e
	log.Debug("game built", "config", cfg.Name, "seed", seed, "players", len(starts))
	return nil
}

// OnCellActivated is the input entry point for a click or trigger on (x, z)
func (s *GameSession) OnCellActivated(x, z int) (engine.MoveOutcome, error) {
	return s.engine.AttemptMove(engine.Coord{X: x, Z: z})
}

// Advance feeds elapsed real time into the game clock
func (s *GameSession) Advance(dt time.Duration) {
	s.engine.Advance(dt)
}

// Subscribe registers fn for every event, including those of restarted games
func (s *GameSession) Subscribe(fn func(engine.Event)) {
	if fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
	s.engine.Subscribe(fn)
}

// Restart starts a new game with the same config and a board derived from
// the current seed
func (s *GameSession) Restart() error {
	next := s.rng.Uint64()
	if next == 0 {
		next = 1
	}
	if err := s.build(next); err != nil {
		return err
	}
	s.restarts++
	return nil
}

// Snapshot returns the JSON-ready game state
func (s *GameSession) Snapshot() *engine.GameState {
	state := s.engine.Snapshot()
	state.LandmineDamage = s.config.LandmineDamage
	return state
}

func (s *GameSession) Engine() *engine.TurnEngine { return s.engine }
func (s *GameSession) Board() *engine.Board       { return s.board }
func (s *GameSession) Registry() *engine.Registry { return s.registry }
func (s *GameSession) Config() *engine.GameConfig { return s.config }
func (s *GameSession) Seed() uint64               { return s.seed }
func (s *GameSession) Restarts() int              { return s.restarts }
func (s *GameSession) LegalMoves() []engine.Coord { return s.engine.LegalMoves() }
func (s *GameSession) Events() []engine.Event     { return s.engine.Events() }
func (s *GameSession) IsGameOver() bool           { return s.engine.IsGameOver() }
func (s *GameSession) Turn() engine.TurnState     { return s.engine.Turn() }
func (s *GameSession) EndTurn() error             { return s.engine.EndTurnForced() }

// ResetHealth heals every living player back to max health
func (s *GameSession) ResetHealth() error { return s.engine.ResetHealth() }
