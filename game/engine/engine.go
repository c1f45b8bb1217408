package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"
)

// Engine provides the turn engine operations used by sessions and effects
type Engine interface {
	// Turn flow
	AttemptMove(target Coord) (MoveOutcome, error)
	EndTurnForced() error
	Teleport(id PlayerID, dest Coord) error
	LegalMoves() []Coord
	Advance(dt time.Duration)

	// Queries
	Turn() TurnState
	IsGameOver() bool
	Winner() (PlayerID, bool)
	Snapshot() *GameState

	// Events
	Subscribe(fn func(Event))
	Events() []Event
}

// EffectTarget is the mutation surface tile effects are applied through
type EffectTarget interface {
	Damage(id PlayerID, amount int)
	Freeze(id PlayerID, turns int)
	Recolor(id PlayerID, color string)
	Teleport(id PlayerID, dest Coord) error
	Consume(at Coord)
	PairedCell(at Coord) (Coord, bool)
	TeleporterReady(at Coord) bool
	StartTeleporterCooldown(at Coord)
}

// TileResolver applies the effect of the cell a player landed on
type TileResolver interface {
	Resolve(target EffectTarget, player PlayerID, cell Cell)
}

// EngineConfig holds the rules the turn engine enforces
type EngineConfig struct {
	MovesPerTurn          int
	MovementSpeed         float64 // world units per second, 0 commits instantly
	TeleportCooldown      time.Duration
	TeleportImmunity      time.Duration
	CanTeleportToOccupied bool
	ConfigName            string
	Seed                  uint64
}

// TurnEngine implements Engine with the Manhattan move budget policy: a
// target is legal when 0 < distance <= remaining moves, and every cell
// travelled costs one move.
type TurnEngine struct {
	cfg      EngineConfig
	board    *Board
	registry *Registry
	resolver TileResolver
	rng      *rand.Rand
	clock    *Clock

	turn        TurnState
	moving      *mover
	winner      PlayerID
	lockedUntil map[PlayerID]time.Duration
	cooldowns   map[Coord]time.Duration

	events      []Event
	totalEvents int
	subscribers []func(Event)
	message     string
}

// NewEngine wires the collaborators and hands the first turn to a player
// drawn from rng
func NewEngine(cfg EngineConfig, board *Board, registry *Registry, resolver TileResolver, rng *rand.Rand, clock *Clock) (*TurnEngine, error) {
	switch {
	case board == nil:
		return nil, fmt.Errorf("new engine: board: %w", ErrMissingCollaborator)
	case registry == nil:
		return nil, fmt.Errorf("new engine: registry: %w", ErrMissingCollaborator)
	case resolver == nil:
		return nil, fmt.Errorf("new engine: resolver: %w", ErrMissingCollaborator)
	case rng == nil:
		return nil, fmt.Errorf("new engine: rng: %w", ErrMissingCollaborator)
	case clock == nil:
		return nil, fmt.Errorf("new engine: clock: %w", ErrMissingCollaborator)
	}
	if cfg.MovesPerTurn < 1 {
		return nil, fmt.Errorf("moves per turn %d must be at least 1", cfg.MovesPerTurn)
	}
	if registry.AliveCount() == 0 {
		return nil, fmt.Errorf("new engine: no players registered")
	}

	e := &TurnEngine{
		cfg:         cfg,
		board:       board,
		registry:    registry,
		resolver:    resolver,
		rng:         rng,
		clock:       clock,
		winner:      NoPlayer,
		lockedUntil: make(map[PlayerID]time.Duration),
		cooldowns:   make(map[Coord]time.Duration),
	}

	alive := registry.AliveIDs()
	first := alive[rng.IntN(len(alive))]
	e.turn = TurnState{
		Active:         first,
		RemainingMoves: cfg.MovesPerTurn,
		Phase:          PhaseAwaitingMove,
		Turn:           1,
	}
	if len(alive) <= 1 {
		e.finish()
	} else {
		e.emit(Event{Type: EventTurnAdvanced, Player: first, Remaining: cfg.MovesPerTurn,
			Message: fmt.Sprintf("%s starts", e.name(first))})
	}
	return e, nil
}

// AttemptMove validates and executes a move of the active player
func (e *TurnEngine) AttemptMove(target Coord) (MoveOutcome, error) {
	if e.turn.Phase == PhaseGameOver {
		return MoveOutcome{}, ErrGameOver
	}
	if e.turn.Phase != PhaseAwaitingMove {
		return MoveOutcome{}, fmt.Errorf("attempt move in phase %s: %w", e.turn.Phase, ErrResolving)
	}
	if !e.board.InBounds(target) {
		return MoveOutcome{}, fmt.Errorf("move to (%d,%d): %w", target.X, target.Z, ErrOutOfBounds)
	}

	id := e.turn.Active
	p := e.registry.players[id]
	d := ManhattanDistance(p.Position, target)
	out := MoveOutcome{
		Player:         id,
		From:           p.Position,
		To:             target,
		Distance:       d,
		RemainingMoves: e.turn.RemainingMoves,
	}

	switch {
	case e.isLockedOut(id):
		out.Result = MoveLockedOut
		out.Reason = fmt.Sprintf("%s is recovering from a teleport", p.Name)
		return out, nil
	case p.FrozenTurns > 0:
		out.Result = MoveIllegal
		out.Reason = fmt.Sprintf("%s is frozen", p.Name)
		return out, nil
	case d == 0:
		out.Result = MoveIllegal
		out.Reason = "target is the current cell"
		return out, nil
	case d > e.turn.RemainingMoves:
		out.Result = MoveIllegal
		out.Reason = fmt.Sprintf("distance %d exceeds remaining moves %d", d, e.turn.RemainingMoves)
		return out, nil
	}

	mark := e.totalEvents
	e.turn.RemainingMoves -= d
	e.turn.Phase = PhaseResolving
	out.Result = MoveAccepted

	if e.cfg.MovementSpeed <= 0 {
		e.commit(id, p.Position, target)
		out.Committed = true
	} else {
		e.moving = newMover(e.board, id, p.Position, target, e.cfg.MovementSpeed)
		e.message = fmt.Sprintf("%s is moving to (%d,%d)", p.Name, target.X, target.Z)
	}

	out.RemainingMoves = e.turn.RemainingMoves
	out.Events = e.eventsSince(mark)
	log.Debug("move accepted", "player", id, "from", out.From, "to", target, "remaining", out.RemainingMoves)
	return out, nil
}

// EndTurnForced ends the active player's turn regardless of remaining moves
func (e *TurnEngine) EndTurnForced() error {
	if e.turn.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if e.moving != nil {
		return fmt.Errorf("end turn: %w", ErrResolving)
	}
	e.turn.Phase = PhaseTurnEnded
	e.advanceTurn()
	return nil
}

// Advance drives the clock and any movement in flight
func (e *TurnEngine) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	e.clock.Advance(dt)
	if e.moving != nil && e.moving.step(dt.Seconds()) {
		m := e.moving
		e.moving = nil
		e.commit(m.player, m.from, m.to)
	}
}

// commit places the player, resolves the destination tile and settles the turn
func (e *TurnEngine) commit(id PlayerID, from, to Coord) {
	e.registry.setPosition(id, to)
	e.emit(Event{Type: EventPlayerMoved, Player: id, From: &from, To: &to,
		Message: fmt.Sprintf("%s moved from (%d,%d) to (%d,%d)", e.name(id), from.X, from.Z, to.X, to.Z)})

	cell := *e.board.cells[to]
	e.resolver.Resolve(e, id, cell)
	e.settle()
}

// settle leaves Resolving once the tile effect has been applied
func (e *TurnEngine) settle() {
	if e.turn.Phase == PhaseGameOver {
		return
	}
	if e.registry.AliveCount() <= 1 {
		e.finish()
		return
	}
	p := e.registry.players[e.turn.Active]
	if !p.Alive || p.FrozenTurns > 0 || e.turn.RemainingMoves <= 0 {
		e.turn.Phase = PhaseTurnEnded
		e.advanceTurn()
		return
	}
	e.turn.Phase = PhaseAwaitingMove
	e.message = fmt.Sprintf("%s has %d moves left", p.Name, e.turn.RemainingMoves)
}

// IsGameOver reports whether the terminal phase was reached
func (e *TurnEngine) IsGameOver() bool {
	return e.turn.Phase == PhaseGameOver
}

// Winner returns the last player standing, if any
func (e *TurnEngine) Winner() (PlayerID, bool) {
	return e.winner, e.winner != NoPlayer
}

// Turn returns a copy of the turn state
func (e *TurnEngine) Turn() TurnState {
	t := e.turn
	if e.moving != nil {
		t.Moving = e.moving.snapshot()
	}
	return t
}

// Now returns the engine clock time
func (e *TurnEngine) Now() time.Duration {
	return e.clock.Now()
}

// LegalMoves lists the cells the active player may target, sorted by (z, x)
func (e *TurnEngine) LegalMoves() []Coord {
	set := e.legalSet()
	moves := make([]Coord, 0, set.Size())
	set.Each(func(c Coord) {
		moves = append(moves, c)
	})
	sort.Slice(moves, func(i, j int) bool {
		if moves[i].Z != moves[j].Z {
			return moves[i].Z < moves[j].Z
		}
		return moves[i].X < moves[j].X
	})
	return moves
}

// IsLegal reports whether the active player may target c right now
func (e *TurnEngine) IsLegal(c Coord) bool {
	return e.legalSet().Has(c)
}

// legalSet is the Manhattan disk around the active player clipped to the board
func (e *TurnEngine) legalSet() mapset.Set[Coord] {
	set := mapset.New[Coord]()
	if e.turn.Phase != PhaseAwaitingMove {
		return set
	}
	p := e.registry.players[e.turn.Active]
	if p.FrozenTurns > 0 || e.isLockedOut(p.ID) {
		return set
	}
	r := e.turn.RemainingMoves
	for dz := -r; dz <= r; dz++ {
		span := r - abs(dz)
		for dx := -span; dx <= span; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			c := Coord{X: p.Position.X + dx, Z: p.Position.Z + dz}
			if e.board.InBounds(c) {
				set.Put(c)
			}
		}
	}
	return set
}

// Snapshot returns a JSON-ready copy of the game
func (e *TurnEngine) Snapshot() *GameState {
	grid := e.board.Cells()
	for c, until := range e.cooldowns {
		if e.clock.Now() < until {
			grid[c.Z][c.X].CoolingDown = true
		}
	}
	players := e.registry.Players()
	for i := range players {
		players[i].LockedOut = e.isLockedOut(players[i].ID)
	}

	state := &GameState{
		Width:       e.board.width,
		Height:      e.board.height,
		TileSpacing: e.board.spacing,
		Grid:        grid,
		Players:     players,
		Turn:        e.Turn(),
		LegalMoves:  e.LegalMoves(),
		GameOver:    e.IsGameOver(),
		Message:     e.message,
		ConfigName:  e.cfg.ConfigName,
		Seed:        e.cfg.Seed,
		TotalEvents: e.totalEvents,
		ClockMillis: e.clock.Now().Milliseconds(),
	}
	if w, ok := e.Winner(); ok {
		state.Winner = &w
	}
	return state
}

func (e *TurnEngine) name(id PlayerID) string {
	if id < 0 || int(id) >= len(e.registry.players) {
		return "nobody"
	}
	return e.registry.players[id].Name
}
