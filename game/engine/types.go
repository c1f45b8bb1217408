package engine

import "time"

// CellKind is the static terrain kind of a board cell
type CellKind string

const (
	Plain      CellKind = "plain"
	Landmine   CellKind = "landmine"
	Freeze     CellKind = "freeze"
	Paintball  CellKind = "paintball"
	Teleporter CellKind = "teleporter"

	// Validation constants
	MinBoardSize   = 2
	MaxBoardSize   = 64
	MinPlayers     = 3
	MaxPlayers     = 4
	MaxHealthLimit = 1000
	MaxEventLog    = 2000
)

// Consumable reports whether the kind triggers once and then reverts to Plain
func (k CellKind) Consumable() bool {
	return k == Landmine || k == Freeze || k == Paintball
}

// Coord is a grid coordinate. X runs along the width, Z along the height.
type Coord struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Vec3 is a world-space point
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Cell represents a single board cell
type Cell struct {
	Pos         Coord    `json:"pos"`
	Kind        CellKind `json:"kind"`
	PairID      int      `json:"pair_id,omitempty"` // teleporters only, starts at 1
	Triggered   bool     `json:"triggered,omitempty"`
	CoolingDown bool     `json:"cooling_down,omitempty"` // snapshot only
}

// PlayerID is the stable registry index of a player
type PlayerID int

// NoPlayer marks events and results without a player, e.g. a draw
const NoPlayer PlayerID = -1

// Player is the registry record for one participant
type Player struct {
	ID          PlayerID `json:"id"`
	Name        string   `json:"name"`
	Position    Coord    `json:"position"`
	Health      int      `json:"health"`
	MaxHealth   int      `json:"max_health"`
	FrozenTurns int      `json:"frozen_turns"`
	Alive       bool     `json:"alive"`
	Color       string   `json:"color,omitempty"`
	LockedOut   bool     `json:"locked_out,omitempty"` // snapshot only
}

// Phase is the turn engine state
type Phase string

const (
	PhaseAwaitingMove Phase = "awaiting_move"
	PhaseResolving    Phase = "resolving"
	PhaseTurnEnded    Phase = "turn_ended"
	PhaseGameOver     Phase = "game_over"
)

// TurnState tracks whose turn it is and how many moves remain
type TurnState struct {
	Active         PlayerID `json:"active"`
	RemainingMoves int      `json:"remaining_moves"`
	Phase          Phase    `json:"phase"`
	Turn           int      `json:"turn"`
	Moving         *Motion  `json:"moving,omitempty"`
}

// Motion describes the one player currently travelling between cells
type Motion struct {
	Player   PlayerID `json:"player"`
	From     Coord    `json:"from"`
	To       Coord    `json:"to"`
	Position Vec3     `json:"position"`
	Progress float64  `json:"progress"`
}

// MoveResult classifies the outcome of a move attempt
type MoveResult string

const (
	MoveAccepted  MoveResult = "accepted"
	MoveIllegal   MoveResult = "illegal"
	MoveLockedOut MoveResult = "locked_out"
)

// MoveOutcome is returned by AttemptMove. Illegal and locked-out attempts are
// normal results and leave the engine untouched.
type MoveOutcome struct {
	Result         MoveResult `json:"result"`
	Player         PlayerID   `json:"player"`
	From           Coord      `json:"from"`
	To             Coord      `json:"to"`
	Distance       int        `json:"distance"`
	RemainingMoves int        `json:"remaining_moves"`
	Committed      bool       `json:"committed"`
	Reason         string     `json:"reason,omitempty"`
	Events         []Event    `json:"events,omitempty"`
}

// EventType names a notification emitted by the engine
type EventType string

const (
	EventPlayerMoved      EventType = "player_moved"
	EventPlayerDamaged    EventType = "player_damaged"
	EventPlayerFrozen     EventType = "player_frozen"
	EventPlayerRecolored  EventType = "player_recolored"
	EventPlayerTeleported EventType = "player_teleported"
	EventTeleportBlocked  EventType = "teleport_blocked"
	EventTurnSkipped      EventType = "turn_skipped"
	EventTurnAdvanced     EventType = "turn_advanced"
	EventPlayerEliminated EventType = "player_eliminated"
	EventLockoutReleased  EventType = "lockout_released"
	EventHealthReset      EventType = "health_reset"
	EventGameOver         EventType = "game_over"
)

// Event is a single engine notification for the presentation layer
type Event struct {
	Seq       int           `json:"seq"`
	Type      EventType     `json:"type"`
	Player    PlayerID      `json:"player"`
	From      *Coord        `json:"from,omitempty"`
	To        *Coord        `json:"to,omitempty"`
	Amount    int           `json:"amount,omitempty"`
	Health    int           `json:"health,omitempty"`
	Turns     int           `json:"turns,omitempty"`
	Color     string        `json:"color,omitempty"`
	Remaining int           `json:"remaining,omitempty"`
	Winner    *PlayerID     `json:"winner,omitempty"`
	At        time.Duration `json:"at"`
	Message   string        `json:"message"`
}

// GameState is the JSON-ready snapshot of a running game
type GameState struct {
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	TileSpacing    float64   `json:"tile_spacing"`
	Grid           [][]Cell  `json:"grid"` // indexed [z][x]
	Players        []Player  `json:"players"`
	Turn           TurnState `json:"turn"`
	LegalMoves     []Coord   `json:"legal_moves"`
	GameOver       bool      `json:"game_over"`
	Winner         *PlayerID `json:"winner,omitempty"`
	Message        string    `json:"message"`
	ConfigName     string    `json:"config_name"`
	LandmineDamage int       `json:"landmine_damage"`
	Seed           uint64    `json:"seed"`
	TotalEvents    int       `json:"total_events"`
	ClockMillis    int64     `json:"clock_ms"`
}
