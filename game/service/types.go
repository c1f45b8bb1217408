package service

import (
	"time"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/results"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           uint64             `json:"seed"`
	Restarts       int                `json:"restarts"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []engine.Event     `json:"events,omitempty"`
	Danger    string             `json:"danger,omitempty"`
}

// LegalMovesResult lists the cells the active player may move to
type LegalMovesResult struct {
	Player         engine.PlayerID `json:"player"`
	PlayerName     string          `json:"player_name"`
	Position       engine.Coord    `json:"position"`
	RemainingMoves int             `json:"remaining_moves"`
	Phase          engine.Phase    `json:"phase"`
	Moves          []engine.Coord  `json:"moves"`
}

// HistoryOptions configures event history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains a page of the retained event log
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Retained    int            `json:"retained"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ResultsResponse is a page of finished matches plus the win table
type ResultsResponse struct {
	Results     []results.MatchResult      `json:"results"`
	Total       int                        `json:"total"`
	Leaderboard []results.LeaderboardEntry `json:"leaderboard,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	PlayerCount  int    `json:"player_count"`
	MovesPerTurn int    `json:"moves_per_turn"`
}
