// Package results records the outcome of finished matches.
package results

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/landmines/game/engine"
)

// PlayerResult is a player's standing when the match ended
type PlayerResult struct {
	ID     engine.PlayerID `json:"id"`
	Name   string          `json:"name"`
	Health int             `json:"health"`
	Alive  bool            `json:"alive"`
	Color  string          `json:"color,omitempty"`
}

// MatchResult is one finished match. WinnerID is engine.NoPlayer for a draw.
type MatchResult struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	ConfigName string          `json:"config_name"`
	Seed       uint64          `json:"seed"`
	WinnerID   engine.PlayerID `json:"winner_id"`
	WinnerName string          `json:"winner_name"`
	Turns      int             `json:"turns"`
	Players    []PlayerResult  `json:"players"`
	FinishedAt time.Time       `json:"finished_at"`
}

// LeaderboardEntry counts wins per player name
type LeaderboardEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// Store persists match results
type Store interface {
	Record(ctx context.Context, result *MatchResult) error
	List(ctx context.Context, limit, offset int) ([]MatchResult, error)
	Count(ctx context.Context) (int, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Close() error
}

// FromState builds a result from the final snapshot of a game
func FromState(sessionID string, state *engine.GameState) *MatchResult {
	r := &MatchResult{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ConfigName: state.ConfigName,
		Seed:       state.Seed,
		WinnerID:   engine.NoPlayer,
		Turns:      state.Turn.Turn,
		FinishedAt: time.Now().UTC(),
	}
	if state.Winner != nil {
		r.WinnerID = *state.Winner
	}
	for _, p := range state.Players {
		r.Players = append(r.Players, PlayerResult{
			ID:     p.ID,
			Name:   p.Name,
			Health: p.Health,
			Alive:  p.Alive,
			Color:  p.Color,
		})
		if p.ID == r.WinnerID {
			r.WinnerName = p.Name
		}
	}
	return r
}
