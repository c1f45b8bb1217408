package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/match"
)

// TickInterval is how often a session loop feeds real time into its game clock
const TickInterval = 50 * time.Millisecond

var ErrSessionStopped = errors.New("session stopped")

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed uint64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID string, x, z int) (*MoveResult, error)
	LegalMoves(ctx context.Context, sessionID string) (*LegalMovesResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)
	ResetHealth(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Results
	ListResults(ctx context.Context, limit, offset int) (*ResultsResponse, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed uint64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig, seed uint64) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// EventPublisher receives every game event together with the state after it
type EventPublisher interface {
	PublishEvent(sessionID string, event engine.Event, state *engine.GameState)
}

// Session represents an active game session. The game is only touched from
// the session's own loop goroutine; use Do to reach it.
type Session struct {
	ID        string
	Config    *engine.GameConfig
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time

	game     *match.GameSession
	commands chan command
	done     chan struct{}
	stopOnce sync.Once
}

type command struct {
	fn    func(*match.GameSession) error
	reply chan error
}

// NewSession wraps game and starts its loop
func NewSession(id string, config *engine.GameConfig, game *match.GameSession) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		Config:       config,
		CreatedAt:    now,
		lastAccessed: now,
		game:         game,
		commands:     make(chan command),
		done:         make(chan struct{}),
	}
	go s.run(TickInterval)
	return s
}

func (s *Session) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			cmd.reply <- cmd.fn(s.game)
		case now := <-ticker.C:
			s.game.Advance(now.Sub(last))
			last = now
		}
	}
}

// Do runs fn on the session loop and waits for it to finish
func (s *Session) Do(ctx context.Context, fn func(*match.GameSession) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Stopped() {
		return ErrSessionStopped
	}
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case s.commands <- cmd:
	case <-s.done:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Touch records at as the last time the session was used
func (s *Session) Touch(at time.Time) {
	s.mu.Lock()
	s.lastAccessed = at
	s.mu.Unlock()
}

// LastAccessed returns the last time the session was used
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Stop ends the session loop. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Stopped reports whether Stop has been called
func (s *Session) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
