package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/landmines/game/engine"
	"github.com/wricardo/mcp-training/landmines/game/match"
	"github.com/wricardo/mcp-training/landmines/game/results"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxResultsLimit     = 100
	recordTimeout       = 5 * time.Second
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	results   results.Store
	publisher EventPublisher
}

// Option configures optional collaborators of the game service
type Option func(*gameServiceImpl)

// WithResults records every finished match in store
func WithResults(store results.Store) Option {
	return func(s *gameServiceImpl) { s.results = store }
}

// WithPublisher forwards every game event to p
func WithPublisher(p EventPublisher) Option {
	return func(s *gameServiceImpl) { s.publisher = p }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "classic"
	}
	return configName
}

// CreateSession creates a new game session. A zero seed picks one at random.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed uint64) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.attach(ctx, sess); err != nil {
		return nil, err
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	info, err := s.info(ctx, sess)
	if err != nil {
		return nil, err
	}
	info.ConfigName = configID
	log.Info("session created", "session", sess.ID, "config", configID, "seed", info.Seed)
	return info, nil
}

// attach subscribes the service to every event of the session's game
func (s *gameServiceImpl) attach(ctx context.Context, sess *Session) error {
	id := sess.ID
	return sess.Do(ctx, func(g *match.GameSession) error {
		g.Subscribe(func(ev engine.Event) {
			s.onEvent(id, g, ev)
		})
		return nil
	})
}

// onEvent runs on the session loop for each emitted event
func (s *gameServiceImpl) onEvent(sessionID string, g *match.GameSession, ev engine.Event) {
	if s.publisher == nil && (s.results == nil || ev.Type != engine.EventGameOver) {
		return
	}
	state := g.Snapshot()
	if s.publisher != nil {
		s.publisher.PublishEvent(sessionID, ev, state)
	}
	if ev.Type != engine.EventGameOver || s.results == nil {
		return
	}

	result := results.FromState(sessionID, state)
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := s.results.Record(ctx, result); err != nil {
		log.Error("failed to record match result", "session", sessionID, "err", err)
		return
	}
	log.Info("match result recorded", "session", sessionID, "winner", result.WinnerName, "turns", result.Turns)
}

func (s *gameServiceImpl) info(ctx context.Context, sess *Session) (*SessionInfo, error) {
	info := &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameConfig:     sess.Config,
	}
	err := sess.Do(ctx, func(g *match.GameSession) error {
		info.Seed = g.Seed()
		info.Restarts = g.Restarts()
		info.GameState = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// lookup finds a session and marks it as accessed
func (s *gameServiceImpl) lookup(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(ctx, sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		info, err := s.info(ctx, sess)
		if errors.Is(err, ErrSessionStopped) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session and stops its loop
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	log.Info("session deleted", "session", sessionID)
	return nil
}

// Move activates cell (x, z) for the active player
func (s *gameServiceImpl) Move(ctx context.Context, sessionID string, x, z int) (*MoveResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{}
	err = sess.Do(ctx, func(g *match.GameSession) error {
		out, err := g.OnCellActivated(x, z)
		if err != nil {
			return err
		}
		state := g.Snapshot()
		result.Success = out.Result == engine.MoveAccepted
		result.Outcome = out
		result.Events = out.Events
		result.GameState = state
		result.Message = state.Message
		if !result.Success {
			result.Message = out.Reason
		}
		result.Danger = engine.AssessDanger(state, out.Player)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("move handled", "session", sessionID, "x", x, "z", z, "result", result.Outcome.Result,
		"remaining", result.Outcome.RemainingMoves)
	return result, nil
}

// LegalMoves returns the active player's legal destinations
func (s *gameServiceImpl) LegalMoves(ctx context.Context, sessionID string) (*LegalMovesResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	result := &LegalMovesResult{}
	err = sess.Do(ctx, func(g *match.GameSession) error {
		turn := g.Turn()
		result.Player = turn.Active
		result.RemainingMoves = turn.RemainingMoves
		result.Phase = turn.Phase
		result.Moves = g.LegalMoves()
		if p, err := g.Registry().Get(turn.Active); err == nil {
			result.PlayerName = p.Name
			result.Position = p.Position
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Restart starts a fresh game in the same session
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	err = sess.Do(ctx, func(g *match.GameSession) error {
		if err := g.Restart(); err != nil {
			return err
		}
		state = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restart session %s: %w", sessionID, err)
	}

	log.Info("session restarted", "session", sessionID, "seed", state.Seed)
	return state, nil
}

// ResetHealth heals every living player in the session
func (s *gameServiceImpl) ResetHealth(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	err = sess.Do(ctx, func(g *match.GameSession) error {
		if err := g.ResetHealth(); err != nil {
			return err
		}
		state = g.Snapshot()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset health in session %s: %w", sessionID, err)
	}

	log.Info("health reset", "session", sessionID)
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	err = sess.Do(ctx, func(g *match.GameSession) error {
		state = g.Snapshot()
		return nil
	})
	return state, err
}

// GetEventHistory returns a page of the session's retained event log
func (s *gameServiceImpl) GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	var history []engine.Event
	var total int
	err = sess.Do(ctx, func(g *match.GameSession) error {
		history = g.Events()
		total = g.Snapshot().TotalEvents
		return nil
	})
	if err != nil {
		return nil, err
	}

	retained := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	opts.Order = strings.ToLower(opts.Order)
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (retained + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > retained {
		end = retained
	}

	events := []engine.Event{}
	if start < retained {
		if opts.Order == "desc" {
			for i := retained - 1 - start; i >= retained-end; i-- {
				events = append(events, history[i])
			}
		} else {
			events = append(events, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Retained:    retained,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ListResults returns finished matches newest first. Without a results store
// the list is empty.
func (s *gameServiceImpl) ListResults(ctx context.Context, limit, offset int) (*ResultsResponse, error) {
	resp := &ResultsResponse{Results: []results.MatchResult{}}
	if s.results == nil {
		return resp, nil
	}
	if limit <= 0 || limit > maxResultsLimit {
		limit = defaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.results.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if list != nil {
		resp.Results = list
	}
	if resp.Total, err = s.results.Count(ctx); err != nil {
		return nil, err
	}
	if resp.Leaderboard, err = s.results.Leaderboard(ctx, 10); err != nil {
		return nil, err
	}
	return resp, nil
}
