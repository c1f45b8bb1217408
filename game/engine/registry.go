package engine

import "fmt"

// Registry is the ordered player list. Registry order is turn order.
type Registry struct {
	maxHealth int
	players   []*Player
}

// NewRegistry creates an empty registry whose players start at maxHealth
func NewRegistry(maxHealth int) (*Registry, error) {
	if maxHealth <= 0 {
		return nil, fmt.Errorf("max health %d must be positive", maxHealth)
	}
	return &Registry{maxHealth: maxHealth}, nil
}

// AddPlayer appends a player at full health on the start cell
func (r *Registry) AddPlayer(name string, start Coord) PlayerID {
	id := PlayerID(len(r.players))
	if name == "" {
		name = fmt.Sprintf("Player %d", id+1)
	}
	r.players = append(r.players, &Player{
		ID:        id,
		Name:      name,
		Position:  start,
		Health:    r.maxHealth,
		MaxHealth: r.maxHealth,
		Alive:     true,
	})
	return id
}

func (r *Registry) lookup(id PlayerID) (*Player, error) {
	if id < 0 || int(id) >= len(r.players) {
		return nil, fmt.Errorf("player %d: %w", id, ErrUnknownPlayer)
	}
	return r.players[id], nil
}

// Get returns a copy of the player
func (r *Registry) Get(id PlayerID) (Player, error) {
	p, err := r.lookup(id)
	if err != nil {
		return Player{}, err
	}
	return *p, nil
}

// TakeDamage lowers health, clamped at zero. Non-positive amounts and dead
// players are ignored. eliminated is true only on the call that reaches zero.
func (r *Registry) TakeDamage(id PlayerID, amount int) (applied, newHealth int, eliminated bool) {
	p, err := r.lookup(id)
	if err != nil {
		return 0, 0, false
	}
	if amount <= 0 || !p.Alive {
		return 0, p.Health, false
	}
	applied = min(amount, p.Health)
	p.Health -= applied
	if p.Health == 0 {
		p.Alive = false
		p.FrozenTurns = 0
		eliminated = true
	}
	return applied, p.Health, eliminated
}

// Freeze sets the frozen turn counter, replacing any previous value
func (r *Registry) Freeze(id PlayerID, turns int) {
	if p, err := r.lookup(id); err == nil && p.Alive {
		p.FrozenTurns = max(turns, 0)
	}
}

// Recolor sets the player's paint color
func (r *Registry) Recolor(id PlayerID, color string) {
	if p, err := r.lookup(id); err == nil {
		p.Color = color
	}
}

// ResetHealth restores every living player to max health
func (r *Registry) ResetHealth() {
	for _, p := range r.players {
		if p.Alive {
			p.Health = p.MaxHealth
		}
	}
}

func (r *Registry) setPosition(id PlayerID, c Coord) {
	if p, err := r.lookup(id); err == nil {
		p.Position = c
	}
}

func (r *Registry) skipFrozen(id PlayerID) int {
	p := r.players[id]
	p.FrozenTurns--
	return p.FrozenTurns
}

// AliveIDs returns living player ids in turn order
func (r *Registry) AliveIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (r *Registry) AliveCount() int {
	return len(r.AliveIDs())
}

func (r *Registry) Len() int {
	return len(r.players)
}

// Players returns copies of all players, eliminated ones included
func (r *Registry) Players() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}
