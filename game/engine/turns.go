package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zyedidia/generic/mapset"
)

// advanceTurn walks registry order from the active player and hands the turn
// to the next living player. Frozen players met on the way lose that turn
// and have their counter decremented.
func (e *TurnEngine) advanceTurn() {
	if e.registry.AliveCount() <= 1 {
		e.finish()
		return
	}

	n := e.registry.Len()
	idx := int(e.turn.Active)
	for {
		idx = (idx + 1) % n
		p := e.registry.players[idx]
		if !p.Alive {
			continue
		}
		if p.FrozenTurns > 0 {
			left := e.registry.skipFrozen(p.ID)
			e.emit(Event{Type: EventTurnSkipped, Player: p.ID, Remaining: left,
				Message: fmt.Sprintf("%s is frozen and skips a turn (%d left)", p.Name, left)})
			continue
		}
		break
	}

	next := PlayerID(idx)
	e.turn.Active = next
	e.turn.RemainingMoves = e.cfg.MovesPerTurn
	e.turn.Phase = PhaseAwaitingMove
	e.turn.Turn++
	e.message = fmt.Sprintf("%s's turn", e.name(next))
	e.emit(Event{Type: EventTurnAdvanced, Player: next, Remaining: e.turn.RemainingMoves, Message: e.message})
}

// finish enters GameOver. The game_over event is emitted only once.
func (e *TurnEngine) finish() {
	if e.turn.Phase == PhaseGameOver {
		return
	}
	e.turn.Phase = PhaseGameOver
	e.turn.RemainingMoves = 0
	e.moving = nil

	ev := Event{Type: EventGameOver, Player: NoPlayer}
	if alive := e.registry.AliveIDs(); len(alive) == 1 {
		e.winner = alive[0]
		e.turn.Active = e.winner
		w := e.winner
		ev.Winner = &w
		ev.Player = w
		e.message = fmt.Sprintf("Game over! %s wins", e.name(w))
	} else {
		e.message = "Game over! No players left standing"
	}
	ev.Message = e.message
	e.emit(ev)
	log.Info("game over", "config", e.cfg.ConfigName, "winner", e.winner, "turns", e.turn.Turn)
}

// Teleport relocates a player without range checks and locks them out of
// acting until now+immunity. The lockout is recomputed, never stacked.
// Arriving by teleport does not trigger the destination tile.
func (e *TurnEngine) Teleport(id PlayerID, dest Coord) error {
	if e.turn.Phase == PhaseGameOver {
		return ErrGameOver
	}
	p, err := e.registry.lookup(id)
	if err != nil {
		return err
	}
	if !p.Alive {
		return fmt.Errorf("teleport %s: %w", p.Name, ErrPlayerEliminated)
	}
	if !e.board.InBounds(dest) {
		return fmt.Errorf("teleport to (%d,%d): %w", dest.X, dest.Z, ErrOutOfBounds)
	}
	if !e.cfg.CanTeleportToOccupied && e.occupied(id).Has(dest) {
		e.emit(Event{Type: EventTeleportBlocked, Player: id, To: &dest,
			Message: fmt.Sprintf("Teleport of %s blocked: (%d,%d) is occupied", p.Name, dest.X, dest.Z)})
		return fmt.Errorf("teleport to (%d,%d): %w", dest.X, dest.Z, ErrCellOccupied)
	}

	from := p.Position
	e.registry.setPosition(id, dest)
	e.emit(Event{Type: EventPlayerTeleported, Player: id, From: &from, To: &dest,
		Message: fmt.Sprintf("%s teleported from (%d,%d) to (%d,%d)", p.Name, from.X, from.Z, dest.X, dest.Z)})
	e.lockOut(id)
	return nil
}

func (e *TurnEngine) lockOut(id PlayerID) {
	if e.cfg.TeleportImmunity <= 0 {
		return
	}
	release := e.clock.Now() + e.cfg.TeleportImmunity
	e.lockedUntil[id] = release
	e.clock.After(e.cfg.TeleportImmunity, func() {
		if e.lockedUntil[id] != release {
			return
		}
		delete(e.lockedUntil, id)
		e.emit(Event{Type: EventLockoutReleased, Player: id,
			Message: fmt.Sprintf("%s can act again", e.name(id))})
	})
}

func (e *TurnEngine) isLockedOut(id PlayerID) bool {
	until, ok := e.lockedUntil[id]
	return ok && e.clock.Now() < until
}

// LockedUntil returns the absolute clock time a player's lockout ends
func (e *TurnEngine) LockedUntil(id PlayerID) (time.Duration, bool) {
	until, ok := e.lockedUntil[id]
	if !ok || e.clock.Now() >= until {
		return 0, false
	}
	return until, true
}

// occupied returns the cells held by living players other than exclude
func (e *TurnEngine) occupied(exclude PlayerID) mapset.Set[Coord] {
	set := mapset.New[Coord]()
	for _, p := range e.registry.players {
		if p.Alive && p.ID != exclude {
			set.Put(p.Position)
		}
	}
	return set
}

// Damage applies damage through the registry and reports the result
func (e *TurnEngine) Damage(id PlayerID, amount int) {
	applied, health, eliminated := e.registry.TakeDamage(id, amount)
	if applied == 0 {
		return
	}
	e.emit(Event{Type: EventPlayerDamaged, Player: id, Amount: applied, Health: health,
		Message: fmt.Sprintf("%s took %d damage (%d left)", e.name(id), applied, health)})
	if eliminated {
		delete(e.lockedUntil, id)
		e.emit(Event{Type: EventPlayerEliminated, Player: id,
			Message: fmt.Sprintf("%s was eliminated", e.name(id))})
	}
}

// ResetHealth restores every living player to full health. Eliminated
// players stay out.
func (e *TurnEngine) ResetHealth() error {
	if e.turn.Phase == PhaseGameOver {
		return ErrGameOver
	}
	e.registry.ResetHealth()
	e.emit(Event{Type: EventHealthReset, Player: NoPlayer,
		Message: "Health restored for all players still standing"})
	return nil
}

// Freeze sets a player's frozen turn counter
func (e *TurnEngine) Freeze(id PlayerID, turns int) {
	p, err := e.registry.lookup(id)
	if err != nil || !p.Alive || turns <= 0 {
		return
	}
	e.registry.Freeze(id, turns)
	e.emit(Event{Type: EventPlayerFrozen, Player: id, Turns: turns,
		Message: fmt.Sprintf("%s is frozen for %d turn(s)", p.Name, turns)})
}

// Recolor paints a player
func (e *TurnEngine) Recolor(id PlayerID, color string) {
	if _, err := e.registry.lookup(id); err != nil {
		return
	}
	e.registry.Recolor(id, color)
	e.emit(Event{Type: EventPlayerRecolored, Player: id, Color: color,
		Message: fmt.Sprintf("%s was painted %s", e.name(id), color)})
}

// Consume spends a one-shot tile
func (e *TurnEngine) Consume(at Coord) {
	e.board.Consume(at)
}

// PairedCell returns the partner of a teleporter cell
func (e *TurnEngine) PairedCell(at Coord) (Coord, bool) {
	return e.board.PairedCell(at)
}

// TeleporterReady reports whether the teleporter at c is off cooldown
func (e *TurnEngine) TeleporterReady(at Coord) bool {
	until, ok := e.cooldowns[at]
	return !ok || e.clock.Now() >= until
}

// StartTeleporterCooldown blocks the teleporter at c from retriggering for
// the configured cooldown
func (e *TurnEngine) StartTeleporterCooldown(at Coord) {
	if e.cfg.TeleportCooldown <= 0 {
		return
	}
	until := e.clock.Now() + e.cfg.TeleportCooldown
	e.cooldowns[at] = until
	e.clock.After(e.cfg.TeleportCooldown, func() {
		if e.cooldowns[at] == until {
			delete(e.cooldowns, at)
		}
	})
}

// Subscribe registers fn to receive every event emitted from now on
func (e *TurnEngine) Subscribe(fn func(Event)) {
	if fn != nil {
		e.subscribers = append(e.subscribers, fn)
	}
}

// Events returns the retained event log, oldest first
func (e *TurnEngine) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

func (e *TurnEngine) eventsSince(total int) []Event {
	n := e.totalEvents - total
	if n <= 0 {
		return nil
	}
	if n > len(e.events) {
		n = len(e.events)
	}
	out := make([]Event, n)
	copy(out, e.events[len(e.events)-n:])
	return out
}

func (e *TurnEngine) emit(ev Event) {
	e.totalEvents++
	ev.Seq = e.totalEvents
	ev.At = e.clock.Now()
	e.events = append(e.events, ev)
	if len(e.events) > MaxEventLog {
		e.events = e.events[len(e.events)-MaxEventLog:]
	}
	log.Debug("event", "seq", ev.Seq, "type", ev.Type, "player", ev.Player)
	for _, fn := range e.subscribers {
		fn(ev)
	}
}
