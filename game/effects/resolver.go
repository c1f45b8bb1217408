// Package effects maps special tile kinds to the state changes they cause.
package effects

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/wricardo/mcp-training/landmines/game/engine"
)

// Settings are the tunable effect strengths
type Settings struct {
	LandmineDamage  int
	FreezeTurns     int
	PaintballColor  string
	PaintballDamage int
}

// SettingsFromConfig picks the effect settings out of a game config
func SettingsFromConfig(c *engine.GameConfig) Settings {
	return Settings{
		LandmineDamage:  c.LandmineDamage,
		FreezeTurns:     c.FreezeTurns,
		PaintballColor:  c.PaintballColor,
		PaintballDamage: c.PaintballDamage,
	}
}

type handler func(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell)

// Resolver dispatches on the kind of the cell a player landed on. Consumable
// kinds fire at most once; teleporters are gated by their cooldown.
type Resolver struct {
	settings Settings
	table    map[engine.CellKind]handler
}

func NewResolver(settings Settings) *Resolver {
	r := &Resolver{settings: settings}
	r.table = map[engine.CellKind]handler{
		engine.Landmine:   r.landmine,
		engine.Freeze:     r.freeze,
		engine.Paintball:  r.paintball,
		engine.Teleporter: r.teleporter,
	}
	return r
}

// Resolve applies the effect for cell to player id
func (r *Resolver) Resolve(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell) {
	if cell.Triggered {
		return
	}
	h, ok := r.table[cell.Kind]
	if !ok {
		return
	}
	h(t, id, cell)
}

func (r *Resolver) landmine(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell) {
	t.Consume(cell.Pos)
	t.Damage(id, r.settings.LandmineDamage)
}

func (r *Resolver) freeze(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell) {
	t.Consume(cell.Pos)
	t.Freeze(id, r.settings.FreezeTurns)
}

func (r *Resolver) paintball(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell) {
	t.Consume(cell.Pos)
	t.Recolor(id, r.settings.PaintballColor)
	if r.settings.PaintballDamage > 0 {
		t.Damage(id, r.settings.PaintballDamage)
	}
}

func (r *Resolver) teleporter(t engine.EffectTarget, id engine.PlayerID, cell engine.Cell) {
	if !t.TeleporterReady(cell.Pos) {
		log.Debug("teleporter cooling down", "cell", cell.Pos, "player", id)
		return
	}
	dest, ok := t.PairedCell(cell.Pos)
	if !ok {
		log.Warn("teleporter without partner", "cell", cell.Pos)
		return
	}
	// a failed teleport leaves the tile ready
	if err := t.Teleport(id, dest); err != nil {
		if !errors.Is(err, engine.ErrCellOccupied) {
			log.Error("teleport failed", "player", id, "err", err)
		}
		return
	}
	t.StartTeleporterCooldown(cell.Pos)
}
