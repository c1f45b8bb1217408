package effects_test

import (
	"fmt"
	"testing"

	"github.com/wricardo/mcp-training/landmines/game/effects"
	"github.com/wricardo/mcp-training/landmines/game/engine"
)

// MockTarget records every call made by the resolver
type MockTarget struct {
	calls        []string
	ready        bool
	paired       map[engine.Coord]engine.Coord
	TeleportFunc func(id engine.PlayerID, dest engine.Coord) error
}

func newMockTarget() *MockTarget {
	return &MockTarget{ready: true, paired: map[engine.Coord]engine.Coord{}}
}

func (m *MockTarget) Damage(id engine.PlayerID, amount int) {
	m.calls = append(m.calls, fmt.Sprintf("damage %d %d", id, amount))
}

func (m *MockTarget) Freeze(id engine.PlayerID, turns int) {
	m.calls = append(m.calls, fmt.Sprintf("freeze %d %d", id, turns))
}

func (m *MockTarget) Recolor(id engine.PlayerID, color string) {
	m.calls = append(m.calls, fmt.Sprintf("recolor %d %s", id, color))
}

func (m *MockTarget) Teleport(id engine.PlayerID, dest engine.Coord) error {
	m.calls = append(m.calls, fmt.Sprintf("teleport %d %d,%d", id, dest.X, dest.Z))
	if m.TeleportFunc != nil {
		return m.TeleportFunc(id, dest)
	}
	return nil
}

func (m *MockTarget) Consume(at engine.Coord) {
	m.calls = append(m.calls, fmt.Sprintf("consume %d,%d", at.X, at.Z))
}

func (m *MockTarget) PairedCell(at engine.Coord) (engine.Coord, bool) {
	c, ok := m.paired[at]
	return c, ok
}

func (m *MockTarget) TeleporterReady(at engine.Coord) bool {
	return m.ready
}

func (m *MockTarget) StartTeleporterCooldown(at engine.Coord) {
	m.calls = append(m.calls, fmt.Sprintf("cooldown %d,%d", at.X, at.Z))
}

func TestResolver_Dispatch(t *testing.T) {
	settings := effects.Settings{LandmineDamage: 15, FreezeTurns: 1, PaintballColor: "magenta"}
	at := engine.Coord{X: 1, Z: 2}

	tests := []struct {
		name     string
		cell     engine.Cell
		settings effects.Settings
		expected []string
	}{
		{"plain", engine.Cell{Pos: at, Kind: engine.Plain}, settings, nil},
		{"landmine", engine.Cell{Pos: at, Kind: engine.Landmine}, settings,
			[]string{"consume 1,2", "damage 0 15"}},
		{"freeze", engine.Cell{Pos: at, Kind: engine.Freeze}, settings,
			[]string{"consume 1,2", "freeze 0 1"}},
		{"paintball", engine.Cell{Pos: at, Kind: engine.Paintball}, settings,
			[]string{"consume 1,2", "recolor 0 magenta"}},
		{"paintball with damage", engine.Cell{Pos: at, Kind: engine.Paintball},
			effects.Settings{PaintballColor: "cyan", PaintballDamage: 5},
			[]string{"consume 1,2", "recolor 0 cyan", "damage 0 5"}},
		{"triggered landmine", engine.Cell{Pos: at, Kind: engine.Landmine, Triggered: true}, settings, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			target := newMockTarget()
			effects.NewResolver(test.settings).Resolve(target, 0, test.cell)
			if fmt.Sprint(target.calls) != fmt.Sprint(test.expected) {
				t.Errorf("Expected calls %v, got %v", test.expected, target.calls)
			}
		})
	}
}

func TestResolver_Teleporter(t *testing.T) {
	a, b := engine.Coord{X: 0, Z: 1}, engine.Coord{X: 3, Z: 4}
	cell := engine.Cell{Pos: a, Kind: engine.Teleporter, PairID: 1}
	r := effects.NewResolver(effects.Settings{})

	target := newMockTarget()
	target.paired[a] = b
	r.Resolve(target, 2, cell)
	expected := []string{"teleport 2 3,4", "cooldown 0,1"}
	if fmt.Sprint(target.calls) != fmt.Sprint(expected) {
		t.Errorf("Expected %v, got %v", expected, target.calls)
	}

	// cooling down
	target = newMockTarget()
	target.paired[a] = b
	target.ready = false
	r.Resolve(target, 2, cell)
	if len(target.calls) != 0 {
		t.Errorf("Expected no calls during cooldown, got %v", target.calls)
	}

	// unpaired teleporter is ignored
	target = newMockTarget()
	r.Resolve(target, 2, cell)
	if len(target.calls) != 0 {
		t.Errorf("Expected no calls for unpaired teleporter, got %v", target.calls)
	}
}

func TestResolver_TeleportBlocked(t *testing.T) {
	a, b := engine.Coord{X: 0, Z: 1}, engine.Coord{X: 3, Z: 4}
	cell := engine.Cell{Pos: a, Kind: engine.Teleporter, PairID: 1}

	tests := []struct {
		name     string
		err      error
		expected []string
	}{
		{"occupied destination", engine.ErrCellOccupied, []string{"teleport 2 3,4"}},
		{"eliminated player", engine.ErrPlayerEliminated, []string{"teleport 2 3,4"}},
		{"success", nil, []string{"teleport 2 3,4", "cooldown 0,1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := newMockTarget()
			target.paired[a] = b
			target.TeleportFunc = func(engine.PlayerID, engine.Coord) error {
				return tt.err
			}
			effects.NewResolver(effects.Settings{}).Resolve(target, 2, cell)
			if fmt.Sprint(target.calls) != fmt.Sprint(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, target.calls)
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	config := engine.DefaultGameConfig()
	config.PaintballDamage = 3
	s := effects.SettingsFromConfig(config)
	if s.LandmineDamage != 15 || s.FreezeTurns != 1 || s.PaintballColor != "magenta" || s.PaintballDamage != 3 {
		t.Errorf("Unexpected settings: %+v", s)
	}
}
