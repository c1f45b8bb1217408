package engine

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// mover interpolates one player's world position between two cells. The
// logical position is only committed once the tween finishes.
type mover struct {
	player PlayerID
	from   Coord
	to     Coord
	start  Vec3
	end    Vec3
	tween  *gween.Tween
	pos    Vec3
	done   float64
}

func newMover(b *Board, player PlayerID, from, to Coord, speed float64) *mover {
	start := b.WorldPosition(from.X, from.Z)
	end := b.WorldPosition(to.X, to.Z)
	length := math.Hypot(end.X-start.X, end.Z-start.Z)
	return &mover{
		player: player,
		from:   from,
		to:     to,
		start:  start,
		end:    end,
		tween:  gween.New(0, 1, float32(length/speed), ease.Linear),
		pos:    start,
	}
}

// step advances the tween by dt seconds and reports whether it finished
func (m *mover) step(dt float64) bool {
	frac, finished := m.tween.Update(float32(dt))
	if finished {
		frac = 1
	}
	m.done = float64(frac)
	m.pos = Vec3{
		X: m.start.X + (m.end.X-m.start.X)*m.done,
		Y: m.start.Y + (m.end.Y-m.start.Y)*m.done,
		Z: m.start.Z + (m.end.Z-m.start.Z)*m.done,
	}
	return finished
}

func (m *mover) snapshot() *Motion {
	return &Motion{
		Player:   m.player,
		From:     m.from,
		To:       m.to,
		Position: m.pos,
		Progress: m.done,
	}
}
