package engine

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// SpecialCounts is the number of cells of each special kind to place.
// Teleporters counts cells and must be even.
type SpecialCounts struct {
	Landmines   int
	Freezes     int
	Paintballs  int
	Teleporters int
}

// Total returns the number of cells the counts occupy
func (c SpecialCounts) Total() int {
	return c.Landmines + c.Freezes + c.Paintballs + c.Teleporters
}

// Board holds grid geometry, terrain kinds and the teleporter pairing table.
// Cells are keyed directly by coordinate.
type Board struct {
	width    int
	height   int
	spacing  float64
	anchor   Vec3
	cells    map[Coord]*Cell
	pairs    map[int][2]Coord
	reserved map[Coord]bool
}

// NewBoard creates an all-Plain board
func NewBoard(width, height int, spacing float64) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board dimensions %dx%d must be positive", width, height)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("tile spacing %v must be positive", spacing)
	}

	b := &Board{
		width:    width,
		height:   height,
		spacing:  spacing,
		cells:    make(map[Coord]*Cell, width*height),
		pairs:    make(map[int][2]Coord),
		reserved: make(map[Coord]bool),
	}
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			c := Coord{X: x, Z: z}
			b.cells[c] = &Cell{Pos: c, Kind: Plain}
		}
	}
	return b, nil
}

func (b *Board) Width() int           { return b.width }
func (b *Board) Height() int          { return b.height }
func (b *Board) TileSpacing() float64 { return b.spacing }

// SetAnchor moves the world-space centre of the board
func (b *Board) SetAnchor(anchor Vec3) { b.anchor = anchor }

// InBounds reports whether c lies on the grid
func (b *Board) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < b.width && c.Z >= 0 && c.Z < b.height
}

// CellAt returns a copy of the cell at (x, z)
func (b *Board) CellAt(x, z int) (Cell, error) {
	c := Coord{X: x, Z: z}
	if !b.InBounds(c) {
		return Cell{}, fmt.Errorf("cell (%d,%d) on %dx%d board: %w", x, z, b.width, b.height, ErrOutOfBounds)
	}
	return *b.cells[c], nil
}

// WorldPosition maps a grid coordinate to the centred world-space point
func (b *Board) WorldPosition(x, z int) Vec3 {
	offX := float64(b.width-1) * b.spacing / 2
	offZ := float64(b.height-1) * b.spacing / 2
	return Vec3{
		X: float64(x)*b.spacing - offX + b.anchor.X,
		Y: b.anchor.Y,
		Z: float64(z)*b.spacing - offZ + b.anchor.Z,
	}
}

// NearestCell inverts WorldPosition by rounding to the closest cell
func (b *Board) NearestCell(p Vec3) (Coord, error) {
	offX := float64(b.width-1) * b.spacing / 2
	offZ := float64(b.height-1) * b.spacing / 2
	c := Coord{
		X: int(math.Round((p.X - b.anchor.X + offX) / b.spacing)),
		Z: int(math.Round((p.Z - b.anchor.Z + offZ) / b.spacing)),
	}
	if !b.InBounds(c) {
		return c, fmt.Errorf("point (%.2f,%.2f): %w", p.X, p.Z, ErrOutOfBounds)
	}
	return c, nil
}

// Reserve keeps the given cells out of special tile generation
func (b *Board) Reserve(coords ...Coord) {
	for _, c := range coords {
		if b.InBounds(c) {
			b.reserved[c] = true
		}
	}
}

// GenerateSpecialTiles resets the board to Plain and scatters special tiles
// on distinct cells. Kinds are placed in the order landmine, freeze,
// paintball, teleporter pairs, each chosen cell leaving the candidate pool.
// Nothing is mutated when an error is returned.
func (b *Board) GenerateSpecialTiles(counts SpecialCounts, rng *rand.Rand) error {
	if rng == nil {
		return fmt.Errorf("generate special tiles: rng: %w", ErrMissingCollaborator)
	}
	if counts.Landmines < 0 || counts.Freezes < 0 || counts.Paintballs < 0 || counts.Teleporters < 0 {
		return fmt.Errorf("special tile counts must not be negative: %+v", counts)
	}
	if counts.Teleporters%2 != 0 {
		return fmt.Errorf("%d teleporter cells: %w", counts.Teleporters, ErrOddTeleporterCount)
	}

	pool := make([]Coord, 0, len(b.cells))
	for z := 0; z < b.height; z++ {
		for x := 0; x < b.width; x++ {
			c := Coord{X: x, Z: z}
			if !b.reserved[c] {
				pool = append(pool, c)
			}
		}
	}
	if counts.Total() > len(pool) {
		return fmt.Errorf("%d special tiles requested, %d cells available: %w",
			counts.Total(), len(pool), ErrInsufficientSpace)
	}

	for _, cell := range b.cells {
		cell.Kind = Plain
		cell.PairID = 0
		cell.Triggered = false
	}
	b.pairs = make(map[int][2]Coord)

	take := func() Coord {
		i := rng.IntN(len(pool))
		c := pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
		return c
	}

	for _, group := range []struct {
		kind  CellKind
		count int
	}{
		{Landmine, counts.Landmines},
		{Freeze, counts.Freezes},
		{Paintball, counts.Paintballs},
	} {
		for i := 0; i < group.count; i++ {
			b.cells[take()].Kind = group.kind
		}
	}

	for pair := 1; pair <= counts.Teleporters/2; pair++ {
		a, c := take(), take()
		b.cells[a].Kind, b.cells[a].PairID = Teleporter, pair
		b.cells[c].Kind, b.cells[c].PairID = Teleporter, pair
		b.pairs[pair] = [2]Coord{a, c}
	}
	return nil
}

// PairedCell returns the other endpoint of the teleporter at c
func (b *Board) PairedCell(c Coord) (Coord, bool) {
	cell, ok := b.cells[c]
	if !ok || cell.Kind != Teleporter {
		return Coord{}, false
	}
	ends, ok := b.pairs[cell.PairID]
	if !ok {
		return Coord{}, false
	}
	if ends[0] == c {
		return ends[1], true
	}
	return ends[0], true
}

// Consume reverts a consumable cell to Plain and marks it triggered.
// Teleporters and Plain cells are left alone.
func (b *Board) Consume(c Coord) {
	cell, ok := b.cells[c]
	if !ok || !cell.Kind.Consumable() {
		return
	}
	cell.Kind = Plain
	cell.Triggered = true
}

// Cells returns a copy of the grid indexed [z][x]
func (b *Board) Cells() [][]Cell {
	grid := make([][]Cell, b.height)
	for z := range grid {
		grid[z] = make([]Cell, b.width)
		for x := range grid[z] {
			grid[z][x] = *b.cells[Coord{X: x, Z: z}]
		}
	}
	return grid
}

// Teleporters returns the pairing table, keyed by pair id
func (b *Board) Teleporters() map[int][2]Coord {
	out := make(map[int][2]Coord, len(b.pairs))
	for id, ends := range b.pairs {
		out[id] = ends
	}
	return out
}

// CountKind counts cells of the given kind
func (b *Board) CountKind(kind CellKind) int {
	n := 0
	for _, cell := range b.cells {
		if cell.Kind == kind {
			n++
		}
	}
	return n
}
