// Package draw implements the outcome-tile pool for one resolution test:
// a shuffled multiset of success and complication tiles revealed one at a
// time, with a tally over the revealed subset.
package draw

import "errors"

// Contract violations surfaced to the calling session. These are local
// programming errors, never connection-level failures.
var (
	ErrIndexRange       = errors.New("tile index out of range")
	ErrEmptyQuota       = errors.New("draw quota must be at least 1")
	ErrQuotaExceedsPool = errors.New("draw quota larger than pool")
	ErrDrawClosed       = errors.New("draw quota already exhausted")
)

// TileKind is the face of an outcome tile.
type TileKind int

const (
	Success TileKind = iota
	Complication
)

// String returns the protocol string for a TileKind.
func (k TileKind) String() string {
	switch k {
	case Success:
		return "success"
	case Complication:
		return "complication"
	default:
		return "unknown"
	}
}

// Tile is one unit of the pool.
type Tile struct {
	Kind     TileKind
	Revealed bool
}

// Result is the tally of revealed tiles. Before full reveal it is partial.
type Result struct {
	Successes     int `json:"successes"`
	Complications int `json:"complications"`
}

// Pool is the fixed set of tiles for one test. Composition never changes
// after creation; only reveal state does, and only from false to true.
type Pool struct {
	tiles []Tile
}

// NewPool builds a pool with exactly successes + complications tiles in a
// uniformly shuffled order. A nil rng uses DefaultRNG. Negative counts are
// clamped to zero.
func NewPool(successes, complications int, rng RandomSource) *Pool {
	if successes < 0 {
		successes = 0
	}
	if complications < 0 {
		complications = 0
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	tiles := make([]Tile, 0, successes+complications)
	for i := 0; i < successes; i++ {
		tiles = append(tiles, Tile{Kind: Success})
	}
	for i := 0; i < complications; i++ {
		tiles = append(tiles, Tile{Kind: Complication})
	}

	// Fisher-Yates over the multiset.
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}

	return &Pool{tiles: tiles}
}

// Size returns the fixed tile count.
func (p *Pool) Size() int { return len(p.tiles) }

// Tile returns a copy of the tile at index.
func (p *Pool) Tile(index int) (Tile, error) {
	if index < 0 || index >= len(p.tiles) {
		return Tile{}, ErrIndexRange
	}
	return p.tiles[index], nil
}

// Reveal flips one tile face-up and returns its kind. Revealing an
// already-revealed index is a no-op that returns the recorded kind, so a
// double click cannot change the tally.
func (p *Pool) Reveal(index int) (TileKind, error) {
	if index < 0 || index >= len(p.tiles) {
		return 0, ErrIndexRange
	}
	p.tiles[index].Revealed = true
	return p.tiles[index].Kind, nil
}

// Tally counts revealed tiles by kind. Unrevealed tiles are excluded, so a
// tally before full reveal reports a partial result.
func (p *Pool) Tally() Result {
	var r Result
	for _, t := range p.tiles {
		if !t.Revealed {
			continue
		}
		switch t.Kind {
		case Success:
			r.Successes++
		case Complication:
			r.Complications++
		}
	}
	return r
}

// Remaining returns the number of face-down tiles.
func (p *Pool) Remaining() int {
	n := 0
	for _, t := range p.tiles {
		if !t.Revealed {
			n++
		}
	}
	return n
}

// AllRevealed reports whether every tile is face-up.
func (p *Pool) AllRevealed() bool { return p.Remaining() == 0 }
