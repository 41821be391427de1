package draw

// CountedDraw drives a pool in the narrator-console mode: a fixed quota of
// reveals is agreed up front, each reveal of a new tile decrements the
// remaining count, and once the quota is spent further reveals are
// rejected and the tally is final.
type CountedDraw struct {
	pool      *Pool
	remaining int
}

// NewCounted validates the quota against the pool before any reveal
// happens: a quota of zero or less, or one larger than the pool, is an
// error rather than a partial draw.
func NewCounted(pool *Pool, quota int) (*CountedDraw, error) {
	if quota <= 0 {
		return nil, ErrEmptyQuota
	}
	if quota > pool.Size() {
		return nil, ErrQuotaExceedsPool
	}
	return &CountedDraw{pool: pool, remaining: quota}, nil
}

// Reveal flips the tile at index. Re-revealing a face-up tile does not
// consume quota. Once the quota is exhausted every further call returns
// ErrDrawClosed, whichever tiles were chosen.
func (d *CountedDraw) Reveal(index int) (TileKind, error) {
	if d.remaining <= 0 {
		return 0, ErrDrawClosed
	}
	tile, err := d.pool.Tile(index)
	if err != nil {
		return 0, err
	}
	kind, err := d.pool.Reveal(index)
	if err != nil {
		return 0, err
	}
	if !tile.Revealed {
		d.remaining--
	}
	return kind, nil
}

// Remaining returns the reveals left in the quota.
func (d *CountedDraw) Remaining() int { return d.remaining }

// Done reports whether the quota is spent.
func (d *CountedDraw) Done() bool { return d.remaining <= 0 }

// Result returns the current tally of the underlying pool.
func (d *CountedDraw) Result() Result { return d.pool.Tally() }
