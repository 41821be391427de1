package session

import (
	"github.com/beanz-y/not-the-end/draw"
	"github.com/beanz-y/not-the-end/hero"
)

// Event is a notification from the controller to the UI/control layer.
type Event interface {
	Kind() string
}

// SelectionOpened fires when a start_test arrives: the UI should enable
// selection on the offered traits.
type SelectionOpened struct {
	Params Params
	Traits []hero.Trait
}

// TraitToggled reports one trait flipping in or out of the selection.
type TraitToggled struct {
	Trait    int
	Selected bool
	Count    int
}

// PoolBuilt fires when the selection is confirmed and the tiles are laid
// face-down.
type PoolBuilt struct {
	Successes     int
	Complications int
	Size          int
}

// TileRevealed reports one reveal with the running partial tally.
type TileRevealed struct {
	Index     int
	Tile      draw.TileKind
	Tally     draw.Result
	Remaining int
}

// Completed fires once per test, after every tile is revealed and the
// result has been transmitted.
type Completed struct {
	Result draw.Result
}

// Cancelled fires when an in-progress test is discarded without a result.
type Cancelled struct{}

// Rejected reports an action that was refused in the current state.
type Rejected struct {
	Reason string
}

func (SelectionOpened) Kind() string { return "selection_opened" }
func (TraitToggled) Kind() string    { return "trait_toggled" }
func (PoolBuilt) Kind() string       { return "pool_built" }
func (TileRevealed) Kind() string    { return "tile_revealed" }
func (Completed) Kind() string       { return "completed" }
func (Cancelled) Kind() string       { return "cancelled" }
func (Rejected) Kind() string        { return "rejected" }
