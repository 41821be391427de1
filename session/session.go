// Package session implements the state machine driving one resolution
// test on the player side, from start_test through trait selection to the
// tile draw and the transmitted result.
package session

import (
	"log/slog"

	"github.com/beanz-y/not-the-end/draw"
	"github.com/beanz-y/not-the-end/hero"
)

// State is the controller's current phase. There is no terminal state;
// the controller is reused across tests until Close.
type State int

const (
	Idle State = iota
	TraitSelection
	Drawing
)

// String returns the display string for a State.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TraitSelection:
		return "trait_selection"
	case Drawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Params are the test parameters issued by the narrator. Danger only
// affects narrative display, never the draw composition.
type Params struct {
	Difficulty int
	Danger     int
}

// ActionType enumerates the inputs the controller processes.
type ActionType int

const (
	ActionBegin ActionType = iota
	ActionToggleTrait
	ActionConfirm
	ActionRevealTile
	ActionCancel
)

// Action is one input sent into the controller's action channel.
type Action struct {
	Type   ActionType
	Params Params // for ActionBegin
	Trait  int    // offered-trait index, for ActionToggleTrait
	Index  int    // tile index, for ActionRevealTile
}

// ResultSender transmits the terminal draw_result to the narrator.
type ResultSender interface {
	SendResult(r draw.Result) error
}

// SenderFunc adapts a function to ResultSender.
type SenderFunc func(r draw.Result) error

// SendResult calls f.
func (f SenderFunc) SendResult(r draw.Result) error { return f(r) }

// SheetProvider returns the hero's current sheet; the controller asks for
// it when a test begins so selection reflects live edits.
type SheetProvider func() hero.Sheet

// Controller owns all test state. It is the only writer of that state:
// network workers and the UI layer send Actions, the controller emits
// Events. Run processes actions sequentially on its own goroutine.
type Controller struct {
	sheet  SheetProvider
	sender ResultSender
	rng    draw.RandomSource

	state    State
	params   Params
	offered  []hero.Trait
	selected map[int]bool
	pool     *draw.Pool

	Actions chan Action
	Events  chan Event
	Done    chan struct{}
}

// New creates a controller in the Idle state. A nil rng uses the default
// source; tests pass a seeded one.
func New(sheet SheetProvider, sender ResultSender, rng draw.RandomSource) *Controller {
	if rng == nil {
		rng = draw.DefaultRNG()
	}
	return &Controller{
		sheet:   sheet,
		sender:  sender,
		rng:     rng,
		state:   Idle,
		Actions: make(chan Action, 16),
		Events:  make(chan Event, 64),
		Done:    make(chan struct{}),
	}
}

// StateNow returns the phase as of the last processed action. Only safe to
// read from the goroutine feeding Actions after draining Events.
func (c *Controller) StateNow() State { return c.state }

// Close stops the controller. No actions may be sent afterwards.
func (c *Controller) Close() { close(c.Actions) }

// Run is the controller's main loop. It should be run as a goroutine and
// exits when Close is called.
func (c *Controller) Run() {
	defer close(c.Done)
	for action := range c.Actions {
		switch action.Type {
		case ActionBegin:
			c.handleBegin(action.Params)
		case ActionToggleTrait:
			c.handleToggle(action.Trait)
		case ActionConfirm:
			c.handleConfirm()
		case ActionRevealTile:
			c.handleReveal(action.Index)
		case ActionCancel:
			c.handleCancel(true)
		}
	}
}

// handleBegin opens trait selection. A start_test arriving mid-test
// replaces the test in progress: the old selection or pool is discarded
// without transmitting a result.
func (c *Controller) handleBegin(params Params) {
	if c.state != Idle {
		c.handleCancel(false)
	}

	sheet := c.sheet()
	sheet.Normalize()
	c.params = params
	c.offered = sheet.SelectableTraits()
	c.selected = make(map[int]bool)
	c.state = TraitSelection

	traits := append([]hero.Trait(nil), c.offered...)
	c.emit(SelectionOpened{Params: params, Traits: traits})
}

func (c *Controller) handleToggle(trait int) {
	if c.state != TraitSelection {
		c.emit(Rejected{Reason: "no trait selection in progress"})
		return
	}
	if trait < 0 || trait >= len(c.offered) {
		c.emit(Rejected{Reason: "trait index out of range"})
		return
	}
	c.selected[trait] = !c.selected[trait]
	c.emit(TraitToggled{Trait: trait, Selected: c.selected[trait], Count: c.selectedCount()})
}

// handleConfirm builds the pool: one success tile per selected trait, one
// complication tile per point of difficulty. Zero selected traits is
// allowed and yields a pure-complication pool.
func (c *Controller) handleConfirm() {
	if c.state != TraitSelection {
		c.emit(Rejected{Reason: "no trait selection in progress"})
		return
	}
	successes := c.selectedCount()
	c.pool = draw.NewPool(successes, c.params.Difficulty, c.rng)
	c.state = Drawing
	c.emit(PoolBuilt{Successes: successes, Complications: c.params.Difficulty, Size: c.pool.Size()})

	// A zero-trait, zero-difficulty test has nothing to reveal.
	if c.pool.AllRevealed() {
		c.finish()
	}
}

func (c *Controller) handleReveal(index int) {
	if c.state != Drawing {
		c.emit(Rejected{Reason: "no draw in progress"})
		return
	}
	kind, err := c.pool.Reveal(index)
	if err != nil {
		c.emit(Rejected{Reason: err.Error()})
		return
	}
	c.emit(TileRevealed{Index: index, Tile: kind, Tally: c.pool.Tally(), Remaining: c.pool.Remaining()})

	if c.pool.AllRevealed() {
		c.finish()
	}
}

// finish tallies the completed draw, transmits draw_result and resets to
// Idle. Emitted exactly once per test.
func (c *Controller) finish() {
	result := c.pool.Tally()
	if c.sender != nil {
		if err := c.sender.SendResult(result); err != nil {
			slog.Error("transmitting draw result", "tag", "session", "err", err)
		}
	}
	c.reset()
	c.emit(Completed{Result: result})
}

func (c *Controller) handleCancel(notify bool) {
	if c.state == Idle {
		if notify {
			c.emit(Rejected{Reason: "no test in progress"})
		}
		return
	}
	c.reset()
	if notify {
		c.emit(Cancelled{})
	}
}

func (c *Controller) reset() {
	c.state = Idle
	c.params = Params{}
	c.offered = nil
	c.selected = nil
	c.pool = nil
}

func (c *Controller) selectedCount() int {
	n := 0
	for _, on := range c.selected {
		if on {
			n++
		}
	}
	return n
}

// emit hands an event to the UI layer without ever blocking the state
// machine; a consumer that has fallen 64 events behind loses
// notifications with a log note.
func (c *Controller) emit(ev Event) {
	select {
	case c.Events <- ev:
	default:
		slog.Warn("session event dropped", "tag", "session", "event", ev.Kind())
	}
}
