package session

import (
	"testing"
	"time"

	"github.com/beanz-y/not-the-end/draw"
	"github.com/beanz-y/not-the-end/hero"
)

func testSheet() hero.Sheet {
	s := hero.Sheet{
		Name:      "Lothar",
		Archetype: "Bounty Hunter",
		Qualities: []string{"Veteran", "Cunning", "Frightening"},
		Abilities: []string{"Archery", "Investigate", "Pass unnoticed", "Interrogate"},
	}
	s.Normalize()
	return s
}

// newTestController starts a controller over testSheet with a seeded rng
// and a channel capturing transmitted results.
func newTestController(t *testing.T) (*Controller, chan draw.Result) {
	t.Helper()
	results := make(chan draw.Result, 4)
	sender := SenderFunc(func(r draw.Result) error {
		results <- r
		return nil
	})
	c := New(func() hero.Sheet { return testSheet() }, sender, draw.NewSeededRNG(11))
	go c.Run()
	t.Cleanup(func() {
		c.Close()
		<-c.Done
	})
	return c, results
}

func nextEvent(t *testing.T, c *Controller) Event {
	t.Helper()
	select {
	case ev := <-c.Events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return nil
	}
}

func expectEvent[E Event](t *testing.T, c *Controller) E {
	t.Helper()
	ev := nextEvent(t, c)
	typed, ok := ev.(E)
	if !ok {
		t.Fatalf("got %T (%+v), want %T", ev, ev, typed)
	}
	return typed
}

func TestBeginOffersNonEmptyTraits(t *testing.T) {
	c, _ := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 3, Danger: 1}}
	opened := expectEvent[SelectionOpened](t, c)

	// Archetype + 3 qualities + 4 abilities; empty slots never selectable.
	if len(opened.Traits) != 8 {
		t.Fatalf("offered %d traits, want 8: %+v", len(opened.Traits), opened.Traits)
	}
	if opened.Params.Difficulty != 3 || opened.Params.Danger != 1 {
		t.Errorf("params: %+v", opened.Params)
	}
	if opened.Traits[0].Kind != "archetype" || opened.Traits[0].Text != "Bounty Hunter" {
		t.Errorf("first trait: %+v", opened.Traits[0])
	}
}

func TestFullTestScenario(t *testing.T) {
	// Narrator sends difficulty 3; player confirms with 4 traits: pool of
	// 4 success + 3 complication tiles, and after full reveal draw_result
	// carries 4/3.
	c, results := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 3}}
	expectEvent[SelectionOpened](t, c)

	for i := 0; i < 4; i++ {
		c.Actions <- Action{Type: ActionToggleTrait, Trait: i}
		toggled := expectEvent[TraitToggled](t, c)
		if !toggled.Selected || toggled.Count != i+1 {
			t.Fatalf("toggle %d: %+v", i, toggled)
		}
	}

	c.Actions <- Action{Type: ActionConfirm}
	built := expectEvent[PoolBuilt](t, c)
	if built.Size != 7 || built.Successes != 4 || built.Complications != 3 {
		t.Fatalf("pool: %+v", built)
	}

	for i := 0; i < 7; i++ {
		c.Actions <- Action{Type: ActionRevealTile, Index: i}
		revealed := expectEvent[TileRevealed](t, c)
		if revealed.Remaining != 7-i-1 {
			t.Fatalf("reveal %d: remaining %d", i, revealed.Remaining)
		}
	}

	completed := expectEvent[Completed](t, c)
	if completed.Result.Successes != 4 || completed.Result.Complications != 3 {
		t.Errorf("completed: %+v", completed.Result)
	}

	select {
	case r := <-results:
		if r.Successes != 4 || r.Complications != 3 {
			t.Errorf("transmitted: %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("draw_result never transmitted")
	}

	// The controller is reusable: a new test starts cleanly.
	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 1}}
	expectEvent[SelectionOpened](t, c)
}

func TestTileRevealedCarriesKindAndTally(t *testing.T) {
	c, _ := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 2}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionToggleTrait, Trait: 0}
	expectEvent[TraitToggled](t, c)
	c.Actions <- Action{Type: ActionConfirm}
	expectEvent[PoolBuilt](t, c)

	c.Actions <- Action{Type: ActionRevealTile, Index: 1}
	revealed := expectEvent[TileRevealed](t, c)

	// The revealed tile's face and the running tally must agree, and the
	// event still routes by its kind string.
	if revealed.Tile != draw.Success && revealed.Tile != draw.Complication {
		t.Fatalf("revealed tile face: %v", revealed.Tile)
	}
	counted := revealed.Tally.Successes + revealed.Tally.Complications
	if counted != 1 {
		t.Fatalf("tally counts %d tiles after one reveal", counted)
	}
	if (revealed.Tile == draw.Success) != (revealed.Tally.Successes == 1) {
		t.Errorf("tally %+v does not match tile %v", revealed.Tally, revealed.Tile)
	}
	if Event(revealed).Kind() != "tile_revealed" {
		t.Errorf("event kind: %q", Event(revealed).Kind())
	}
}

func TestZeroTraitConfirmIsAllowed(t *testing.T) {
	c, results := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 2}}
	expectEvent[SelectionOpened](t, c)

	c.Actions <- Action{Type: ActionConfirm}
	built := expectEvent[PoolBuilt](t, c)
	if built.Successes != 0 || built.Complications != 2 {
		t.Fatalf("pure-complication pool expected, got %+v", built)
	}

	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[TileRevealed](t, c)
	c.Actions <- Action{Type: ActionRevealTile, Index: 1}
	expectEvent[TileRevealed](t, c)

	completed := expectEvent[Completed](t, c)
	if completed.Result.Successes != 0 || completed.Result.Complications != 2 {
		t.Errorf("completed: %+v", completed.Result)
	}
	<-results
}

func TestZeroTileTestCompletesImmediately(t *testing.T) {
	c, results := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 0}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionConfirm}
	expectEvent[PoolBuilt](t, c)

	completed := expectEvent[Completed](t, c)
	if completed.Result != (draw.Result{}) {
		t.Errorf("completed: %+v", completed.Result)
	}
	<-results
}

func TestCancelDiscardsWithoutResult(t *testing.T) {
	c, results := newTestController(t)

	// Cancel from trait selection.
	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 3}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionCancel}
	expectEvent[Cancelled](t, c)

	// Cancel mid-draw.
	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 2}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionToggleTrait, Trait: 0}
	expectEvent[TraitToggled](t, c)
	c.Actions <- Action{Type: ActionConfirm}
	expectEvent[PoolBuilt](t, c)
	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[TileRevealed](t, c)
	c.Actions <- Action{Type: ActionCancel}
	expectEvent[Cancelled](t, c)

	select {
	case r := <-results:
		t.Fatalf("cancelled test transmitted a result: %+v", r)
	default:
	}
}

func TestActionsRejectedOutsideTheirState(t *testing.T) {
	c, _ := newTestController(t)

	c.Actions <- Action{Type: ActionConfirm}
	expectEvent[Rejected](t, c)

	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[Rejected](t, c)

	c.Actions <- Action{Type: ActionCancel}
	expectEvent[Rejected](t, c)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 1}}
	expectEvent[SelectionOpened](t, c)

	c.Actions <- Action{Type: ActionToggleTrait, Trait: 99}
	expectEvent[Rejected](t, c)

	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[Rejected](t, c)
}

func TestBeginReplacesTestInProgress(t *testing.T) {
	c, results := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 5}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionToggleTrait, Trait: 0}
	expectEvent[TraitToggled](t, c)

	// A second start_test discards the selection in progress.
	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 1}}
	opened := expectEvent[SelectionOpened](t, c)
	if opened.Params.Difficulty != 1 {
		t.Fatalf("params: %+v", opened.Params)
	}

	// The old selection must not leak into the new test.
	c.Actions <- Action{Type: ActionConfirm}
	built := expectEvent[PoolBuilt](t, c)
	if built.Successes != 0 || built.Complications != 1 {
		t.Errorf("pool: %+v", built)
	}

	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[TileRevealed](t, c)
	expectEvent[Completed](t, c)
	<-results
}

func TestRevealErrorSurfacedNotFatal(t *testing.T) {
	c, _ := newTestController(t)

	c.Actions <- Action{Type: ActionBegin, Params: Params{Difficulty: 1}}
	expectEvent[SelectionOpened](t, c)
	c.Actions <- Action{Type: ActionConfirm}
	expectEvent[PoolBuilt](t, c)

	c.Actions <- Action{Type: ActionRevealTile, Index: 99}
	expectEvent[Rejected](t, c)

	// Draw continues after the rejected reveal.
	c.Actions <- Action{Type: ActionRevealTile, Index: 0}
	expectEvent[TileRevealed](t, c)
	expectEvent[Completed](t, c)
}
