// The player binary: connects to the narrator with a hero sheet, runs the
// test session controller, and drives it either from a stdin console or
// automatically with -auto.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/beanz-y/not-the-end/client"
	"github.com/beanz-y/not-the-end/config"
	"github.com/beanz-y/not-the-end/hero"
	"github.com/beanz-y/not-the-end/loghandler"
	"github.com/beanz-y/not-the-end/session"
)

func main() {
	sheetPath := flag.String("sheet", "", "path to a hero sheet JSON file")
	auto := flag.Bool("auto", false, "answer tests automatically: select every trait, reveal every tile")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "player")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, slog.LevelInfo)))

	cfg := config.Load()

	var mu sync.Mutex
	sheet := sampleSheet()
	if *sheetPath != "" {
		loaded, err := hero.LoadFile(*sheetPath)
		if err != nil {
			slog.Error("sheet load failed", "tag", "player", "err", err)
			os.Exit(1)
		}
		sheet = *loaded
	}

	currentSheet := func() hero.Sheet {
		mu.Lock()
		defer mu.Unlock()
		return sheet.Clone()
	}

	cl := client.New(cfg.MaxMessageBytes)
	ctrl := session.New(currentSheet, cl, nil)
	go ctrl.Run()
	defer ctrl.Close()

	if err := cl.Connect(cfg.NarratorHost, cfg.NarratorPort, currentSheet()); err != nil {
		slog.Error("connect failed", "tag", "player", "err", err)
		os.Exit(1)
	}

	go pumpClientEvents(cl, ctrl)
	go pumpSessionEvents(ctrl, *auto)

	runConsole(cl, ctrl, &mu, &sheet)
	cl.Disconnect()
}

// pumpClientEvents forwards narrator commands into the session controller.
func pumpClientEvents(cl *client.Client, ctrl *session.Controller) {
	for ev := range cl.Events {
		switch e := ev.(type) {
		case client.TestStarted:
			fmt.Printf("test started: difficulty %d, %s\n", e.Params.Difficulty, session.DangerLabel(e.Params.Danger))
			ctrl.Actions <- session.Action{Type: session.ActionBegin, Params: e.Params}
		case client.Disconnected:
			fmt.Println("disconnected:", e.Reason)
			return
		}
	}
}

// pumpSessionEvents prints controller notifications; with auto it also
// answers them.
func pumpSessionEvents(ctrl *session.Controller, auto bool) {
	for ev := range ctrl.Events {
		switch e := ev.(type) {
		case session.SelectionOpened:
			fmt.Printf("select traits (%d available):\n", len(e.Traits))
			for i, tr := range e.Traits {
				fmt.Printf("  %d: [%s] %s\n", i, tr.Kind, tr.Text)
			}
			if auto {
				for i := range e.Traits {
					ctrl.Actions <- session.Action{Type: session.ActionToggleTrait, Trait: i}
				}
				ctrl.Actions <- session.Action{Type: session.ActionConfirm}
			}
		case session.TraitToggled:
			fmt.Printf("trait %d selected=%v (%d total)\n", e.Trait, e.Selected, e.Count)
		case session.PoolBuilt:
			fmt.Printf("pool built: %d tiles face-down (%d success, %d complication)\n",
				e.Size, e.Successes, e.Complications)
			if auto {
				for i := 0; i < e.Size; i++ {
					ctrl.Actions <- session.Action{Type: session.ActionRevealTile, Index: i}
				}
			}
		case session.TileRevealed:
			fmt.Printf("tile %d: %s (so far %d/%d, %d left)\n",
				e.Index, e.Tile, e.Tally.Successes, e.Tally.Complications, e.Remaining)
		case session.Completed:
			fmt.Printf("test complete: %d successes, %d complications — result sent\n",
				e.Result.Successes, e.Result.Complications)
		case session.Cancelled:
			fmt.Println("test cancelled")
		case session.Rejected:
			fmt.Println("rejected:", e.Reason)
		}
	}
}

// runConsole reads player commands from stdin until EOF or quit.
func runConsole(cl *client.Client, ctrl *session.Controller, mu *sync.Mutex, sheet *hero.Sheet) {
	fmt.Println("player console — commands: toggle <n> | confirm | reveal <n> | cancel | name <text> | sheet | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return

		case "toggle":
			if n, ok := argInt(fields, 1); ok {
				ctrl.Actions <- session.Action{Type: session.ActionToggleTrait, Trait: n}
			}

		case "confirm":
			ctrl.Actions <- session.Action{Type: session.ActionConfirm}

		case "reveal":
			if n, ok := argInt(fields, 1); ok {
				ctrl.Actions <- session.Action{Type: session.ActionRevealTile, Index: n}
			}

		case "cancel":
			ctrl.Actions <- session.Action{Type: session.ActionCancel}

		case "name":
			if len(fields) < 2 {
				fmt.Println("usage: name <text>")
				continue
			}
			mu.Lock()
			sheet.Name = strings.Join(fields[1:], " ")
			updated := sheet.Clone()
			mu.Unlock()
			cl.SendSheetUpdate(updated)

		case "sheet":
			mu.Lock()
			s := sheet.Clone()
			mu.Unlock()
			fmt.Printf("%s (%s) — %s\n", s.Name, s.Archetype, s.RiskFor)
			for i, tr := range s.SelectableTraits() {
				fmt.Printf("  %d: [%s] %s\n", i, tr.Kind, tr.Text)
			}

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func argInt(fields []string, i int) (int, bool) {
	if len(fields) <= i {
		fmt.Println("missing number argument")
		return 0, false
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		fmt.Printf("not a number: %q\n", fields[i])
		return 0, false
	}
	return n, true
}

// sampleSheet is the default hero when no sheet file is given: Lothar
// from the rulebook.
func sampleSheet() hero.Sheet {
	s := hero.Sheet{
		Name:      "Lothar",
		RiskFor:   "A deep sense of justice, hardened by many battles.",
		Archetype: "Bounty Hunter",
		Qualities: []string{"Veteran", "Cunning", "Frightening"},
		Abilities: []string{"Archery", "Investigate", "Pass unnoticed", "Interrogate"},
	}
	s.Normalize()
	return s
}
