// The narrator binary: listens for player connections over TCP and
// WebSocket, keeps the roster and test history, and offers a small
// console for sending tests.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/beanz-y/not-the-end/api"
	"github.com/beanz-y/not-the-end/config"
	"github.com/beanz-y/not-the-end/draw"
	"github.com/beanz-y/not-the-end/history"
	"github.com/beanz-y/not-the-end/loghandler"
	"github.com/beanz-y/not-the-end/roster"
	"github.com/beanz-y/not-the-end/server"
	"github.com/beanz-y/not-the-end/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "narrator")
	}

	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, slog.LevelInfo)))

	cfg := config.Load()
	slog.Info("configuration", "tag", "narrator",
		"listen", fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort),
		"http_port", cfg.HTTPPort)

	r := roster.New()
	r.OnChange = func(count int) {
		slog.Info("roster changed", "tag", "narrator", "players", count)
	}
	log := history.NewMemoryLog()

	srv := server.New(cfg, r, log)
	srv.OnResult = func(rec history.Record) {
		if rec.LeftScene {
			slog.Info("the hero leaves the scene!", "tag", "narrator", "name", rec.PlayerName)
		}
	}
	if err := srv.Start(); err != nil {
		slog.Error("start failed", "tag", "narrator", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeWS)
	api.NewHandler(r, log).RegisterRoutes(mux)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		slog.Info("serving /ws and /api", "tag", "narrator", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("http server failed", "tag", "narrator", "err", err)
		}
	}()

	runConsole(srv, r, log)
	srv.Stop()
}

// runConsole reads operator commands from stdin until EOF or quit.
func runConsole(srv *server.Server, r *roster.Roster, log *history.MemoryLog) {
	fmt.Println("narrator console — commands: roster | history | test <n> <difficulty> <danger> | all <difficulty> <danger> | draw <successes> <complications> <quota> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return

		case "roster":
			entries := r.Snapshot()
			if len(entries) == 0 {
				fmt.Println("no players connected")
			}
			for i, e := range entries {
				fmt.Printf("%d: %s — %s (%s), %d traits\n", i,
					e.ConnID, e.Sheet.Name, e.Sheet.Archetype, len(e.Sheet.SelectableTraits()))
			}

		case "history":
			for _, rec := range log.List() {
				verdict := ""
				if rec.LeftScene {
					verdict = " — leaves the scene!"
				}
				fmt.Printf("%s %s: %d successes, %d complications (difficulty %d, danger %d)%s\n",
					rec.At.Format("15:04:05"), rec.PlayerName,
					rec.Successes, rec.Complications, rec.Difficulty, rec.Danger, verdict)
			}

		case "test":
			if len(fields) != 4 {
				fmt.Println("usage: test <roster-index> <difficulty> <danger>")
				continue
			}
			idx, params, err := parseTestArgs(fields[1], fields[2], fields[3])
			if err != nil {
				fmt.Println(err)
				continue
			}
			entries := r.Snapshot()
			if idx < 0 || idx >= len(entries) {
				fmt.Println("no such roster entry")
				continue
			}
			if err := srv.SendTest(entries[idx].ConnID, params); err != nil {
				fmt.Println("send failed:", err)
				continue
			}
			fmt.Printf("test sent to %s: difficulty %d, %s\n",
				entries[idx].Sheet.Name, params.Difficulty, session.DangerLabel(params.Danger))

		case "all":
			if len(fields) != 3 {
				fmt.Println("usage: all <difficulty> <danger>")
				continue
			}
			_, params, err := parseTestArgs("0", fields[1], fields[2])
			if err != nil {
				fmt.Println(err)
				continue
			}
			srv.BroadcastTest(params)
			fmt.Printf("test sent to all players: difficulty %d, %s\n",
				params.Difficulty, session.DangerLabel(params.Danger))

		case "draw":
			if len(fields) != 4 {
				fmt.Println("usage: draw <successes> <complications> <quota>")
				continue
			}
			runLocalDraw(fields[1], fields[2], fields[3])

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

// runLocalDraw performs a bag draw at the narrator's own table: it fills
// a bag, shuffles it and reveals a fixed quota of tiles one by one.
func runLocalDraw(succStr, compStr, quotaStr string) {
	successes, err1 := strconv.Atoi(succStr)
	complications, err2 := strconv.Atoi(compStr)
	quota, err3 := strconv.Atoi(quotaStr)
	if err1 != nil || err2 != nil || err3 != nil || successes < 0 || complications < 0 {
		fmt.Println("usage: draw <successes> <complications> <quota>")
		return
	}

	pool := draw.NewPool(successes, complications, nil)
	counted, err := draw.NewCounted(pool, quota)
	if err != nil {
		fmt.Println("bad quota:", err)
		return
	}

	for i := 0; !counted.Done(); i++ {
		kind, err := counted.Reveal(i)
		if err != nil {
			fmt.Println("reveal failed:", err)
			return
		}
		fmt.Printf("tile %d: %s\n", i+1, kind)
	}
	result := counted.Result()
	fmt.Printf("drawn: %d successes, %d complications\n", result.Successes, result.Complications)
}

func parseTestArgs(idxStr, diffStr, dangerStr string) (int, session.Params, error) {
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return 0, session.Params{}, fmt.Errorf("bad roster index %q", idxStr)
	}
	difficulty, err := strconv.Atoi(diffStr)
	if err != nil || difficulty < 0 {
		return 0, session.Params{}, fmt.Errorf("difficulty must be a non-negative integer")
	}
	danger, err := strconv.Atoi(dangerStr)
	if err != nil || danger < 0 || danger > session.MaxDanger {
		return 0, session.Params{}, fmt.Errorf("danger must be 0-%d", session.MaxDanger)
	}
	return idx, session.Params{Difficulty: difficulty, Danger: danger}, nil
}
