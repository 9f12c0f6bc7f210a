package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-andiamo/splitter"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-stats/internal/report"
	"github.com/pable/go-match-stats/internal/stats"
	"github.com/pable/go-match-stats/internal/tracker"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the match store. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellTokens splits a line on spaces, keeping quoted names together.
func shellTokens(line string) ([]string, error) {
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := spaceSplitter.Split(line)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "\"“”")
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens, nil
}

func runShell(_ *cobra.Command, _ []string) error {
	svc, store, err := openService()
	if err != nil {
		return err
	}
	defer store.Close()

	cGreeting.Println("matchstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("matchstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens, err := shellTokens(line)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "players":
			shellPlayers(svc)
		case "recent":
			n := cfg.RecentLimit
			if len(args) > 0 {
				if n, err = strconv.Atoi(args[0]); err != nil || n <= 0 {
					cError.Fprintln(os.Stderr, "usage: recent [n]")
					continue
				}
			}
			shellRecent(svc, n)
		case "show":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: show <match-id>")
				continue
			}
			shellShow(svc, args[0])
		case "player":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: player <name-or-id>")
				continue
			}
			shellPlayer(svc, args[0])
		case "trend":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: trend <name-or-id>")
				continue
			}
			shellTrend(svc, args[0])
		case "dashboard":
			shellDashboard(svc, args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"players", "list registered players"},
		{"recent [n]", "show the n most recent matches"},
		{"show <match-id>", "show a match set by set"},
		{"player <name-or-id>", "stats, monthly record and history for a player"},
		{"trend <name-or-id>", "month-by-month record for a player"},
		{"dashboard [flags] [player...]", "compare players; flags: --h2h --by-sport --sport=<s>"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	cMuted.Println(`  quote names with spaces: player "Ana Lopez"`)
	fmt.Println()
}

func shellPlayers(svc *tracker.Service) {
	players, err := svc.Store().ListPlayers()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(players) == 0 {
		cMuted.Println("No players yet.")
		return
	}
	report.PrintPlayers(os.Stdout, players)
}

func shellRecent(svc *tracker.Service, n int) {
	matches, err := svc.Store().ListMatches()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches recorded yet.")
		return
	}
	report.PrintMatches(os.Stdout, stats.RecentMatches(matches, n))
}

func shellShow(svc *tracker.Service, id string) {
	m, err := svc.Store().GetMatch(id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintMatchDetail(os.Stdout, *m)
}

func shellPlayer(svc *tracker.Service, query string) {
	p, err := svc.ResolvePlayer(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	snap, err := svc.Snapshot()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Fprintf(os.Stdout, "--- %s ---\n", p.Name)
	printPlayerReport(p.ID, snap, 10)
}

func shellTrend(svc *tracker.Service, query string) {
	p, err := svc.ResolvePlayer(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	snap, err := svc.Snapshot()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	months := stats.WinLossByMonth(p.ID, snap.Matches)
	if len(months) == 0 {
		cMuted.Printf("No matches found for %s\n", p.Name)
		return
	}
	cHeader.Fprintf(os.Stdout, "--- %s: monthly record ---\n", p.Name)
	report.PrintMonthly(os.Stdout, months)
}

func shellDashboard(svc *tracker.Service, args []string) {
	var (
		sport        string
		h2h, bySport bool
		players      []string
	)
	for _, a := range args {
		switch {
		case a == "--h2h":
			h2h = true
		case a == "--by-sport":
			bySport = true
		case strings.HasPrefix(a, "--sport="):
			sport = strings.TrimPrefix(a, "--sport=")
		default:
			players = append(players, a)
		}
	}
	f, err := dashboardFilter(svc, sport, players, h2h, bySport)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	snap, err := svc.Snapshot()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintDashboard(os.Stdout, stats.Dashboard(snap.Players, snap.Matches, f))
}
