package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/stats"
)

const (
	dateLayout = "2006-01-02"
	missing    = "—"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintPlayers lists registered players.
func PrintPlayers(w io.Writer, players []model.Player) {
	table := newTable(w)
	table.Header("ID", "NAME", "EMAIL", "PHONE", "CREATED")
	for _, p := range players {
		table.Append(p.ID, p.Name, orMissing(p.Email), orMissing(p.Phone), p.CreatedAt.Format(dateLayout))
	}
	table.Render()
}

// PrintMatches prints one line per match in the given order.
func PrintMatches(w io.Writer, matches []model.Match) {
	table := newTable(w)
	table.Header("ID", "DATE", "SPORT", "TYPE", "MATCH", "SCORE", "WINNER", "MIN")
	for _, m := range matches {
		dur := missing
		if m.Duration > 0 {
			dur = strconv.Itoa(m.Duration)
		}
		table.Append(
			m.ID,
			m.Date.Format(dateLayout),
			string(m.SportType),
			string(m.MatchType),
			m.Title(),
			m.ScoreLine(),
			m.WinnerNames(),
			dur,
		)
	}
	table.Render()
}

// PrintMatchDetail prints a match header followed by its set-by-set scores.
func PrintMatchDetail(w io.Writer, m model.Match) {
	fmt.Fprintf(w, "\n%s  |  %s %s  |  %s  |  Winner: %s  |  ID: %s\n",
		m.Title(), m.SportType, m.MatchType, m.Date.Format(dateLayout), m.WinnerNames(), m.ID)
	if m.Duration > 0 {
		fmt.Fprintf(w, "Duration: %d min\n", m.Duration)
	}
	if m.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", m.Notes)
	}
	fmt.Fprintln(w)

	table := newTable(w)
	table.Header("SET", m.SideNames(model.Side1), m.SideNames(model.Side2), "WINNER", "MARGIN")
	for i, s := range m.Sets {
		table.Append(
			strconv.Itoa(i+1),
			strconv.Itoa(s.Player1Score),
			strconv.Itoa(s.Player2Score),
			orMissing(m.SideNames(s.Winner)),
			strconv.Itoa(s.Margin()),
		)
	}
	table.Render()
}

// PrintPlayerStats prints the per-player summary table.
func PrintPlayerStats(w io.Writer, all []model.PlayerStats) {
	table := newTable(w)
	table.Header("PLAYER", "MATCHES", "W", "L", "WIN%", "SETS_W", "SETS_L", "PTS/SET", "BEST_STREAK", "STREAK", "LAST_PLAYED")
	for _, s := range all {
		last := missing
		if s.LastPlayed != nil {
			last = s.LastPlayed.Format(dateLayout)
		}
		table.Append(
			s.PlayerName,
			strconv.Itoa(s.TotalMatches),
			strconv.Itoa(s.TotalWins),
			strconv.Itoa(s.TotalLosses),
			fmt.Sprintf("%.0f%%", s.WinRate),
			strconv.Itoa(s.TotalSetsWon),
			strconv.Itoa(s.TotalSetsLost),
			fmt.Sprintf("%.1f", s.AverageScorePerSet),
			strconv.Itoa(s.LongestWinStreak),
			strconv.Itoa(s.CurrentStreak),
			last,
		)
	}
	table.Render()
}

// PrintMonthly prints a player's month-by-month record.
func PrintMonthly(w io.Writer, months []model.MonthRecord) {
	table := newTable(w)
	table.Header("MONTH", "W", "L", "WIN%")
	for _, m := range months {
		rate := missing
		if n := m.Wins + m.Losses; n > 0 {
			rate = fmt.Sprintf("%.0f%%", float64(m.Wins)/float64(n)*100)
		}
		table.Append(m.Month, strconv.Itoa(m.Wins), strconv.Itoa(m.Losses), rate)
	}
	table.Render()
}

// PrintSportStats prints one row per sport.
func PrintSportStats(w io.Writer, all []model.SportStats) {
	table := newTable(w)
	table.Header("SPORT", "MATCHES", "PLAYERS", "AVG_MIN", "MOST_ACTIVE", "HIGHEST_SCORING")
	for _, s := range all {
		avg := missing
		if s.AverageMatchDuration > 0 {
			avg = fmt.Sprintf("%.0f", s.AverageMatchDuration)
		}
		table.Append(
			string(s.SportType),
			strconv.Itoa(s.TotalMatches),
			strconv.Itoa(s.TotalPlayers),
			avg,
			orMissing(s.MostActivePlayer),
			orMissing(s.HighestScoringMatch),
		)
	}
	table.Render()
}

// PrintDashboard prints every dashboard section as its own table.
func PrintDashboard(w io.Writer, d model.Dashboard) {
	fmt.Fprintf(w, "\nMatches in view: %d\n", d.TotalMatches)

	section(w, "Win / loss")
	printRows(w, "PLAYER", d.WinLoss, []string{stats.KeyWins, stats.KeyLosses}, "%.0f")

	section(w, "Sets won / lost")
	printRows(w, "PLAYER", d.SetWinLoss, []string{stats.KeyWon, stats.KeyLost}, "%.0f")

	section(w, "Wins per month")
	printRows(w, "MONTH", d.WinsOverTime, d.Players, "%.0f")

	section(w, "Average margin by set")
	printRows(w, "SET", d.AvgSetMargin, d.Players, "%+.1f")

	section(w, "Average match margin")
	printRows(w, "PLAYER", d.AvgMatchMargin, []string{stats.KeyMargin}, "%+.1f")

	section(w, "Points won / lost")
	printRows(w, "PLAYER", d.Points, pointColumns(d.Points), "%.0f")
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", title)
}

// printRows renders rows with one column per series key. Keys a row does
// not carry print as a dash.
func printRows(w io.Writer, first string, rows []model.Row, keys []string, format string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no data)")
		return
	}
	header := make([]any, 0, len(keys)+1)
	header = append(header, first)
	for _, k := range keys {
		header = append(header, k)
	}

	table := newTable(w)
	table.Header(header...)
	for _, r := range rows {
		cells := make([]any, 0, len(keys)+1)
		cells = append(cells, r.Category)
		for _, k := range keys {
			if v, ok := r.Value(k); ok {
				cells = append(cells, fmt.Sprintf(format, v))
			} else {
				cells = append(cells, missing)
			}
		}
		table.Append(cells...)
	}
	table.Render()
}

// pointColumns returns won/lost plus any per-sport keys present in rows.
func pointColumns(rows []model.Row) []string {
	keys := []string{stats.KeyWon, stats.KeyLost}
	for _, sport := range model.Sports {
		for _, k := range []string{stats.KeyWon, stats.KeyLost} {
			sk := stats.SportKey(sport, k)
			for _, r := range rows {
				if _, ok := r.Value(sk); ok {
					keys = append(keys, sk)
					break
				}
			}
		}
	}
	return keys
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// PrintQueryResult renders a raw query result followed by its row count.
// SQL NULLs arrive already rendered as "NULL".
func PrintQueryResult(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	table := newTable(w)
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
