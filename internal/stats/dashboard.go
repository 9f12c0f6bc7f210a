package stats

import (
	"fmt"
	"sort"

	"github.com/pable/go-match-stats/internal/model"
)

// Series keys used by the per-player dashboard rows.
const (
	KeyWins   = "wins"
	KeyLosses = "losses"
	KeyWon    = "won"
	KeyLost   = "lost"
	KeyMargin = "margin"
)

// selected is one dashboard player: its id and the series key it reports under.
type selected struct {
	id  string
	key string
}

// Dashboard computes the team-aware dashboard aggregates for the filtered
// players and matches.
func Dashboard(players []model.Player, matches []model.Match, f model.DashboardFilter) model.Dashboard {
	sel := selectPlayers(players, matches, f.PlayerIDs)
	ms := filterMatches(matches, sel, f)

	d := model.Dashboard{
		Players:      make([]string, len(sel)),
		TotalMatches: len(ms),
	}
	for i, p := range sel {
		d.Players[i] = p.key
	}

	d.WinLoss = winLossRows(sel, ms)
	d.SetWinLoss = setWinLossRows(sel, ms)
	d.WinsOverTime = winsOverTime(sel, ms)
	d.AvgSetMargin = avgSetMargin(sel, ms)
	d.AvgMatchMargin = avgMatchMargin(sel, ms)
	d.Points = pointTotals(sel, ms, f.PointsBySport)
	return d
}

// selectPlayers resolves the requested ids (or every player when none are
// given) to unique series keys. Duplicate names get the id appended.
func selectPlayers(players []model.Player, matches []model.Match, ids []string) []selected {
	if len(ids) == 0 {
		for _, p := range players {
			ids = append(ids, p.ID)
		}
	}

	seenID := make(map[string]struct{}, len(ids))
	seenKey := make(map[string]struct{}, len(ids))
	out := make([]selected, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seenID[id]; ok {
			continue
		}
		seenID[id] = struct{}{}

		key := PlayerName(id, matches, players)
		if _, ok := seenKey[key]; ok {
			key = fmt.Sprintf("%s (%s)", key, id)
		}
		seenKey[key] = struct{}{}
		out = append(out, selected{id: id, key: key})
	}
	return out
}

// filterMatches applies the sport filter and the participation rule:
// head-to-head requires every selected player and nobody else; otherwise one
// selected player is enough.
func filterMatches(matches []model.Match, sel []selected, f model.DashboardFilter) []*model.Match {
	if len(sel) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(sel))
	for _, p := range sel {
		want[p.id] = struct{}{}
	}

	var out []*model.Match
	for i := range matches {
		m := &matches[i]
		if f.Sport != "" && m.SportType != f.Sport {
			continue
		}
		participants := m.ParticipantIDs()
		present := 0
		for _, id := range participants {
			if _, ok := want[id]; ok {
				present++
			}
		}
		if f.HeadToHeadOnly {
			if present != len(sel) || len(participants) != len(sel) {
				continue
			}
		} else if present == 0 {
			continue
		}
		out = append(out, m)
	}
	return out
}

func winLossRows(sel []selected, ms []*model.Match) []model.Row {
	rows := make([]model.Row, 0, len(sel))
	for _, p := range sel {
		var played, wins int
		for _, m := range ms {
			side := SideOf(m, p.id)
			if side == model.SideNone {
				continue
			}
			played++
			if m.Winner == side {
				wins++
			}
		}
		rows = append(rows, model.Row{
			Category: p.key,
			Series:   map[string]float64{KeyWins: float64(wins), KeyLosses: float64(played - wins)},
		})
	}
	return rows
}

func setWinLossRows(sel []selected, ms []*model.Match) []model.Row {
	rows := make([]model.Row, 0, len(sel))
	for _, p := range sel {
		var won, lost int
		for _, m := range ms {
			side := SideOf(m, p.id)
			if side == model.SideNone {
				continue
			}
			for _, s := range m.Sets {
				if s.Winner == side {
					won++
				} else {
					lost++
				}
			}
		}
		rows = append(rows, model.Row{
			Category: p.key,
			Series:   map[string]float64{KeyWon: float64(won), KeyLost: float64(lost)},
		})
	}
	return rows
}

// winsOverTime emits one row per month in which any selected player played;
// every selected player reports a value, zero when they did not win.
func winsOverTime(sel []selected, ms []*model.Match) []model.Row {
	byMonth := make(map[string]map[string]float64)
	for _, m := range ms {
		month := model.MonthKey(m.Date)
		for _, p := range sel {
			side := SideOf(m, p.id)
			if side == model.SideNone {
				continue
			}
			if byMonth[month] == nil {
				byMonth[month] = make(map[string]float64, len(sel))
			}
			if m.Winner == side {
				byMonth[month][p.key]++
			}
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	rows := make([]model.Row, 0, len(months))
	for _, month := range months {
		series := make(map[string]float64, len(sel))
		for _, p := range sel {
			series[p.key] = byMonth[month][p.key]
		}
		rows = append(rows, model.Row{Category: month, Series: series})
	}
	return rows
}

// avgSetMargin averages each player's signed margin per set position. The
// sign follows the set's declared winner, not the raw score difference.
// Players without a set at a position are absent from that row.
func avgSetMargin(sel []selected, ms []*model.Match) []model.Row {
	maxSets := 0
	for _, m := range ms {
		if len(m.Sets) > maxSets {
			maxSets = len(m.Sets)
		}
	}

	rows := make([]model.Row, 0, maxSets)
	for k := 0; k < maxSets; k++ {
		series := make(map[string]float64, len(sel))
		for _, p := range sel {
			var sum, n int
			for _, m := range ms {
				side := SideOf(m, p.id)
				if side == model.SideNone || k >= len(m.Sets) {
					continue
				}
				s := m.Sets[k]
				if s.Winner == side {
					sum += s.Margin()
				} else {
					sum -= s.Margin()
				}
				n++
			}
			if n > 0 {
				series[p.key] = float64(sum) / float64(n)
			}
		}
		rows = append(rows, model.Row{Category: fmt.Sprintf("Set %d", k+1), Series: series})
	}
	return rows
}

// avgMatchMargin is the mean per-match point difference for each player.
func avgMatchMargin(sel []selected, ms []*model.Match) []model.Row {
	rows := make([]model.Row, 0, len(sel))
	for _, p := range sel {
		var sum, n int
		for _, m := range ms {
			side := SideOf(m, p.id)
			if side == model.SideNone {
				continue
			}
			for _, s := range m.Sets {
				own, opp := s.ScoreFor(side)
				sum += own - opp
			}
			n++
		}
		avg := 0.0
		if n > 0 {
			avg = float64(sum) / float64(n)
		}
		rows = append(rows, model.Row{Category: p.key, Series: map[string]float64{KeyMargin: avg}})
	}
	return rows
}

// SportKey returns the series key for a per-sport point total, e.g. "padel won".
func SportKey(sport model.SportType, key string) string {
	return string(sport) + " " + key
}

func pointTotals(sel []selected, ms []*model.Match, bySport bool) []model.Row {
	rows := make([]model.Row, 0, len(sel))
	for _, p := range sel {
		series := map[string]float64{KeyWon: 0, KeyLost: 0}
		for _, m := range ms {
			side := SideOf(m, p.id)
			if side == model.SideNone {
				continue
			}
			for _, s := range m.Sets {
				own, opp := s.ScoreFor(side)
				series[KeyWon] += float64(own)
				series[KeyLost] += float64(opp)
				if bySport {
					series[SportKey(m.SportType, KeyWon)] += float64(own)
					series[SportKey(m.SportType, KeyLost)] += float64(opp)
				}
			}
		}
		rows = append(rows, model.Row{Category: p.key, Series: series})
	}
	return rows
}
