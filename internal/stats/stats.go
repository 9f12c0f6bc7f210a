// Package stats derives player and dashboard statistics from a snapshot of
// matches. Every function is pure: inputs are never mutated and no error is
// ever returned; missing data yields zero values.
package stats

import (
	"sort"
	"time"

	"github.com/xorcare/pointer"

	"github.com/pable/go-match-stats/internal/model"
)

const unknownPlayer = "Unknown Player"

// SideOf resolves which side playerID played on. Doubles partners (slots 3
// and 4) count exactly like the primary slot of their side.
func SideOf(m *model.Match, playerID string) model.Side {
	if playerID == "" {
		return model.SideNone
	}
	switch {
	case m.Player1ID == playerID || m.Player3ID == playerID:
		return model.Side1
	case m.Player2ID == playerID || m.Player4ID == playerID:
		return model.Side2
	default:
		return model.SideNone
	}
}

// SetWinner returns the side with the higher score, SideNone on a tie.
func SetWinner(p1, p2 int) model.Side {
	switch {
	case p1 > p2:
		return model.Side1
	case p2 > p1:
		return model.Side2
	default:
		return model.SideNone
	}
}

// DeriveWinner returns the side that won a strict majority of sets.
func DeriveWinner(sets []model.Set) model.Side {
	var w1, w2 int
	for _, s := range sets {
		switch s.Winner {
		case model.Side1:
			w1++
		case model.Side2:
			w2++
		}
	}
	return SetWinner(w1, w2)
}

// playerMatch pairs a match with the side the player was on.
type playerMatch struct {
	m    *model.Match
	side model.Side
}

// participations returns the matches playerID took part in, in input order.
func participations(playerID string, matches []model.Match) []playerMatch {
	var out []playerMatch
	for i := range matches {
		if side := SideOf(&matches[i], playerID); side != model.SideNone {
			out = append(out, playerMatch{m: &matches[i], side: side})
		}
	}
	return out
}

// PlayerStats computes the aggregate record for one player. A drawn match
// (no winner) is not a win, so it is counted in TotalLosses.
func PlayerStats(playerID string, matches []model.Match, players []model.Player) model.PlayerStats {
	pms := participations(playerID, matches)

	st := model.PlayerStats{
		PlayerID:     playerID,
		PlayerName:   PlayerName(playerID, matches, players),
		TotalMatches: len(pms),
	}

	var totalScore, totalSets int
	var last time.Time
	for _, pm := range pms {
		if pm.m.Winner == pm.side {
			st.TotalWins++
		}
		for _, set := range pm.m.Sets {
			own, _ := set.ScoreFor(pm.side)
			totalScore += own
			totalSets++
			if set.Winner == pm.side {
				st.TotalSetsWon++
			} else {
				st.TotalSetsLost++
			}
		}
		if pm.m.Date.After(last) || last.IsZero() {
			last = pm.m.Date
		}
	}
	st.TotalLosses = st.TotalMatches - st.TotalWins
	if st.TotalMatches > 0 {
		st.WinRate = float64(st.TotalWins) / float64(st.TotalMatches) * 100
		st.LastPlayed = pointer.Time(last)
	}
	if totalSets > 0 {
		st.AverageScorePerSet = float64(totalScore) / float64(totalSets)
	}

	st.LongestWinStreak, st.CurrentStreak = streaks(pms)
	return st
}

// streaks walks the player's matches in ascending date order.
func streaks(pms []playerMatch) (longest, current int) {
	ordered := make([]playerMatch, len(pms))
	copy(ordered, pms)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].m.Date.Before(ordered[j].m.Date)
	})

	run := 0
	for _, pm := range ordered {
		if pm.m.Winner == pm.side {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest, run
}

// PlayerName resolves a display name: the player record first, then the
// denormalized snapshot on the first match that references the id.
func PlayerName(playerID string, matches []model.Match, players []model.Player) string {
	for _, p := range players {
		if p.ID == playerID {
			return p.Name
		}
	}
	for i := range matches {
		if name, ok := matches[i].NameOf(playerID); ok && name != "" {
			return name
		}
	}
	return unknownPlayer
}

// RecentMatches returns the n most recent matches, newest first. Matches on
// the same date keep their input order. n <= 0 returns every match.
func RecentMatches(matches []model.Match, n int) []model.Match {
	out := sortedByDateDesc(matches)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// PlayerMatchHistory returns playerID's matches, newest first.
func PlayerMatchHistory(playerID string, matches []model.Match) []model.Match {
	var mine []model.Match
	for i := range matches {
		if SideOf(&matches[i], playerID) != model.SideNone {
			mine = append(mine, matches[i])
		}
	}
	return sortedByDateDesc(mine)
}

func sortedByDateDesc(matches []model.Match) []model.Match {
	out := make([]model.Match, len(matches))
	copy(out, matches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// WinLossByMonth buckets a player's results by UTC calendar month, oldest first.
func WinLossByMonth(playerID string, matches []model.Match) []model.MonthRecord {
	byMonth := make(map[string]*model.MonthRecord)
	for _, pm := range participations(playerID, matches) {
		key := model.MonthKey(pm.m.Date)
		rec := byMonth[key]
		if rec == nil {
			rec = &model.MonthRecord{Month: key}
			byMonth[key] = rec
		}
		if pm.m.Winner == pm.side {
			rec.Wins++
		} else {
			rec.Losses++
		}
	}

	out := make([]model.MonthRecord, 0, len(byMonth))
	for _, rec := range byMonth {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SportStats summarises one sport. Ties for most active player and highest
// scoring match go to whichever reached the maximum first in input order.
func SportStats(sport model.SportType, matches []model.Match, players []model.Player) model.SportStats {
	st := model.SportStats{
		SportType:    sport,
		TotalPlayers: len(players),
	}

	counts := make(map[string]int)
	var order []string
	var totalDuration, maxScore int
	for i := range matches {
		m := &matches[i]
		if m.SportType != sport {
			continue
		}
		st.TotalMatches++
		totalDuration += m.Duration

		for _, id := range m.ParticipantIDs() {
			if _, ok := counts[id]; !ok {
				order = append(order, id)
			}
			counts[id]++
		}

		score := 0
		for _, s := range m.Sets {
			score += s.Player1Score + s.Player2Score
		}
		if score > maxScore {
			maxScore = score
			st.HighestScoringMatch = m.Title()
		}
	}
	if st.TotalMatches > 0 {
		st.AverageMatchDuration = float64(totalDuration) / float64(st.TotalMatches)
	}

	best := 0
	for _, id := range order {
		if counts[id] > best {
			best = counts[id]
			st.MostActivePlayer = PlayerName(id, matches, players)
		}
	}
	return st
}
