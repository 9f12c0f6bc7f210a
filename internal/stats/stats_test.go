package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-match-stats/internal/model"
)

// IDs for test players.
const (
	playerA = "a"
	playerB = "b"
	playerC = "c"
	playerD = "d"
)

var testPlayers = []model.Player{
	{ID: playerA, Name: "Ana"},
	{ID: playerB, Name: "Ben"},
	{ID: playerC, Name: "Cal"},
	{ID: playerD, Name: "Dee"},
}

func day(d int) time.Time {
	return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// set builds a set with its winner derived from the scores.
func set(p1, p2 int) model.Set {
	return model.Set{Player1Score: p1, Player2Score: p2, Winner: SetWinner(p1, p2)}
}

// singles builds an A-vs-B style match with the winner derived from the sets.
func singles(id, p1, p2 string, date time.Time, sets ...model.Set) model.Match {
	return model.Match{
		ID: id, SportType: model.SportBadminton, MatchType: model.MatchSingles,
		Player1ID: p1, Player2ID: p2,
		Player1Name: p1 + "-name", Player2Name: p2 + "-name",
		Sets: sets, Winner: DeriveWinner(sets), Date: date,
	}
}

func doubles(id string, p1, p3, p2, p4 string, date time.Time, sets ...model.Set) model.Match {
	m := singles(id, p1, p2, date, sets...)
	m.MatchType = model.MatchDoubles
	m.SportType = model.SportPadel
	m.Player3ID, m.Player4ID = p3, p4
	m.Player3Name, m.Player4Name = p3+"-name", p4+"-name"
	return m
}

func TestPlayerStats_NoMatches(t *testing.T) {
	st := PlayerStats(playerA, nil, testPlayers)

	assert.Equal(t, 0, st.TotalMatches)
	assert.Equal(t, 0.0, st.WinRate)
	assert.Equal(t, 0.0, st.AverageScorePerSet)
	assert.Nil(t, st.LastPlayed)
	assert.Equal(t, "Ana", st.PlayerName)
}

func TestPlayerStats_UnknownPlayer(t *testing.T) {
	matches := []model.Match{singles("m1", playerA, playerB, day(0), set(21, 10))}
	st := PlayerStats("ghost", matches, testPlayers)

	assert.Equal(t, 0, st.TotalMatches)
	assert.Equal(t, "Unknown Player", st.PlayerName)
}

func TestPlayerStats_Totals(t *testing.T) {
	matches := []model.Match{
		singles("m1", playerA, playerB, day(0), set(21, 15), set(21, 18)),
		singles("m2", playerB, playerA, day(1), set(21, 10), set(12, 21), set(21, 19)),
		singles("m3", playerC, playerD, day(2), set(21, 0)),
	}
	st := PlayerStats(playerA, matches, testPlayers)

	assert.Equal(t, 2, st.TotalMatches)
	assert.Equal(t, 1, st.TotalWins)
	assert.Equal(t, 1, st.TotalLosses)
	assert.InDelta(t, 50.0, st.WinRate, 1e-9)
	assert.Equal(t, 3, st.TotalSetsWon)
	assert.Equal(t, 2, st.TotalSetsLost)
	// A scored 21+21 as player1, then 10+21+19 as player2.
	assert.InDelta(t, float64(21+21+10+21+19)/5, st.AverageScorePerSet, 1e-9)
	require.NotNil(t, st.LastPlayed)
	assert.True(t, day(1).Equal(*st.LastPlayed))
}

func TestPlayerStats_DrawCountsAsLoss(t *testing.T) {
	matches := []model.Match{
		singles("m1", playerA, playerB, day(0), set(21, 15), set(15, 21)),
		singles("m2", playerA, playerB, day(1), set(21, 15)),
	}
	require.Equal(t, model.SideNone, matches[0].Winner)

	st := PlayerStats(playerA, matches, testPlayers)
	assert.Equal(t, 2, st.TotalMatches)
	assert.Equal(t, 1, st.TotalWins)
	assert.Equal(t, 1, st.TotalLosses)
	assert.Equal(t, st.TotalMatches, st.TotalWins+st.TotalLosses)
}

func TestPlayerStats_WinsPlusLossesEqualsMatches(t *testing.T) {
	var matches []model.Match
	scores := [][2]int{{21, 3}, {4, 21}, {21, 19}, {18, 21}, {30, 29}}
	for i := 0; i < 20; i++ {
		var sets []model.Set
		for j := 0; j <= i%4; j++ {
			sc := scores[(i+j)%len(scores)]
			sets = append(sets, set(sc[0], sc[1]))
		}
		p1, p2 := playerA, playerB
		if i%3 == 0 {
			p1, p2 = playerB, playerA
		}
		matches = append(matches, singles("m", p1, p2, day(i), sets...))
	}

	for _, id := range []string{playerA, playerB, playerC} {
		st := PlayerStats(id, matches, testPlayers)
		assert.Equal(t, st.TotalMatches, st.TotalWins+st.TotalLosses, id)
	}
}

func TestPlayerStats_Idempotent(t *testing.T) {
	matches := []model.Match{
		singles("m2", playerA, playerB, day(3), set(21, 15)),
		singles("m1", playerB, playerA, day(1), set(21, 15)),
		doubles("m3", playerA, playerC, playerB, playerD, day(2), set(6, 4), set(6, 3)),
	}
	before := make([]model.Match, len(matches))
	copy(before, matches)

	first := PlayerStats(playerA, matches, testPlayers)
	second := PlayerStats(playerA, matches, testPlayers)

	assert.Equal(t, first, second)
	assert.Equal(t, before, matches, "input must not be reordered")
}

func TestPlayerStats_Streaks(t *testing.T) {
	// Chronological results for A: win, win, loss, win. Input order is shuffled.
	matches := []model.Match{
		singles("m4", playerA, playerB, day(4), set(21, 10)),
		singles("m1", playerA, playerB, day(1), set(21, 10)),
		singles("m3", playerA, playerB, day(3), set(10, 21)),
		singles("m2", playerB, playerA, day(2), set(10, 21)),
	}
	st := PlayerStats(playerA, matches, testPlayers)

	assert.Equal(t, 2, st.LongestWinStreak)
	assert.Equal(t, 1, st.CurrentStreak)
}

func TestPlayerStats_OpenStreakIsLongest(t *testing.T) {
	matches := []model.Match{
		singles("m1", playerA, playerB, day(1), set(10, 21)),
		singles("m2", playerA, playerB, day(2), set(21, 10)),
		singles("m3", playerA, playerB, day(3), set(21, 10)),
		singles("m4", playerA, playerB, day(4), set(21, 10)),
	}
	st := PlayerStats(playerA, matches, testPlayers)
	assert.Equal(t, 3, st.LongestWinStreak)
	assert.Equal(t, 3, st.CurrentStreak)

	st = PlayerStats(playerB, matches, testPlayers)
	assert.Equal(t, 1, st.LongestWinStreak)
	assert.Equal(t, 0, st.CurrentStreak)
}

func TestPlayerStats_DoublesPartnerAttribution(t *testing.T) {
	m := doubles("m1", playerA, playerC, playerB, playerD, day(0), set(6, 2), set(6, 4))
	m.Winner = model.Side1
	matches := []model.Match{m}

	c := PlayerStats(playerC, matches, testPlayers)
	d := PlayerStats(playerD, matches, testPlayers)

	assert.Equal(t, 1, c.TotalMatches)
	assert.Equal(t, 1, c.TotalWins)
	assert.Equal(t, 0, c.TotalLosses)
	assert.Equal(t, 2, c.TotalSetsWon)
	assert.InDelta(t, 6.0, c.AverageScorePerSet, 1e-9)

	assert.Equal(t, 1, d.TotalMatches)
	assert.Equal(t, 0, d.TotalWins)
	assert.Equal(t, 1, d.TotalLosses)
	assert.Equal(t, 2, d.TotalSetsLost)
	assert.InDelta(t, 3.0, d.AverageScorePerSet, 1e-9)
}

func TestDeriveWinner(t *testing.T) {
	assert.Equal(t, model.Side1, DeriveWinner([]model.Set{set(21, 10), set(10, 21), set(21, 19)}))
	assert.Equal(t, model.Side2, DeriveWinner([]model.Set{set(1, 6)}))
	assert.Equal(t, model.SideNone, DeriveWinner([]model.Set{set(6, 1), set(1, 6)}))
	assert.Equal(t, model.SideNone, DeriveWinner(nil))
	assert.Equal(t, model.SideNone, SetWinner(5, 5))
}

func TestSideOf(t *testing.T) {
	m := doubles("m", playerA, playerC, playerB, playerD, day(0))
	assert.Equal(t, model.Side1, SideOf(&m, playerA))
	assert.Equal(t, model.Side1, SideOf(&m, playerC))
	assert.Equal(t, model.Side2, SideOf(&m, playerB))
	assert.Equal(t, model.Side2, SideOf(&m, playerD))
	assert.Equal(t, model.SideNone, SideOf(&m, "x"))

	s := singles("s", playerA, playerB, day(0))
	assert.Equal(t, model.SideNone, SideOf(&s, ""), "empty partner slots must not match the empty id")
}

func TestRecentMatches(t *testing.T) {
	matches := []model.Match{
		singles("m3", playerA, playerB, day(3)),
		singles("m5", playerA, playerB, day(5)),
		singles("m1", playerA, playerB, day(1)),
		singles("m4", playerA, playerB, day(4)),
		singles("m2", playerA, playerB, day(2)),
	}
	got := RecentMatches(matches, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "m5", got[0].ID)
	assert.Equal(t, "m4", got[1].ID)
	assert.Equal(t, "m3", matches[0].ID, "input must not be sorted in place")

	assert.Len(t, RecentMatches(matches, 0), 5)
	assert.Len(t, RecentMatches(matches, 50), 5)
	assert.Empty(t, RecentMatches(nil, 3))
}

func TestRecentMatches_StableOnEqualDates(t *testing.T) {
	matches := []model.Match{
		singles("first", playerA, playerB, day(1)),
		singles("second", playerA, playerB, day(1)),
		singles("third", playerA, playerB, day(1)),
	}
	got := RecentMatches(matches, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestPlayerMatchHistory(t *testing.T) {
	matches := []model.Match{
		singles("m1", playerA, playerB, day(1)),
		singles("m2", playerC, playerD, day(2)),
		doubles("m3", playerB, playerD, playerC, playerA, day(3)),
	}
	got := PlayerMatchHistory(playerA, matches)
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)

	assert.Empty(t, PlayerMatchHistory("ghost", matches))
}

func TestWinLossByMonth(t *testing.T) {
	feb := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	matches := []model.Match{
		singles("m1", playerA, playerB, feb, set(21, 1)),
		singles("m2", playerA, playerB, jan, set(1, 21)),
		singles("m3", playerB, playerA, jan, set(1, 21)),
	}
	got := WinLossByMonth(playerA, matches)
	assert.Equal(t, []model.MonthRecord{
		{Month: "2025-01", Wins: 1, Losses: 1},
		{Month: "2025-02", Wins: 1, Losses: 0},
	}, got)
}

func TestSportStats(t *testing.T) {
	m1 := singles("m1", playerA, playerB, day(1), set(21, 19), set(21, 19))
	m1.Duration = 30
	m2 := singles("m2", playerA, playerC, day(2), set(21, 3))
	m2.Duration = 50
	m3 := doubles("m3", playerA, playerB, playerC, playerD, day(3), set(6, 4))

	st := SportStats(model.SportBadminton, []model.Match{m1, m2, m3}, testPlayers)
	assert.Equal(t, 2, st.TotalMatches)
	assert.Equal(t, 4, st.TotalPlayers)
	assert.InDelta(t, 40.0, st.AverageMatchDuration, 1e-9)
	assert.Equal(t, "Ana", st.MostActivePlayer)
	assert.Equal(t, "a-name vs b-name", st.HighestScoringMatch)

	empty := SportStats(model.SportPadel, nil, nil)
	assert.Equal(t, 0, empty.TotalMatches)
	assert.Equal(t, 0.0, empty.AverageMatchDuration)
	assert.Equal(t, "", empty.MostActivePlayer)
}

func TestPlayerName_FallsBackToMatchSnapshot(t *testing.T) {
	matches := []model.Match{doubles("m1", playerA, "deleted", playerB, playerD, day(0))}
	assert.Equal(t, "deleted-name", PlayerName("deleted", matches, testPlayers))
}
