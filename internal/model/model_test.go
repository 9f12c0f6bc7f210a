package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2025-03-14", "2025-03-14T00:00:00Z", "2025-03-14T00:00:00.000Z", "1741910400000"} {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseTime("14th of March")
	assert.Error(t, err)
	_, err = ParseTime("  ")
	assert.Error(t, err)
}

func TestMatchUnmarshalDateForms(t *testing.T) {
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	var m1, m2 Match
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","date":"2025-03-14T00:00:00.000Z","winner":"player2"}`), &m1))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","date":1741910400000,"winner":null}`), &m2))

	assert.True(t, want.Equal(m1.Date))
	assert.True(t, want.Equal(m2.Date))
	assert.Equal(t, Side2, m1.Winner)
	assert.Equal(t, SideNone, m2.Winner)
	assert.Equal(t, "a", m1.ID)
}

func TestSideJSON(t *testing.T) {
	b, err := json.Marshal(Set{ID: "s", Player1Score: 21, Player2Score: 15, Winner: Side1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s","player1Score":21,"player2Score":15,"winner":"player1"}`, string(b))

	b, err = json.Marshal(struct {
		W Side `json:"w"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"w":null}`, string(b))
}

func TestMatchDisplayHelpers(t *testing.T) {
	m := Match{
		MatchType:   MatchDoubles,
		Player1ID:   "a", Player2ID: "b", Player3ID: "c", Player4ID: "d",
		Player1Name: "Ana", Player2Name: "Ben", Player3Name: "Cal", Player4Name: "Dee",
		Sets:        []Set{{Player1Score: 6, Player2Score: 4, Winner: Side1}, {Player1Score: 3, Player2Score: 6, Winner: Side2}},
	}
	assert.Equal(t, "Ana & Cal vs Ben & Dee", m.Title())
	assert.Equal(t, "N/A", m.WinnerNames())
	assert.Equal(t, "6-4 3-6", m.ScoreLine())
	assert.Equal(t, []string{"a", "b", "c", "d"}, m.ParticipantIDs())

	name, ok := m.NameOf("d")
	assert.True(t, ok)
	assert.Equal(t, "Dee", name)
	_, ok = m.NameOf("")
	assert.False(t, ok)

	m.Winner = Side2
	assert.Equal(t, "Ben & Dee", m.WinnerNames())
}

func TestMonthKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	assert.Equal(t, "2025-02", MonthKey(time.Date(2025, 3, 1, 1, 0, 0, 0, loc)))
}
