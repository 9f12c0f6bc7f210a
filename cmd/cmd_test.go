package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/storage"
	"github.com/pable/go-match-stats/internal/tracker"
)

func TestParseSets(t *testing.T) {
	sets, err := parseSets("21-15, 18-21;21:19")
	require.NoError(t, err)
	assert.Equal(t, []tracker.SetInput{
		{Player1Score: 21, Player2Score: 15},
		{Player1Score: 18, Player2Score: 21},
		{Player1Score: 21, Player2Score: 19},
	}, sets)

	for _, bad := range []string{"", "21", "21-x", "a-b,6-4"} {
		_, err := parseSets(bad)
		assert.ErrorIs(t, err, tracker.ErrInvalidInput, bad)
	}
}

func TestParseDateFlag(t *testing.T) {
	d, err := parseDateFlag("2025-03-14")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())
	assert.Equal(t, time.Local, d.Location())

	d, err = parseDateFlag("2025-03-14T18:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 18, d.UTC().Hour())

	_, err = parseDateFlag("next tuesday")
	assert.ErrorIs(t, err, tracker.ErrInvalidInput)
}

func TestShellTokens(t *testing.T) {
	tokens, err := shellTokens(`player  "Ana Lopez"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"player", "Ana Lopez"}, tokens)

	tokens, err = shellTokens("dashboard --h2h ana ben")
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard", "--h2h", "ana", "ben"}, tokens)
}

func seededService(t *testing.T) (*tracker.Service, model.Player, model.Player) {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := tracker.New(db, logging.NewNop())

	ctx := context.Background()
	ana, err := svc.AddPlayer(ctx, tracker.PlayerInput{Name: "Ana Lopez"})
	require.NoError(t, err)
	ben, err := svc.AddPlayer(ctx, tracker.PlayerInput{Name: "Ben Ortiz"})
	require.NoError(t, err)

	day := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	for i, sets := range [][]tracker.SetInput{
		{{Player1Score: 21, Player2Score: 15}, {Player1Score: 21, Player2Score: 17}},
		{{Player1Score: 12, Player2Score: 21}, {Player1Score: 21, Player2Score: 19}, {Player1Score: 15, Player2Score: 21}},
	} {
		_, err := svc.AddMatch(ctx, tracker.MatchInput{
			SportType: model.SportBadminton,
			MatchType: model.MatchSingles,
			Player1ID: ana.ID,
			Player2ID: ben.ID,
			Sets:      sets,
			Date:      day.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}
	return svc, ana, ben
}

func TestDashboardFilter(t *testing.T) {
	svc, ana, ben := seededService(t)

	f, err := dashboardFilter(svc, "ALL", []string{"ana", "", "Ben Ortiz"}, true, false)
	require.NoError(t, err)
	assert.Empty(t, f.Sport)
	assert.Equal(t, []string{ana.ID, ben.ID}, f.PlayerIDs)
	assert.True(t, f.HeadToHeadOnly)

	f, err = dashboardFilter(svc, "padel", nil, false, true)
	require.NoError(t, err)
	assert.Equal(t, model.SportPadel, f.Sport)
	assert.True(t, f.PointsBySport)

	_, err = dashboardFilter(svc, "squash", nil, false, false)
	assert.Error(t, err)

	_, err = dashboardFilter(svc, "", []string{"zed"}, false, false)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestBuildPlayerContext(t *testing.T) {
	svc, ana, _ := seededService(t)
	snap, err := svc.Snapshot()
	require.NoError(t, err)

	raw, err := buildPlayerContext(ana.ID, snap, 1)
	require.NoError(t, err)

	var doc struct {
		Player   string `json:"player"`
		Overview struct {
			Matches int     `json:"matches"`
			Wins    int     `json:"wins"`
			WinRate float64 `json:"win_rate"`
		} `json:"overview"`
		Opponents []opponentRecord `json:"opponents"`
		Recent    []recentEntry    `json:"recent_matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "Ana Lopez", doc.Player)
	assert.Equal(t, 2, doc.Overview.Matches)
	assert.Equal(t, 1, doc.Overview.Wins)
	assert.Equal(t, 50.0, doc.Overview.WinRate)
	assert.Equal(t, []opponentRecord{{Name: "Ben Ortiz", Wins: 1, Losses: 1}}, doc.Opponents)

	require.Len(t, doc.Recent, 1, "limited to the newest match")
	assert.Equal(t, "2025-03-15", doc.Recent[0].Date)
	assert.Equal(t, "loss", doc.Recent[0].Result)
	assert.Equal(t, "Ben Ortiz", doc.Recent[0].Against)
	assert.Equal(t, []string{"12-21", "21-19", "15-21"}, doc.Recent[0].Sets)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(66.666))
	assert.Equal(t, 50.0, round2(50))
}

func TestPrintImportResult(t *testing.T) {
	saved := []model.Match{{
		ID:          "m1",
		SportType:   model.SportPadel,
		MatchType:   model.MatchSingles,
		Player1Name: "Gilles",
		Player2Name: "Tad",
		Sets:        []model.Set{{Player1Score: 6, Player2Score: 3, Winner: model.Side1}},
		Winner:      model.Side1,
		Date:        time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC),
	}}

	var buf bytes.Buffer
	printImportResult(&buf, saved, "Gilles", "Tad", 2, errors.New("line 3: set 1 is tied"))
	out := buf.String()
	assert.Contains(t, out, "Import stopped: 1 matches")
	assert.Contains(t, out, "m1", "saved matches are listed")

	buf.Reset()
	printImportResult(&buf, saved, "Gilles", "Tad", 2, nil)
	assert.Contains(t, buf.String(), "Imported 1 matches (Gilles vs Tad), skipped 2 rows")

	buf.Reset()
	printImportResult(&buf, nil, "Gilles", "Tad", 0, errors.New("line 2: unknown player"))
	assert.Contains(t, buf.String(), "Import stopped: 0 matches")
}
