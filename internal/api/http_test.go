package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/storage"
	"github.com/pable/go-match-stats/internal/tracker"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRouter(tracker.New(db, logging.NewNop()), logging.NewNop(), 2)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createPlayer(t *testing.T, r http.Handler, name string) model.Player {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/players", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Player](t, rec)
}

func createMatch(t *testing.T, r http.Handler, body string) model.Match {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/matches", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Match](t, rec)
}

func singlesBody(p1, p2 string, date int64, sets string) string {
	return fmt.Sprintf(`{"sportType":"badminton","matchType":"singles","player1Id":%q,"player2Id":%q,"date":%d,"sets":%s}`,
		p1, p2, date, sets)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decode[map[string]string](t, rec)["status"])
}

func TestPlayersCRUD(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/players", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	ana := createPlayer(t, r, "Ana")
	assert.NotEmpty(t, ana.ID)

	rec = do(t, r, http.MethodPut, "/api/players/"+ana.ID, map[string]string{"name": "Ana M", "email": "ana@club.test"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ana M", decode[model.Player](t, rec).Name)

	rec = do(t, r, http.MethodGet, "/api/players/"+ana.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/players/"+ana.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/players/"+ana.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlayerErrors(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/players", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Name is required")

	rec = do(t, r, http.MethodPost, "/api/players", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchesAndStats(t *testing.T) {
	r := newTestRouter(t)
	ana := createPlayer(t, r, "Ana")
	ben := createPlayer(t, r, "Ben")

	// 2025-03-14, 2025-04-02 and 2025-04-20 (UTC)
	m1 := createMatch(t, r, singlesBody(ana.ID, ben.ID, 1741910400000, `[{"player1Score":21,"player2Score":15},{"player1Score":21,"player2Score":18}]`))
	createMatch(t, r, singlesBody(ana.ID, ben.ID, 1743552000000, `[{"player1Score":10,"player2Score":21},{"player1Score":12,"player2Score":21}]`))
	createMatch(t, r, singlesBody(ben.ID, ana.ID, 1745107200000, `[{"player1Score":15,"player2Score":21},{"player1Score":19,"player2Score":21}]`))

	assert.Equal(t, model.Side1, m1.Winner)
	assert.Equal(t, "Ana", m1.Player1Name)

	rec := do(t, r, http.MethodGet, "/api/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Match](t, rec), 3)

	rec = do(t, r, http.MethodGet, "/api/matches/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]model.Match](t, rec)
	require.Len(t, recent, 2, "configured default limit")
	assert.Equal(t, "2025-04-20", recent[0].Date.Format("2006-01-02"))

	rec = do(t, r, http.MethodGet, "/api/matches/recent?limit=1", nil)
	assert.Len(t, decode[[]model.Match](t, rec), 1)
	rec = do(t, r, http.MethodGet, "/api/matches/recent?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/stats/players/"+ana.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[model.PlayerStats](t, rec)
	assert.Equal(t, 3, st.TotalMatches)
	assert.Equal(t, 2, st.TotalWins)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, "Ana", st.PlayerName)

	rec = do(t, r, http.MethodGet, "/api/stats/players/"+ana.ID+"/monthly", nil)
	months := decode[[]model.MonthRecord](t, rec)
	assert.Equal(t, []model.MonthRecord{
		{Month: "2025-03", Wins: 1, Losses: 0},
		{Month: "2025-04", Wins: 1, Losses: 1},
	}, months)

	rec = do(t, r, http.MethodGet, "/api/players/"+ben.ID+"/history", nil)
	assert.Len(t, decode[[]model.Match](t, rec), 3)

	rec = do(t, r, http.MethodGet, "/api/stats/players/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/stats/sports/badminton", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sport := decode[model.SportStats](t, rec)
	assert.Equal(t, 3, sport.TotalMatches)
	assert.Equal(t, 2, sport.TotalPlayers)

	rec = do(t, r, http.MethodGet, "/api/stats/sports/tennis", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDeleteMatch(t *testing.T) {
	r := newTestRouter(t)
	ana := createPlayer(t, r, "Ana")
	ben := createPlayer(t, r, "Ben")
	m := createMatch(t, r, singlesBody(ana.ID, ben.ID, 1741910400000, `[{"player1Score":21,"player2Score":15}]`))

	rec := do(t, r, http.MethodPut, "/api/matches/"+m.ID,
		singlesBody(ana.ID, ben.ID, 1741910400000, `[{"player1Score":11,"player2Score":21},{"player1Score":9,"player2Score":21}]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	upd := decode[model.Match](t, rec)
	assert.Equal(t, model.Side2, upd.Winner)
	assert.Len(t, upd.Sets, 2)

	rec = do(t, r, http.MethodPut, "/api/matches/"+m.ID, singlesBody(ana.ID, ana.ID, 1741910400000, `[{"player1Score":11,"player2Score":21}]`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/matches/"+m.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	r := newTestRouter(t)
	ana := createPlayer(t, r, "Ana")
	ben := createPlayer(t, r, "Ben")
	cal := createPlayer(t, r, "Cal")
	createMatch(t, r, singlesBody(ana.ID, ben.ID, 1741910400000, `[{"player1Score":21,"player2Score":15}]`))
	createMatch(t, r, singlesBody(ana.ID, cal.ID, 1741910400000, `[{"player1Score":21,"player2Score":10}]`))

	rec := do(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[model.Dashboard](t, rec)
	assert.Equal(t, 2, d.TotalMatches)
	assert.Len(t, d.Players, 3)

	rec = do(t, r, http.MethodGet, "/api/dashboard?players="+ana.ID+","+ben.ID+"&h2h=true&bySport=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d = decode[model.Dashboard](t, rec)
	assert.Equal(t, 1, d.TotalMatches)
	assert.Equal(t, []string{"Ana", "Ben"}, d.Players)
	require.Len(t, d.Points, 2)
	v, ok := d.Points[0].Value("badminton won")
	assert.True(t, ok)
	assert.Equal(t, 21.0, v)

	rec = do(t, r, http.MethodGet, "/api/dashboard?sport=padel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[model.Dashboard](t, rec).TotalMatches)

	rec = do(t, r, http.MethodGet, "/api/dashboard?sport=curling", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/dashboard?h2h=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
