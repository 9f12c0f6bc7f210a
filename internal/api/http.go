// Package api exposes the tracker and the statistics engine over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/stats"
	"github.com/pable/go-match-stats/internal/storage"
	"github.com/pable/go-match-stats/internal/tracker"
)

// Router is the subset of gin routing used by the handler.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

// HTTPOptions contains everything the HTTP handler needs.
type HTTPOptions struct {
	Service *tracker.Service
	Router  Router
	Logger  *logging.Logger

	// RecentLimit is the default page size of /matches/recent.
	RecentLimit int
}

// NewHTTPHandler registers every route on opts.Router.
func NewHTTPHandler(opts HTTPOptions) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 10
	}
	r := opts.Router
	h := &httpHandler{opts}

	r.GET("/health", h.health)

	r.GET("/players", h.listPlayers)
	r.POST("/players", h.createPlayer)
	r.GET("/players/:id", h.getPlayer)
	r.PUT("/players/:id", h.updatePlayer)
	r.DELETE("/players/:id", h.deletePlayer)
	r.GET("/players/:id/history", h.playerHistory)

	r.GET("/matches", h.listMatches)
	r.POST("/matches", h.createMatch)
	r.GET("/matches/recent", h.recentMatches)
	r.GET("/matches/:id", h.getMatch)
	r.PUT("/matches/:id", h.updateMatch)
	r.DELETE("/matches/:id", h.deleteMatch)

	r.GET("/stats/players/:id", h.playerStats)
	r.GET("/stats/players/:id/monthly", h.playerMonthly)
	r.GET("/stats/sports/:sport", h.sportStats)
	r.GET("/dashboard", h.dashboard)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidInput):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

func (h *httpHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "match stats API is running"})
}

func (h *httpHandler) listPlayers(c *gin.Context) {
	players, err := h.Service.Store().ListPlayers()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(players))
}

func (h *httpHandler) getPlayer(c *gin.Context) {
	p, err := h.Service.Store().GetPlayer(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *httpHandler) createPlayer(c *gin.Context) {
	var in tracker.PlayerInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.Service.AddPlayer(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *httpHandler) updatePlayer(c *gin.Context) {
	var in tracker.PlayerInput
	if !h.bind(c, &in) {
		return
	}
	p, err := h.Service.UpdatePlayer(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *httpHandler) deletePlayer(c *gin.Context) {
	if err := h.Service.DeletePlayer(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) playerHistory(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, nonNil(stats.PlayerMatchHistory(c.Param("id"), snap.Matches)))
}

func (h *httpHandler) listMatches(c *gin.Context) {
	matches, err := h.Service.Store().ListMatches()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(matches))
}

func (h *httpHandler) recentMatches(c *gin.Context) {
	limit := h.RecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	matches, err := h.Service.Store().ListMatches()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(stats.RecentMatches(matches, limit)))
}

func (h *httpHandler) getMatch(c *gin.Context) {
	m, err := h.Service.Store().GetMatch(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *httpHandler) createMatch(c *gin.Context) {
	var in tracker.MatchInput
	if !h.bind(c, &in) {
		return
	}
	m, err := h.Service.AddMatch(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *httpHandler) updateMatch(c *gin.Context) {
	var in tracker.MatchInput
	if !h.bind(c, &in) {
		return
	}
	m, err := h.Service.UpdateMatch(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *httpHandler) deleteMatch(c *gin.Context) {
	if err := h.Service.DeleteMatch(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) playerStats(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !known(id, snap) {
		h.fail(c, fmt.Errorf("player %s: %w", id, storage.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, stats.PlayerStats(id, snap.Matches, snap.Players))
}

func (h *httpHandler) playerMonthly(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, nonNil(stats.WinLossByMonth(c.Param("id"), snap.Matches)))
}

func (h *httpHandler) sportStats(c *gin.Context) {
	sport := model.SportType(strings.ToLower(c.Param("sport")))
	if !sport.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown sport " + c.Param("sport")})
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.SportStats(sport, snap.Matches, snap.Players))
}

func (h *httpHandler) dashboard(c *gin.Context) {
	f, err := parseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.Dashboard(snap.Players, snap.Matches, f))
}

func parseFilter(c *gin.Context) (model.DashboardFilter, error) {
	var f model.DashboardFilter
	if s := strings.ToLower(strings.TrimSpace(c.Query("sport"))); s != "" && s != "all" {
		f.Sport = model.SportType(s)
		if !f.Sport.Valid() {
			return f, fmt.Errorf("%w: unknown sport %q", tracker.ErrInvalidInput, s)
		}
	}
	for _, id := range strings.Split(c.Query("players"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			f.PlayerIDs = append(f.PlayerIDs, id)
		}
	}
	var err error
	if f.HeadToHeadOnly, err = queryBool(c, "h2h"); err != nil {
		return f, err
	}
	if f.PointsBySport, err = queryBool(c, "bySport"); err != nil {
		return f, err
	}
	return f, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", tracker.ErrInvalidInput, key)
	}
	return v, nil
}

func (h *httpHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *httpHandler) snapshot(c *gin.Context) (model.Snapshot, bool) {
	snap, err := h.Service.Snapshot()
	if err != nil {
		h.fail(c, err)
		return snap, false
	}
	return snap, true
}

// known reports whether id is a registered player or appears in any match.
func known(id string, snap model.Snapshot) bool {
	for _, p := range snap.Players {
		if p.ID == id {
			return true
		}
	}
	for i := range snap.Matches {
		if stats.SideOf(&snap.Matches[i], id) != model.SideNone {
			return true
		}
	}
	return false
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
