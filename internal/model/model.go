package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SportType is the sport a match was played in.
type SportType string

const (
	SportPadel     SportType = "padel"
	SportBadminton SportType = "badminton"
)

// Sports lists every supported sport in display order.
var Sports = []SportType{SportPadel, SportBadminton}

// Valid reports whether s is a known sport.
func (s SportType) Valid() bool {
	return s == SportPadel || s == SportBadminton
}

// MatchType distinguishes singles from doubles.
type MatchType string

const (
	MatchSingles MatchType = "singles"
	MatchDoubles MatchType = "doubles"
)

func (t MatchType) Valid() bool {
	return t == MatchSingles || t == MatchDoubles
}

// Side represents which of the two competing parties a player, set or match
// result belongs to.
type Side int

const (
	SideNone Side = 0
	Side1    Side = 1 // player1 (+ partner player3)
	Side2    Side = 2 // player2 (+ partner player4)
)

func (s Side) String() string {
	switch s {
	case Side1:
		return "player1"
	case Side2:
		return "player2"
	default:
		return ""
	}
}

// Opponent returns the other side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Side1:
		return Side2
	case Side2:
		return Side1
	default:
		return SideNone
	}
}

// ParseSide maps "player1"/"player2" to a Side; anything else is SideNone.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player1":
		return Side1
	case "player2":
		return Side2
	default:
		return SideNone
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s == SideNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = SideNone
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("side: %w", err)
	}
	*s = ParseSide(str)
	return nil
}

// Player is a registered participant. Name/Email/Phone are replaced wholesale on edit.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Set is one scored sub-game of a match. Scores never tie.
type Set struct {
	ID           string `json:"id"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
	Winner       Side   `json:"winner"`
}

// Margin returns the absolute point difference of the set.
func (s Set) Margin() int {
	d := s.Player1Score - s.Player2Score
	if d < 0 {
		return -d
	}
	return d
}

// ScoreFor returns the points scored by the given side and by its opponent.
func (s Set) ScoreFor(side Side) (own, opp int) {
	if side == Side2 {
		return s.Player2Score, s.Player1Score
	}
	return s.Player1Score, s.Player2Score
}

// Match is a self-contained historical record. The player names are a
// snapshot taken at write time and outlive the referenced players.
type Match struct {
	ID          string    `json:"id"`
	SportType   SportType `json:"sportType"`
	MatchType   MatchType `json:"matchType"`
	Player1ID   string    `json:"player1Id"`
	Player2ID   string    `json:"player2Id"`
	Player3ID   string    `json:"player3Id,omitempty"`
	Player4ID   string    `json:"player4Id,omitempty"`
	Player1Name string    `json:"player1Name"`
	Player2Name string    `json:"player2Name"`
	Player3Name string    `json:"player3Name,omitempty"`
	Player4Name string    `json:"player4Name,omitempty"`
	Sets        []Set     `json:"sets"`
	Winner      Side      `json:"winner"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration,omitempty"` // minutes
	Notes       string    `json:"notes,omitempty"`
}

// UnmarshalJSON accepts the date as an ISO-8601 string or epoch milliseconds.
func (m *Match) UnmarshalJSON(b []byte) error {
	type alias Match
	aux := struct {
		*alias
		Date json.RawMessage `json:"date"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t, err := DecodeTime(aux.Date)
	if err != nil {
		return fmt.Errorf("match date: %w", err)
	}
	m.Date = t
	return nil
}

// SideNames returns the display names of the given side ("A" or "A & C").
func (m *Match) SideNames(side Side) string {
	switch side {
	case Side1:
		if m.MatchType == MatchDoubles {
			return m.Player1Name + " & " + m.Player3Name
		}
		return m.Player1Name
	case Side2:
		if m.MatchType == MatchDoubles {
			return m.Player2Name + " & " + m.Player4Name
		}
		return m.Player2Name
	default:
		return ""
	}
}

// Title renders "A vs B" or "A & C vs B & D".
func (m *Match) Title() string {
	return m.SideNames(Side1) + " vs " + m.SideNames(Side2)
}

// WinnerNames returns the winning side's names, or "N/A" for a drawn match.
func (m *Match) WinnerNames() string {
	if m.Winner == SideNone {
		return "N/A"
	}
	return m.SideNames(m.Winner)
}

// ScoreLine renders the sets as "21-15 18-21".
func (m *Match) ScoreLine() string {
	parts := make([]string, len(m.Sets))
	for i, s := range m.Sets {
		parts[i] = fmt.Sprintf("%d-%d", s.Player1Score, s.Player2Score)
	}
	return strings.Join(parts, " ")
}

// ParticipantIDs returns the distinct non-empty player ids in slot order.
func (m *Match) ParticipantIDs() []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	for _, id := range []string{m.Player1ID, m.Player2ID, m.Player3ID, m.Player4ID} {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// NameOf returns the denormalized name stored for playerID on this match.
func (m *Match) NameOf(playerID string) (string, bool) {
	if playerID == "" {
		return "", false
	}
	switch playerID {
	case m.Player1ID:
		return m.Player1Name, true
	case m.Player2ID:
		return m.Player2Name, true
	case m.Player3ID:
		return m.Player3Name, true
	case m.Player4ID:
		return m.Player4Name, true
	}
	return "", false
}

// Snapshot is the full dataset handed to the statistics engine.
type Snapshot struct {
	Players []Player `json:"players"`
	Matches []Match  `json:"matches"`
}

// ---- Derived view models ----

// PlayerStats aggregates one player's matches. Never persisted.
type PlayerStats struct {
	PlayerID           string     `json:"playerId"`
	PlayerName         string     `json:"playerName"`
	TotalMatches       int        `json:"totalMatches"`
	TotalWins          int        `json:"totalWins"`
	TotalLosses        int        `json:"totalLosses"`
	WinRate            float64    `json:"winRate"`
	TotalSetsWon       int        `json:"totalSetsWon"`
	TotalSetsLost      int        `json:"totalSetsLost"`
	AverageScorePerSet float64    `json:"averageScorePerSet"`
	LongestWinStreak   int        `json:"longestWinStreak"`
	CurrentStreak      int        `json:"currentStreak"`
	LastPlayed         *time.Time `json:"lastPlayed"`
}

// SportStats summarises all matches of one sport.
type SportStats struct {
	SportType            SportType `json:"sportType"`
	TotalMatches         int       `json:"totalMatches"`
	TotalPlayers         int       `json:"totalPlayers"`
	AverageMatchDuration float64   `json:"averageMatchDuration"`
	MostActivePlayer     string    `json:"mostActivePlayer"`
	HighestScoringMatch  string    `json:"highestScoringMatch"`
}

// MonthRecord is one month of a player's win/loss history.
type MonthRecord struct {
	Month  string `json:"month"` // YYYY-MM
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Row is one chart bucket: a category with one value per series (player).
type Row struct {
	Category string             `json:"category"`
	Series   map[string]float64 `json:"series"`
}

// Value returns the series value and whether it is present.
func (r Row) Value(key string) (float64, bool) {
	v, ok := r.Series[key]
	return v, ok
}

// DashboardFilter scopes the dashboard aggregates.
type DashboardFilter struct {
	Sport          SportType `json:"sport,omitempty"`     // empty = all sports
	PlayerIDs      []string  `json:"playerIds,omitempty"` // empty = every player
	HeadToHeadOnly bool      `json:"headToHeadOnly"`
	PointsBySport  bool      `json:"pointsBySport"`
}

// Dashboard holds every aggregate rendered on the dashboard.
type Dashboard struct {
	Players        []string `json:"players"` // series keys, in selection order
	TotalMatches   int      `json:"totalMatches"`
	WinLoss        []Row    `json:"winLoss"`
	SetWinLoss     []Row    `json:"setWinLoss"`
	WinsOverTime   []Row    `json:"winsOverTime"`
	AvgSetMargin   []Row    `json:"avgSetMargin"`
	AvgMatchMargin []Row    `json:"avgMatchMargin"`
	Points         []Row    `json:"points"`
}
