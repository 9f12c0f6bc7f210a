package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pable/go-match-stats/internal/model"
)

// Fixed-width UTC layout so that dates compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return model.ParseTime(s)
	}
	return t, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const playerColumns = "id, name, email, phone, created_at"

// ListPlayers returns all players, newest first.
func (db *DB) ListPlayers() ([]model.Player, error) {
	return listPlayers(db.conn)
}

func listPlayers(q querier) ([]model.Player, error) {
	rows, err := q.Query("SELECT " + playerColumns + " FROM players ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayer returns the player with the given id, or ErrNotFound.
func (db *DB) GetPlayer(id string) (*model.Player, error) {
	row := db.conn.QueryRow("SELECT "+playerColumns+" FROM players WHERE id = ?", id)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPlayer stores a new player.
func (db *DB) InsertPlayer(p model.Player) error {
	return insertPlayer(db.conn, p)
}

func insertPlayer(q querier, p model.Player) error {
	_, err := q.Exec(`INSERT INTO players(`+playerColumns+`) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Phone, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert player %s: %w", p.ID, err)
	}
	return nil
}

// UpdatePlayer overwrites the stored fields of an existing player.
func (db *DB) UpdatePlayer(p model.Player) error {
	res, err := db.conn.Exec(`UPDATE players SET name = ?, email = ?, phone = ?, created_at = ? WHERE id = ?`,
		p.Name, p.Email, p.Phone, formatTime(p.CreatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	return expectAffected(res, "player", p.ID)
}

// DeletePlayer removes a player. Matches that reference it are kept.
func (db *DB) DeletePlayer(id string) error {
	res, err := db.conn.Exec("DELETE FROM players WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return expectAffected(res, "player", id)
}

const matchColumns = `id, sport_type, match_type,
	player1_id, player2_id, player3_id, player4_id,
	player1_name, player2_name, player3_name, player4_name,
	winner, date, duration, notes`

// ListMatches returns all matches with their sets, most recent first.
func (db *DB) ListMatches() ([]model.Match, error) {
	return listMatches(db.conn)
}

func listMatches(q querier) ([]model.Match, error) {
	rows, err := q.Query("SELECT " + matchColumns + " FROM matches ORDER BY date DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	sets, err := loadSets(q, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Sets = sets[out[i].ID]
	}
	return out, nil
}

// GetMatch returns the match with the given id and its sets, or ErrNotFound.
func (db *DB) GetMatch(id string) (*model.Match, error) {
	row := db.conn.QueryRow("SELECT "+matchColumns+" FROM matches WHERE id = ?", id)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	sets, err := loadSets(db.conn, id)
	if err != nil {
		return nil, err
	}
	m.Sets = sets[id]
	return &m, nil
}

// InsertMatch stores a match and its sets in one transaction.
func (db *DB) InsertMatch(m model.Match) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertMatch(tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateMatch replaces a match row and recreates its sets.
func (db *DB) UpdateMatch(m model.Match) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE matches SET
		sport_type = ?, match_type = ?,
		player1_id = ?, player2_id = ?, player3_id = ?, player4_id = ?,
		player1_name = ?, player2_name = ?, player3_name = ?, player4_name = ?,
		winner = ?, date = ?, duration = ?, notes = ?
		WHERE id = ?`,
		string(m.SportType), string(m.MatchType),
		m.Player1ID, m.Player2ID, m.Player3ID, m.Player4ID,
		m.Player1Name, m.Player2Name, m.Player3Name, m.Player4Name,
		m.Winner.String(), formatTime(m.Date), m.Duration, m.Notes,
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("update match %s: %w", m.ID, err)
	}
	if err := expectAffected(res, "match", m.ID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM sets WHERE match_id = ?", m.ID); err != nil {
		return fmt.Errorf("clear sets for %s: %w", m.ID, err)
	}
	if err := insertSets(tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteMatch removes a match together with its sets.
func (db *DB) DeleteMatch(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sets WHERE match_id = ?", id); err != nil {
		return fmt.Errorf("delete sets for %s: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete match %s: %w", id, err)
	}
	if err := expectAffected(res, "match", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Load reads the whole dataset.
func (db *DB) Load() (model.Snapshot, error) {
	players, err := db.ListPlayers()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load players: %w", err)
	}
	matches, err := db.ListMatches()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load matches: %w", err)
	}
	return model.Snapshot{Players: players, Matches: matches}, nil
}

// Save replaces the whole dataset with snap in one transaction.
func (db *DB) Save(snap model.Snapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM sets", "DELETE FROM matches", "DELETE FROM players"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}
	for _, p := range snap.Players {
		if err := insertPlayer(tx, p); err != nil {
			return err
		}
	}
	for _, m := range snap.Matches {
		if err := insertMatch(tx, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func insertMatch(q querier, m model.Match) error {
	_, err := q.Exec(`INSERT INTO matches(`+matchColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.ID, string(m.SportType), string(m.MatchType),
		m.Player1ID, m.Player2ID, m.Player3ID, m.Player4ID,
		m.Player1Name, m.Player2Name, m.Player3Name, m.Player4Name,
		m.Winner.String(), formatTime(m.Date), m.Duration, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return insertSets(q, m)
}

func insertSets(q querier, m model.Match) error {
	for i, s := range m.Sets {
		if s.ID == "" {
			s.ID = fmt.Sprintf("%s-%d", m.ID, i+1)
		}
		_, err := q.Exec(`INSERT INTO sets(id, match_id, set_order, player1_score, player2_score, winner)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, m.ID, i, s.Player1Score, s.Player2Score, s.Winner.String())
		if err != nil {
			return fmt.Errorf("insert set %d of match %s: %w", i+1, m.ID, err)
		}
	}
	return nil
}

// loadSets returns sets grouped by match id, in play order. An empty matchID
// loads the sets of every match.
func loadSets(q querier, matchID string) (map[string][]model.Set, error) {
	query := "SELECT match_id, id, player1_score, player2_score, winner FROM sets"
	var args []any
	if matchID != "" {
		query += " WHERE match_id = ?"
		args = append(args, matchID)
	}
	query += " ORDER BY match_id, set_order"

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.Set)
	for rows.Next() {
		var (
			mid, winner string
			s           model.Set
		)
		if err := rows.Scan(&mid, &s.ID, &s.Player1Score, &s.Player2Score, &winner); err != nil {
			return nil, err
		}
		s.Winner = model.ParseSide(winner)
		out[mid] = append(out[mid], s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(s scanner) (model.Player, error) {
	var (
		p       model.Player
		created string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &created); err != nil {
		return p, err
	}
	t, err := parseTime(created)
	if err != nil {
		return p, fmt.Errorf("player %s created_at: %w", p.ID, err)
	}
	p.CreatedAt = t
	return p, nil
}

func scanMatch(s scanner) (model.Match, error) {
	var (
		m                   model.Match
		sport, kind, winner string
		date                string
	)
	err := s.Scan(&m.ID, &sport, &kind,
		&m.Player1ID, &m.Player2ID, &m.Player3ID, &m.Player4ID,
		&m.Player1Name, &m.Player2Name, &m.Player3Name, &m.Player4Name,
		&winner, &date, &m.Duration, &m.Notes)
	if err != nil {
		return m, err
	}
	m.SportType = model.SportType(sport)
	m.MatchType = model.MatchType(kind)
	m.Winner = model.ParseSide(winner)
	t, err := parseTime(date)
	if err != nil {
		return m, fmt.Errorf("match %s date: %w", m.ID, err)
	}
	m.Date = t
	return m, nil
}

func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
