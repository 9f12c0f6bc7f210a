package storage

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pable/go-match-stats/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a player or match id does not exist.
var ErrNotFound = errors.New("not found")

// Repository loads and saves the whole dataset at once.
type Repository interface {
	Load() (model.Snapshot, error)
	Save(snap model.Snapshot) error
}

// Store is the persistence contract used by the tracker and the commands.
// Lists are ordered newest first: players by creation, matches by date.
type Store interface {
	Repository

	ListPlayers() ([]model.Player, error)
	GetPlayer(id string) (*model.Player, error)
	InsertPlayer(p model.Player) error
	UpdatePlayer(p model.Player) error
	DeletePlayer(id string) error

	ListMatches() ([]model.Match, error)
	GetMatch(id string) (*model.Match, error)
	InsertMatch(m model.Match) error
	UpdateMatch(m model.Match) error
	DeleteMatch(id string) error

	Close() error
}

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// OpenStore opens the store for the named backend.
func OpenStore(backend, path string) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		return Open(path)
	case BackendJSON:
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// DB wraps a sql.DB for the match store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and applies the schema.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: an in-memory database is private to its connection.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
