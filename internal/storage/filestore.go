package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/pable/go-match-stats/internal/model"
)

// FileStore keeps the whole dataset in a single JSON document. Every call
// reads the file and every mutation rewrites it.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the JSON file at path. The file is
// created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Close() error { return nil }

// Load reads the snapshot. A missing file is an empty dataset.
func (s *FileStore) Load() (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Save overwrites the file with snap.
func (s *FileStore) Save(snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(snap)
}

func (s *FileStore) ListPlayers() ([]model.Player, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	return snap.Players, nil
}

func (s *FileStore) GetPlayer(id string) (*model.Player, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range snap.Players {
		if snap.Players[i].ID == id {
			p := snap.Players[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", id, ErrNotFound)
}

func (s *FileStore) InsertPlayer(p model.Player) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for _, existing := range snap.Players {
			if existing.ID == p.ID {
				return fmt.Errorf("insert player %s: duplicate id", p.ID)
			}
		}
		snap.Players = append(snap.Players, p)
		return nil
	})
}

func (s *FileStore) UpdatePlayer(p model.Player) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for i := range snap.Players {
			if snap.Players[i].ID == p.ID {
				snap.Players[i] = p
				return nil
			}
		}
		return fmt.Errorf("player %s: %w", p.ID, ErrNotFound)
	})
}

func (s *FileStore) DeletePlayer(id string) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for i := range snap.Players {
			if snap.Players[i].ID == id {
				snap.Players = append(snap.Players[:i], snap.Players[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("player %s: %w", id, ErrNotFound)
	})
}

func (s *FileStore) ListMatches() ([]model.Match, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	return snap.Matches, nil
}

func (s *FileStore) GetMatch(id string) (*model.Match, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range snap.Matches {
		if snap.Matches[i].ID == id {
			m := snap.Matches[i]
			return &m, nil
		}
	}
	return nil, fmt.Errorf("match %s: %w", id, ErrNotFound)
}

func (s *FileStore) InsertMatch(m model.Match) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for _, existing := range snap.Matches {
			if existing.ID == m.ID {
				return fmt.Errorf("insert match %s: duplicate id", m.ID)
			}
		}
		snap.Matches = append(snap.Matches, m)
		return nil
	})
}

func (s *FileStore) UpdateMatch(m model.Match) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for i := range snap.Matches {
			if snap.Matches[i].ID == m.ID {
				snap.Matches[i] = m
				return nil
			}
		}
		return fmt.Errorf("match %s: %w", m.ID, ErrNotFound)
	})
}

func (s *FileStore) DeleteMatch(id string) error {
	return s.mutate(func(snap *model.Snapshot) error {
		for i := range snap.Matches {
			if snap.Matches[i].ID == id {
				snap.Matches = append(snap.Matches[:i], snap.Matches[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("match %s: %w", id, ErrNotFound)
	})
}

func (s *FileStore) mutate(fn func(*model.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	return s.write(snap)
}

func (s *FileStore) read() (model.Snapshot, error) {
	var snap model.Snapshot
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &snap); err != nil {
			return snap, fmt.Errorf("decode %s: %w", s.path, err)
		}
	}
	sortSnapshot(&snap)
	return snap, nil
}

func (s *FileStore) write(snap model.Snapshot) error {
	if snap.Players == nil {
		snap.Players = []model.Player{}
	}
	if snap.Matches == nil {
		snap.Matches = []model.Match{}
	}
	sortSnapshot(&snap)

	raw, err := sonic.ConfigDefault.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, s.mode()); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) mode() fs.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

// sortSnapshot applies the same ordering as the SQLite store.
func sortSnapshot(snap *model.Snapshot) {
	sort.SliceStable(snap.Players, func(i, j int) bool {
		return snap.Players[i].CreatedAt.After(snap.Players[j].CreatedAt)
	})
	sort.SliceStable(snap.Matches, func(i, j int) bool {
		return snap.Matches[i].Date.After(snap.Matches[j].Date)
	})
}
