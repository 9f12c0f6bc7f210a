// Package tracker is the write side of the application: it validates input,
// assigns ids, derives winners and persists players and matches.
package tracker

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samborkent/uuidv7"

	"github.com/pable/go-match-stats/internal/logging"
	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/storage"
)

// ErrInvalidInput marks errors caused by the caller's data.
var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	store     storage.Store
	validator *validator.Validate
	logger    *logging.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithClock overrides the time source used for CreatedAt and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func New(store storage.Store, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		store:     store,
		validator: validator.New(),
		logger:    logger.With("component", "tracker"),
		now:       time.Now,
		newID:     func() string { return uuidv7.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying store for read paths.
func (s *Service) Store() storage.Store { return s.store }

// Snapshot loads every player and match.
func (s *Service) Snapshot() (model.Snapshot, error) {
	snap, err := s.store.Load()
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// ResolvePlayer finds a player by id, then by case-insensitive name, then by
// fuzzy name match. More than one equally good candidate is an error.
func (s *Service) ResolvePlayer(query string) (*model.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty player name", ErrInvalidInput)
	}
	players, err := s.store.ListPlayers()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return resolve(query, players)
}

func resolve(query string, players []model.Player) (*model.Player, error) {
	for i := range players {
		if players[i].ID == query {
			return &players[i], nil
		}
	}

	lower := strings.ToLower(query)
	var exact []int
	for i := range players {
		if strings.ToLower(players[i].Name) == lower {
			exact = append(exact, i)
		}
	}
	switch len(exact) {
	case 1:
		return &players[exact[0]], nil
	case 0:
	default:
		return nil, ambiguous(query, players, exact)
	}

	names := make([]string, len(players))
	for i, p := range players {
		names[i] = strings.ToLower(p.Name)
	}
	ranks := fuzzy.RankFind(lower, names)
	if len(ranks) == 0 {
		return nil, fmt.Errorf("player %q: %w", query, storage.ErrNotFound)
	}
	sort.Stable(ranks)
	best := ranks[0].Distance
	var idx []int
	for _, r := range ranks {
		if r.Distance == best {
			idx = append(idx, r.OriginalIndex)
		}
	}
	if len(idx) > 1 {
		return nil, ambiguous(query, players, idx)
	}
	return &players[idx[0]], nil
}

func ambiguous(query string, players []model.Player, idx []int) error {
	cands := make([]string, len(idx))
	for i, j := range idx {
		cands[i] = fmt.Sprintf("%s (%s)", players[j].Name, players[j].ID)
	}
	return fmt.Errorf("%w: %q matches several players: %s", ErrInvalidInput, query, strings.Join(cands, ", "))
}

func (s *Service) invalid(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = fieldMessage(fe)
		}
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Namespace()
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_if":
		return name + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", name, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "email":
		return name + " must be an email address"
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
