package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-match-stats/internal/model"
	"github.com/pable/go-match-stats/internal/stats"
)

type SetInput struct {
	Player1Score int `json:"player1Score" validate:"gte=0"`
	Player2Score int `json:"player2Score" validate:"gte=0"`
}

// MatchInput is the editable part of a match. Names, ids and winners are
// derived by the service. A zero Date means now on create and "unchanged" on
// update.
type MatchInput struct {
	SportType model.SportType `json:"sportType" validate:"required,oneof=padel badminton"`
	MatchType model.MatchType `json:"matchType" validate:"required,oneof=singles doubles"`
	Player1ID string          `json:"player1Id" validate:"required"`
	Player2ID string          `json:"player2Id" validate:"required,nefield=Player1ID"`
	Player3ID string          `json:"player3Id" validate:"required_if=MatchType doubles"`
	Player4ID string          `json:"player4Id" validate:"required_if=MatchType doubles"`
	Sets      []SetInput      `json:"sets" validate:"required,min=1,dive"`
	Date      time.Time       `json:"date"`
	Duration  int             `json:"duration" validate:"gte=0"`
	Notes     string          `json:"notes" validate:"max=2000"`
}

// UnmarshalJSON accepts the date as an ISO-8601 string or epoch milliseconds.
func (in *MatchInput) UnmarshalJSON(b []byte) error {
	type alias MatchInput
	aux := struct {
		*alias
		Date json.RawMessage `json:"date"`
	}{alias: (*alias)(in)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t, err := model.DecodeTime(aux.Date)
	if err != nil {
		return fmt.Errorf("%w: date: %v", ErrInvalidInput, err)
	}
	in.Date = t
	return nil
}

func (s *Service) validateMatch(ctx context.Context, in *MatchInput) error {
	in.SportType = model.SportType(strings.ToLower(strings.TrimSpace(string(in.SportType))))
	in.MatchType = model.MatchType(strings.ToLower(strings.TrimSpace(string(in.MatchType))))
	if in.MatchType == model.MatchSingles {
		in.Player3ID, in.Player4ID = "", ""
	}
	if err := s.validator.StructCtx(ctx, in); err != nil {
		return s.invalid(err)
	}

	if in.MatchType == model.MatchDoubles {
		seen := make(map[string]bool, 4)
		for _, id := range []string{in.Player1ID, in.Player2ID, in.Player3ID, in.Player4ID} {
			if seen[id] {
				return fmt.Errorf("%w: doubles needs four different players", ErrInvalidInput)
			}
			seen[id] = true
		}
	}
	for i, set := range in.Sets {
		if set.Player1Score == set.Player2Score {
			return fmt.Errorf("%w: set %d is tied %d-%d", ErrInvalidInput, i+1, set.Player1Score, set.Player2Score)
		}
	}
	return nil
}

// buildMatch fills ids, names and winners. Every referenced player must exist.
func (s *Service) buildMatch(id string, in MatchInput) (model.Match, error) {
	players, err := s.store.ListPlayers()
	if err != nil {
		return model.Match{}, fmt.Errorf("list players: %w", err)
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	name := func(pid string) (string, error) {
		if pid == "" {
			return "", nil
		}
		n, ok := names[pid]
		if !ok {
			return "", fmt.Errorf("%w: unknown player %s", ErrInvalidInput, pid)
		}
		return n, nil
	}

	m := model.Match{
		ID:        id,
		SportType: in.SportType,
		MatchType: in.MatchType,
		Player1ID: in.Player1ID,
		Player2ID: in.Player2ID,
		Player3ID: in.Player3ID,
		Player4ID: in.Player4ID,
		Date:      in.Date,
		Duration:  in.Duration,
		Notes:     strings.TrimSpace(in.Notes),
	}
	for _, slot := range []struct {
		id  string
		dst *string
	}{
		{m.Player1ID, &m.Player1Name},
		{m.Player2ID, &m.Player2Name},
		{m.Player3ID, &m.Player3Name},
		{m.Player4ID, &m.Player4Name},
	} {
		if *slot.dst, err = name(slot.id); err != nil {
			return model.Match{}, err
		}
	}

	m.Sets = make([]model.Set, len(in.Sets))
	for i, set := range in.Sets {
		m.Sets[i] = model.Set{
			ID:           s.newID(),
			Player1Score: set.Player1Score,
			Player2Score: set.Player2Score,
			Winner:       stats.SetWinner(set.Player1Score, set.Player2Score),
		}
	}
	m.Winner = stats.DeriveWinner(m.Sets)
	return m, nil
}

// AddMatch validates and stores a new match.
func (s *Service) AddMatch(ctx context.Context, in MatchInput) (model.Match, error) {
	if err := s.validateMatch(ctx, &in); err != nil {
		return model.Match{}, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	m, err := s.buildMatch(s.newID(), in)
	if err != nil {
		return model.Match{}, err
	}
	if err := s.store.InsertMatch(m); err != nil {
		return model.Match{}, fmt.Errorf("add match: %w", err)
	}
	s.logger.Info("match added", "match_id", m.ID, "sport", m.SportType, "type", m.MatchType, "winner", m.Winner.String())
	return m, nil
}

// UpdateMatch replaces a match's content. Sets are recreated.
func (s *Service) UpdateMatch(ctx context.Context, id string, in MatchInput) (model.Match, error) {
	if err := s.validateMatch(ctx, &in); err != nil {
		return model.Match{}, err
	}
	existing, err := s.store.GetMatch(id)
	if err != nil {
		return model.Match{}, err
	}
	if in.Date.IsZero() {
		in.Date = existing.Date
	}
	m, err := s.buildMatch(existing.ID, in)
	if err != nil {
		return model.Match{}, err
	}
	if err := s.store.UpdateMatch(m); err != nil {
		return model.Match{}, fmt.Errorf("update match: %w", err)
	}
	s.logger.Info("match updated", "match_id", m.ID, "sets", len(m.Sets))
	return m, nil
}

func (s *Service) DeleteMatch(id string) error {
	if err := s.store.DeleteMatch(id); err != nil {
		return err
	}
	s.logger.Info("match deleted", "match_id", id)
	return nil
}
