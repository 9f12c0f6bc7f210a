package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/pable/go-match-stats/internal/model"
)

type PlayerInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=40"`
}

func (in *PlayerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

// AddPlayer creates a player with a fresh id.
func (s *Service) AddPlayer(ctx context.Context, in PlayerInput) (model.Player, error) {
	in.normalize()
	if err := s.validator.StructCtx(ctx, in); err != nil {
		return model.Player{}, s.invalid(err)
	}

	p := model.Player{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertPlayer(p); err != nil {
		return model.Player{}, fmt.Errorf("add player: %w", err)
	}
	s.logger.Info("player added", "player_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdatePlayer replaces name, email and phone. CreatedAt is preserved.
// Name snapshots on existing matches are left as recorded.
func (s *Service) UpdatePlayer(ctx context.Context, id string, in PlayerInput) (model.Player, error) {
	in.normalize()
	if err := s.validator.StructCtx(ctx, in); err != nil {
		return model.Player{}, s.invalid(err)
	}

	existing, err := s.store.GetPlayer(id)
	if err != nil {
		return model.Player{}, err
	}
	p := model.Player{
		ID:        existing.ID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: existing.CreatedAt,
	}
	if err := s.store.UpdatePlayer(p); err != nil {
		return model.Player{}, fmt.Errorf("update player: %w", err)
	}
	s.logger.Info("player updated", "player_id", p.ID)
	return p, nil
}

// DeletePlayer removes the player. Matches it took part in are kept.
func (s *Service) DeletePlayer(id string) error {
	if err := s.store.DeletePlayer(id); err != nil {
		return err
	}
	s.logger.Info("player deleted", "player_id", id)
	return nil
}
