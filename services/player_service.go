// services/player_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"
	"github.com/johnlemossilva-pixel/mini-royale-backend/utils"

	"go.uber.org/zap"
)

// PlayerInput is the body of a create or replace request. Pointers tell a
// missing field apart from a zero value.
type PlayerInput struct {
	ID   *string `json:"_id"`
	Nome *string `json:"nome"`
	Vida *int    `json:"vida"`
	Gems *int    `json:"gems"`
}

type PlayerService struct {
	Store PlayerStore
	log   *zap.Logger
}

func NewPlayerService(store PlayerStore, log *zap.Logger) *PlayerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlayerService{Store: store, log: log}
}

func (s *PlayerService) GetProfile(ctx context.Context, id string) (*models.Player, error) {
	const op = "get profile"
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidRequest(op, "player id is required")
	}
	p, err := s.Store.FindOne(ctx, id)
	if errors.Is(err, ErrPlayerNotFound) {
		return nil, notFound(op, "player not found", id)
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return p, nil
}

// CreatePlayer inserts a new player. An id that already exists is a storage
// failure, not an overwrite.
func (s *PlayerService) CreatePlayer(ctx context.Context, in PlayerInput) (*models.Player, error) {
	const op = "create player"
	if in.ID == nil {
		return nil, invalidRequest(op, "_id is required")
	}
	p, err := buildPlayer(op, *in.ID, in)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Create(ctx, p); err != nil {
		s.log.Error("player insert failed", zap.String("player_id", p.ID), zap.Error(err))
		return nil, storageError(op, err)
	}
	s.log.Info("player created", zap.String("player_id", p.ID), zap.String("handle", p.Handle))
	return p, nil
}

// UpsertPlayer writes the full player record under id, creating it if needed,
// and returns the row as stored.
func (s *PlayerService) UpsertPlayer(ctx context.Context, id string, in PlayerInput) (*models.Player, error) {
	const op = "upsert player"
	if in.ID != nil && strings.TrimSpace(*in.ID) != strings.TrimSpace(id) {
		return nil, invalidRequest(op, "_id in body does not match path")
	}
	p, err := buildPlayer(op, id, in)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Upsert(ctx, p); err != nil {
		s.log.Error("player upsert failed", zap.String("player_id", p.ID), zap.Error(err))
		return nil, storageError(op, err)
	}
	// an existing row keeps its created_at, so answer with what is stored
	stored, err := s.Store.FindOne(ctx, p.ID)
	if err != nil {
		return nil, storageError(op, err)
	}
	return stored, nil
}

// AdjustPlayer adds the given deltas to the stored values. Unlike match
// resolution it does not clamp health at zero. Gems never go negative: such a
// delta is rejected and nothing is written.
func (s *PlayerService) AdjustPlayer(ctx context.Context, id string, healthDelta, gemsDelta *int) error {
	const op = "adjust player"
	if healthDelta == nil && gemsDelta == nil {
		return invalidRequest(op, "no field to update")
	}
	if (healthDelta == nil || *healthDelta == 0) && (gemsDelta == nil || *gemsDelta == 0) {
		return invalidRequest(op, "all deltas are zero")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidRequest(op, "player id is required")
	}

	n, err := s.Store.IncrementOne(ctx, id, PlayerIncrement{Vida: healthDelta, Gems: gemsDelta})
	if errors.Is(err, ErrInsufficientGems) {
		return invalidRequest(op, "gems would go below zero")
	}
	if err != nil {
		return storageError(op, err)
	}
	if n == 0 {
		return notFound(op, "player not found", id)
	}
	return nil
}

func buildPlayer(op, id string, in PlayerInput) (*models.Player, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidRequest(op, "_id is required")
	}
	if in.Nome == nil {
		return nil, invalidRequest(op, "nome is required")
	}
	nome := utils.NormalizeName(*in.Nome)
	if nome == "" {
		return nil, invalidRequest(op, "nome must not be blank")
	}

	p := &models.Player{
		ID:     id,
		Nome:   nome,
		Handle: utils.Handle(nome),
		Vida:   models.DefaultHealth,
	}
	if in.Vida != nil {
		if *in.Vida < 0 || *in.Vida > models.MaxHealth {
			return nil, invalidRequest(op, fmt.Sprintf("vida must be between 0 and %d", models.MaxHealth))
		}
		p.Vida = *in.Vida
	}
	if in.Gems != nil {
		if *in.Gems < 0 {
			return nil, invalidRequest(op, "gems must not be negative")
		}
		p.Gems = *in.Gems
	}
	return p, nil
}
