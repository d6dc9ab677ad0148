// services/match_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"

	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// MatchRequest lists the participants in the order the client sent them.
// RequestedBy, when set, must be one of them.
type MatchRequest struct {
	Participants []string
	RequestedBy  string
}

type MatchService struct {
	Store    PlayerStore
	Resolver *Resolver
	History  MatchLog // optional
	log      *zap.Logger
}

func NewMatchService(store PlayerStore, resolver *Resolver, history MatchLog, log *zap.Logger) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchService{Store: store, Resolver: resolver, History: history, log: log}
}

// ApplyMatch resolves a match between existing players and writes every
// outcome in one atomic batch. The returned match id is empty when the
// history could not be written; the players are updated regardless.
func (s *MatchService) ApplyMatch(ctx context.Context, req MatchRequest) (*MatchResult, string, error) {
	const op = "apply match"
	ids, err := validateParticipants(op, req)
	if err != nil {
		return nil, "", err
	}

	players, err := s.Store.FindMany(ctx, ids)
	if err != nil {
		return nil, "", storageError(op, err)
	}
	byID := make(map[string]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	var missing []string
	snapshots := make([]PlayerSnapshot, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		snapshots = append(snapshots, PlayerSnapshot{ID: p.ID, Nome: p.Nome, Health: p.Vida, Gems: p.Gems})
	}
	if len(missing) > 0 {
		return nil, "", notFound(op, "unknown participants", missing...)
	}

	result, err := s.Resolver.Resolve(snapshots)
	if err != nil {
		return nil, "", err
	}

	updates := make([]PlayerUpdate, 0, result.Len())
	for _, id := range result.IDs() {
		o, _ := result.Get(id)
		updates = append(updates, PlayerUpdate{ID: id, SetHealth: o.Health, AddGems: o.Gems})
	}
	if err := s.Store.BatchUpdate(ctx, updates); err != nil {
		s.log.Error("match batch write failed", zap.Strings("participants", ids), zap.Error(err))
		return nil, "", storageError(op, err)
	}

	var matchID string
	if s.History != nil {
		rec, err := s.History.Record(ctx, req.RequestedBy, result)
		if err != nil {
			s.log.Warn("match applied but history not recorded", zap.Strings("participants", ids), zap.Error(err))
		} else {
			matchID = rec.ID
		}
	}
	s.log.Info("match ended",
		zap.String("match_id", matchID),
		zap.String("requested_by", req.RequestedBy),
		zap.Int("participants", result.Len()),
	)
	return result, matchID, nil
}

func validateParticipants(op string, req MatchRequest) ([]string, error) {
	if len(req.Participants) == 0 {
		return nil, invalidRequest(op, "participants must not be empty")
	}
	seen := make(map[string]struct{}, len(req.Participants))
	ids := make([]string, 0, len(req.Participants))
	for _, raw := range req.Participants {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, invalidRequest(op, "participant id must not be blank")
		}
		if _, dup := seen[id]; dup {
			return nil, invalidRequest(op, "duplicate participant "+id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if r := strings.TrimSpace(req.RequestedBy); r != "" {
		if _, ok := seen[r]; !ok {
			return nil, invalidRequest(op, "player_id is not a participant")
		}
	}
	return ids, nil
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.MatchRecord, error) {
	const op = "get match"
	if s.History == nil {
		return nil, notFound(op, "match history is disabled")
	}
	rec, err := s.History.Get(ctx, strings.TrimSpace(matchID))
	if errors.Is(err, ErrMatchNotFound) {
		return nil, notFound(op, "match not found", matchID)
	}
	if err != nil {
		return nil, storageError(op, err)
	}
	return rec, nil
}

func (s *MatchService) PlayerHistory(ctx context.Context, playerID string, limit int) ([]models.MatchRecord, error) {
	const op = "player history"
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, invalidRequest(op, "player id is required")
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if s.History == nil {
		return []models.MatchRecord{}, nil
	}
	recs, err := s.History.ListForPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, storageError(op, err)
	}
	if recs == nil {
		recs = []models.MatchRecord{}
	}
	return recs, nil
}
