package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"
)

// pinnedSource hands out queued values per [min, max] range so damage and
// gem draws can be pinned independently of call interleaving.
type pinnedSource struct {
	t      *testing.T
	queues map[[2]int][]int
}

func newPinnedSource(t *testing.T) *pinnedSource {
	t.Helper()
	return &pinnedSource{t: t, queues: map[[2]int][]int{}}
}

func (s *pinnedSource) damage(vals ...int) *pinnedSource {
	k := [2]int{MinDamage, MaxDamage}
	s.queues[k] = append(s.queues[k], vals...)
	return s
}

func (s *pinnedSource) gems(vals ...int) *pinnedSource {
	k := [2]int{MinGemsAwarded, MaxGemsAwarded}
	s.queues[k] = append(s.queues[k], vals...)
	return s
}

func (s *pinnedSource) NextInt(min, max int) int {
	k := [2]int{min, max}
	q := s.queues[k]
	if len(q) == 0 {
		s.t.Fatalf("no pinned value left for range [%d, %d]", min, max)
	}
	s.queues[k] = q[1:]
	return q[0]
}

// memStore is an in-memory PlayerStore with call counting and fault injection.
type memStore struct {
	mu      sync.Mutex
	players map[string]models.Player
	calls   int

	failBatch     error
	failBatchAt   int // applies this many updates before failing
	failFind      error
	failIncrement error
}

func newMemStore(players ...models.Player) *memStore {
	s := &memStore{players: map[string]models.Player{}}
	for _, p := range players {
		s.players[p.ID] = p
	}
	return s
}

func (s *memStore) get(id string) (models.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	return p, ok
}

func (s *memStore) FindOne(_ context.Context, id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failFind != nil {
		return nil, s.failFind
	}
	p, ok := s.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (s *memStore) FindMany(_ context.Context, ids []string) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failFind != nil {
		return nil, s.failFind
	}
	var out []models.Player
	for _, id := range ids {
		if p, ok := s.players[id]; ok {
			out = append(out, p)
		}
	}
	// reverse order, callers must not rely on store ordering
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) Create(_ context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("duplicate key %s", p.ID)
	}
	s.players[p.ID] = *p
	return nil
}

func (s *memStore) Upsert(_ context.Context, p *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.players[p.ID] = *p
	return nil
}

func (s *memStore) BatchUpdate(_ context.Context, updates []PlayerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	staged := make(map[string]models.Player, len(updates))
	for i, u := range updates {
		if s.failBatch != nil && i == s.failBatchAt {
			return s.failBatch
		}
		p, ok := s.players[u.ID]
		if !ok {
			return ErrPlayerNotFound
		}
		p.Vida = u.SetHealth
		p.Gems += u.AddGems
		staged[u.ID] = p
	}
	for id, p := range staged {
		s.players[id] = p
	}
	return nil
}

func (s *memStore) IncrementOne(_ context.Context, id string, inc PlayerIncrement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failIncrement != nil {
		return 0, s.failIncrement
	}
	p, ok := s.players[id]
	if !ok {
		return 0, nil
	}
	if inc.Gems != nil && p.Gems+*inc.Gems < 0 {
		return 0, ErrInsufficientGems
	}
	if inc.Vida != nil {
		p.Vida += *inc.Vida
	}
	if inc.Gems != nil {
		p.Gems += *inc.Gems
	}
	s.players[id] = p
	return 1, nil
}

// memHistory is an in-memory MatchLog.
type memHistory struct {
	records []*models.MatchRecord
	fail    error
}

func (h *memHistory) Record(_ context.Context, requestedBy string, result *MatchResult) (*models.MatchRecord, error) {
	if h.fail != nil {
		return nil, h.fail
	}
	rec := &models.MatchRecord{ID: fmt.Sprintf("m%d", len(h.records)+1), RequestedBy: requestedBy}
	for i, id := range result.IDs() {
		o, _ := result.Get(id)
		rec.Outcomes = append(rec.Outcomes, models.MatchOutcomeRecord{
			MatchID: rec.ID, PlayerID: id, Position: i, Damage: o.Damage, Health: o.Health, GemsAwarded: o.Gems,
		})
	}
	h.records = append(h.records, rec)
	return rec, nil
}

func (h *memHistory) Get(_ context.Context, id string) (*models.MatchRecord, error) {
	for _, r := range h.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (h *memHistory) ListForPlayer(_ context.Context, playerID string, limit int) ([]models.MatchRecord, error) {
	var out []models.MatchRecord
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		for _, o := range h.records[i].Outcomes {
			if o.PlayerID == playerID {
				out = append(out, *h.records[i])
				break
			}
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }
