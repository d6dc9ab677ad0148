// services/player_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPlayerNotFound is returned by a PlayerStore when a lookup or a write
// matched no row.
var ErrPlayerNotFound = errors.New("player not found")

// ErrInsufficientGems is returned by IncrementOne when the gems delta would
// take the balance below zero. Nothing is written in that case.
var ErrInsufficientGems = errors.New("insufficient gems")

// PlayerUpdate is one line of a match batch: health is set, gems are added.
type PlayerUpdate struct {
	ID        string
	SetHealth int
	AddGems   int
}

// PlayerIncrement carries optional deltas for IncrementOne.
type PlayerIncrement struct {
	Vida *int
	Gems *int
}

func (inc PlayerIncrement) empty() bool { return inc.Vida == nil && inc.Gems == nil }

// PlayerStore is the persistence collaborator for player records.
type PlayerStore interface {
	FindOne(ctx context.Context, id string) (*models.Player, error)
	FindMany(ctx context.Context, ids []string) ([]models.Player, error)
	Create(ctx context.Context, p *models.Player) error
	Upsert(ctx context.Context, p *models.Player) error
	// BatchUpdate applies every update or none of them.
	BatchUpdate(ctx context.Context, updates []PlayerUpdate) error
	// IncrementOne returns the number of rows it modified. Health is not
	// bounded; a gems delta that would go negative fails with
	// ErrInsufficientGems.
	IncrementOne(ctx context.Context, id string, inc PlayerIncrement) (int64, error)
}

// GormPlayerStore keeps players in a SQL database through gorm.
type GormPlayerStore struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewGormPlayerStore(db *gorm.DB, timeout time.Duration) *GormPlayerStore {
	return &GormPlayerStore{DB: db, Timeout: timeout}
}

func (s *GormPlayerStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *GormPlayerStore) FindOne(ctx context.Context, id string) (*models.Player, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var p models.Player
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormPlayerStore) FindMany(ctx context.Context, ids []string) ([]models.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var players []models.Player
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (s *GormPlayerStore) Create(ctx context.Context, p *models.Player) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *GormPlayerStore) Upsert(ctx context.Context, p *models.Player) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"nome", "handle", "vida", "gems", "updated_at"}),
	}).Create(p).Error
}

func (s *GormPlayerStore) BatchUpdate(ctx context.Context, updates []PlayerUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&models.Player{}).
				Where("id = ?", u.ID).
				Updates(map[string]interface{}{
					"vida": u.SetHealth,
					"gems": gorm.Expr("gems + ?", u.AddGems),
				})
			if res.Error != nil {
				return fmt.Errorf("update player %s: %w", u.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update player %s: %w", u.ID, ErrPlayerNotFound)
			}
		}
		return nil
	})
}

func (s *GormPlayerStore) IncrementOne(ctx context.Context, id string, inc PlayerIncrement) (int64, error) {
	if inc.empty() {
		return 0, errors.New("increment has no fields")
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	fields := map[string]interface{}{}
	if inc.Vida != nil {
		fields["vida"] = gorm.Expr("vida + ?", *inc.Vida)
	}
	if inc.Gems != nil {
		fields["gems"] = gorm.Expr("gems + ?", *inc.Gems)
	}
	q := s.DB.WithContext(ctx).Model(&models.Player{}).Where("id = ?", id)
	if inc.Gems != nil {
		q = q.Where("gems + ? >= 0", *inc.Gems)
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 && inc.Gems != nil {
		// the guard or the id rejected the row; tell the two apart
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Player{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, ErrInsufficientGems
		}
	}
	return res.RowsAffected, nil
}

// Ping checks the underlying connection pool.
func (s *GormPlayerStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
