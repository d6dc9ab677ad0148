package services

import (
	"context"
	"errors"
	"time"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchLog keeps the history of applied matches.
type MatchLog interface {
	Record(ctx context.Context, requestedBy string, result *MatchResult) (*models.MatchRecord, error)
	Get(ctx context.Context, matchID string) (*models.MatchRecord, error)
	ListForPlayer(ctx context.Context, playerID string, limit int) ([]models.MatchRecord, error)
}

type GormMatchLog struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewGormMatchLog(db *gorm.DB, timeout time.Duration) *GormMatchLog {
	return &GormMatchLog{DB: db, Timeout: timeout}
}

func (l *GormMatchLog) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.Timeout)
}

func orderedOutcomes(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (l *GormMatchLog) Record(ctx context.Context, requestedBy string, result *MatchResult) (*models.MatchRecord, error) {
	rec := &models.MatchRecord{
		ID:          uuid.NewString(),
		RequestedBy: requestedBy,
	}
	for i, id := range result.IDs() {
		o, _ := result.Get(id)
		rec.Outcomes = append(rec.Outcomes, models.MatchOutcomeRecord{
			MatchID:     rec.ID,
			PlayerID:    id,
			Position:    i,
			Damage:      o.Damage,
			Health:      o.Health,
			GemsAwarded: o.Gems,
		})
	}

	ctx, cancel := l.bounded(ctx)
	defer cancel()
	if err := l.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (l *GormMatchLog) Get(ctx context.Context, matchID string) (*models.MatchRecord, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	var rec models.MatchRecord
	err := l.DB.WithContext(ctx).
		Preload("Outcomes", orderedOutcomes).
		Where("id = ?", matchID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListForPlayer returns the newest matches the player took part in.
func (l *GormMatchLog) ListForPlayer(ctx context.Context, playerID string, limit int) ([]models.MatchRecord, error) {
	ctx, cancel := l.bounded(ctx)
	defer cancel()

	db := l.DB.WithContext(ctx)
	played := db.Model(&models.MatchOutcomeRecord{}).
		Select("match_id").
		Where("player_id = ?", playerID)

	var recs []models.MatchRecord
	err := db.Preload("Outcomes", orderedOutcomes).
		Where("id IN (?)", played).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
