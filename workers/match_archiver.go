package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/johnlemossilva-pixel/mini-royale-backend/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectSink stores archive blobs; utils.R2Bucket satisfies it.
type ObjectSink interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// MatchArchiver copies settled match records to object storage and marks
// them archived. Rows stay in the database so history queries keep working.
type MatchArchiver struct {
	DB    *gorm.DB
	Sink  ObjectSink
	After time.Duration
	Batch int

	log *zap.Logger
	now func() time.Time
}

func NewMatchArchiver(db *gorm.DB, sink ObjectSink, after time.Duration, batch int, log *zap.Logger) *MatchArchiver {
	if log == nil {
		log = zap.NewNop()
	}
	if batch <= 0 {
		batch = 100
	}
	return &MatchArchiver{DB: db, Sink: sink, After: after, Batch: batch, log: log, now: time.Now}
}

// ArchiveKey is the object key of a match record, bucketed by UTC day.
func ArchiveKey(rec *models.MatchRecord) string {
	return fmt.Sprintf("matches/%s/%s.json", rec.CreatedAt.UTC().Format("2006/01/02"), rec.ID)
}

// RunOnce archives up to Batch records older than After and returns how many
// were archived. A failed upload leaves the record for the next run.
func (a *MatchArchiver) RunOnce(ctx context.Context) (int, error) {
	cutoff := a.now().Add(-a.After)

	var recs []models.MatchRecord
	err := a.DB.WithContext(ctx).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("archived_at IS NULL AND created_at <= ?", cutoff).
		Order("created_at ASC").
		Limit(a.Batch).
		Find(&recs).Error
	if err != nil {
		return 0, fmt.Errorf("select matches to archive: %w", err)
	}

	archived := 0
	for i := range recs {
		rec := &recs[i]
		body, err := json.Marshal(rec)
		if err != nil {
			a.log.Error("encode match for archive", zap.String("match_id", rec.ID), zap.Error(err))
			continue
		}
		key := ArchiveKey(rec)
		if err := a.Sink.Put(ctx, key, body, "application/json"); err != nil {
			a.log.Warn("match archive upload failed", zap.String("match_id", rec.ID), zap.Error(err))
			continue
		}
		now := a.now()
		if err := a.DB.WithContext(ctx).Model(&models.MatchRecord{}).
			Where("id = ?", rec.ID).
			Update("archived_at", now).Error; err != nil {
			a.log.Error("mark match archived", zap.String("match_id", rec.ID), zap.Error(err))
			continue
		}
		archived++
	}
	if archived > 0 {
		a.log.Info("matches archived", zap.Int("count", archived))
	}
	return archived, nil
}
