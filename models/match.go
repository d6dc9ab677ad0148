package models

import "time"

// MatchRecord is the history entry written after a match has been applied
// to the player store.
type MatchRecord struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	RequestedBy string `gorm:"index" json:"requested_by,omitempty"`

	Outcomes []MatchOutcomeRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"outcomes"`

	// Set once the record has been copied to the archive bucket.
	ArchivedAt *time.Time `gorm:"index" json:"archived_at,omitempty"`

	CreatedAt time.Time `gorm:"index;autoCreateTime" json:"created_at"`
}

// MatchOutcomeRecord is one participant's line of a MatchRecord.
type MatchOutcomeRecord struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	MatchID     string `gorm:"type:uuid;index;not null" json:"match_id"`
	PlayerID    string `gorm:"index;not null" json:"player_id"`
	Position    int    `gorm:"not null" json:"position"` // order inside the match request
	Damage      int    `json:"damage"`
	Health      int    `json:"health"`
	GemsAwarded int    `json:"gems"`
}
