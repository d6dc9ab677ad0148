// models/player.go
package models

import "time"

const (
	MaxHealth     = 100
	DefaultHealth = 100
)

// Player is the persisted profile of a single player. Vida and Gems keep the
// wire names the game client already speaks.
type Player struct {
	ID     string `json:"_id" gorm:"primaryKey"`
	Nome   string `json:"nome" gorm:"not null"`
	Handle string `json:"handle" gorm:"index"` // slug of Nome, not unique
	Vida   int    `json:"vida" gorm:"not null"`
	Gems   int    `json:"gems" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
