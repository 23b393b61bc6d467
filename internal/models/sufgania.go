package models

import (
	"time"

	"gorm.io/gorm"
)

// Sufgania 参赛作品，每个 Couple 至多一个 (couple_id 唯一)
type Sufgania struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	PhotoURL    string    `gorm:"size:255" json:"photoUrl"`
	CoupleID    string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"coupleId"`
	Couple      *Couple   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"couple,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Sufgania) TableName() string {
	return "sufganiot"
}

func (s *Sufgania) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}
